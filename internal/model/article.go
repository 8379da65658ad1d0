package model

import (
	"fmt"
	"time"
)

// ArticleStatus is the publication state of an article.
type ArticleStatus uint8

const (
	StatusDraft ArticleStatus = iota + 1
	StatusPublished
	StatusDeleted
)

// ParseArticleStatus maps the persisted form onto ArticleStatus.
func ParseArticleStatus(s string) (ArticleStatus, error) {
	switch s {
	case "draft":
		return StatusDraft, nil
	case "published":
		return StatusPublished, nil
	case "deleted":
		return StatusDeleted, nil
	default:
		return 0, fmt.Errorf("unknown article status %q", s)
	}
}

func (s ArticleStatus) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusPublished:
		return "published"
	case StatusDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText encodes the status as its wire name.
func (s ArticleStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Article is a blog post.
type Article struct {
	ID          int64
	AuthorID    int64
	Title       string
	Content     string
	Tags        []string
	Category    string
	Status      ArticleStatus
	LikesCount  int
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArticleDraft carries author-controlled fields for create and update.
type ArticleDraft struct {
	Title    string
	Content  string
	Tags     []string
	Category string
	Publish  bool
}

// ArticleFilter narrows the public listing.
type ArticleFilter struct {
	Tag      string
	Category string
	Limit    int
	Offset   int
}

// Comment is a reader remark on an article.
type Comment struct {
	ID        int64
	ArticleID int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}

// LikeState reports the like counter after a like/unlike.
type LikeState struct {
	ArticleID  int64
	UserID     int64
	LikesCount int
}
