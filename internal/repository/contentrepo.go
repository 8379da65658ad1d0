package repository

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
)

// ArticleRepository stores articles.
type ArticleRepository interface {
	Create(ctx context.Context, a *model.Article) error
	// Get returns an article in any status.
	Get(ctx context.Context, id int64) (*model.Article, error)
	// ListPublished returns published articles, newest first.
	ListPublished(ctx context.Context, f model.ArticleFilter) ([]model.Article, error)
	// Update overwrites title, content, tags and category of a non-deleted article.
	Update(ctx context.Context, a *model.Article) error
	// SetStatus changes status; publishing stamps published_at once.
	SetStatus(ctx context.Context, id int64, status model.ArticleStatus) (*model.Article, error)
}

// CommentRepository stores comments.
type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	Get(ctx context.Context, id int64) (*model.Comment, error)
	ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// LikeRepository stores likes and maintains articles.likes_count.
type LikeRepository interface {
	// Like inserts a like and increments the counter atomically. errs.ErrConflict if already liked.
	Like(ctx context.Context, userID, articleID int64) (int, error)
	// Unlike deletes a like and decrements the counter atomically. errs.ErrConflict if not liked.
	Unlike(ctx context.Context, userID, articleID int64) (int, error)
	// Count returns articles.likes_count. errs.ErrNotFound if the article does not exist.
	Count(ctx context.Context, articleID int64) (int, error)
}

// NotificationRepository stores notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListUnread(ctx context.Context, userID int64, limit, offset int) ([]model.Notification, error)
	// MarkRead marks the listed notifications of userID as read and returns how many matched.
	MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error)
}
