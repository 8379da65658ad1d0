package httpapi

import (
	"time"

	"github.com/and161185/inkwell/internal/model"
)

type userView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u *model.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role.String(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// publicUserView omits contact details.
type publicUserView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenView struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toTokenView(t model.Tokens) tokenView {
	return tokenView{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    model.TokenTypeBearer,
		ExpiresAt:    t.ExpiresAt,
	}
}

type articleView struct {
	ID          int64      `json:"id"`
	AuthorID    int64      `json:"author_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	LikesCount  int        `json:"likes_count"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toArticleView(a *model.Article) articleView {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return articleView{
		ID:          a.ID,
		AuthorID:    a.AuthorID,
		Title:       a.Title,
		Content:     a.Content,
		Tags:        tags,
		Category:    a.Category,
		Status:      a.Status.String(),
		LikesCount:  a.LikesCount,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type commentView struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentView(c *model.Comment) commentView {
	return commentView{ID: c.ID, ArticleID: c.ArticleID, UserID: c.UserID, Content: c.Content, CreatedAt: c.CreatedAt}
}

type likeView struct {
	ArticleID  int64 `json:"article_id"`
	UserID     int64 `json:"user_id,omitempty"`
	LikesCount int   `json:"likes_count"`
}

type notificationView struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type mediaView struct {
	Filename string `json:"filename"`
	Key      string `json:"key"`
	URL      string `json:"url"`
}
