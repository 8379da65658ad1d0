package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
)

// CommentService manages comments on published articles.
type CommentService interface {
	Create(ctx context.Context, actor *model.User, articleID int64, content string) (*model.Comment, error)
	List(ctx context.Context, articleID int64) ([]model.Comment, error)
	Delete(ctx context.Context, actor *model.User, commentID int64) error
}

// CommentServiceImpl implements CommentService.
type CommentServiceImpl struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	notes    NotificationSender
	log      *zap.Logger
}

// NewCommentService constructs CommentService. notes may be nil.
func NewCommentService(
	comments repository.CommentRepository,
	articles repository.ArticleRepository,
	notes NotificationSender,
	log *zap.Logger,
) *CommentServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommentServiceImpl{comments: comments, articles: articles, notes: notes, log: log}
}

var _ CommentService = (*CommentServiceImpl)(nil)

// Create adds a comment and notifies the article author.
func (s *CommentServiceImpl) Create(ctx context.Context, actor *model.User, articleID int64, content string) (*model.Comment, error) {
	if actor == nil {
		return nil, errs.ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxCommentLen {
		return nil, validationf("comment must be 1 to %d characters", maxCommentLen)
	}
	a, err := published(ctx, s.articles, articleID)
	if err != nil {
		return nil, err
	}
	c := &model.Comment{ArticleID: articleID, UserID: actor.ID, Content: content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	if a.AuthorID != actor.ID {
		notify(ctx, s.notes, s.log, a.AuthorID, fmt.Sprintf("%s commented on %q", actor.Username, a.Title))
	}
	return c, nil
}

// List returns the comments of a published article.
func (s *CommentServiceImpl) List(ctx context.Context, articleID int64) ([]model.Comment, error) {
	if _, err := published(ctx, s.articles, articleID); err != nil {
		return nil, err
	}
	return s.comments.ListByArticle(ctx, articleID)
}

// Delete removes a comment; only its owner may do so.
func (s *CommentServiceImpl) Delete(ctx context.Context, actor *model.User, commentID int64) error {
	if actor == nil {
		return errs.ErrUnauthorized
	}
	c, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != actor.ID {
		return deny(s.log, actor, "delete_comment", "not the comment owner")
	}
	return s.comments.Delete(ctx, commentID)
}
