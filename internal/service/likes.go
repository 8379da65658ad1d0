package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
)

// LikeService manages article likes.
type LikeService interface {
	Like(ctx context.Context, actor *model.User, articleID int64) (model.LikeState, error)
	Unlike(ctx context.Context, actor *model.User, articleID int64) (model.LikeState, error)
	Count(ctx context.Context, articleID int64) (model.LikeState, error)
}

// LikeServiceImpl implements LikeService.
type LikeServiceImpl struct {
	likes    repository.LikeRepository
	articles repository.ArticleRepository
	notes    NotificationSender
	log      *zap.Logger
}

// NewLikeService constructs LikeService. notes may be nil.
func NewLikeService(
	likes repository.LikeRepository,
	articles repository.ArticleRepository,
	notes NotificationSender,
	log *zap.Logger,
) *LikeServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &LikeServiceImpl{likes: likes, articles: articles, notes: notes, log: log}
}

var _ LikeService = (*LikeServiceImpl)(nil)

// Like records actor's like; liking twice is errs.ErrConflict.
func (s *LikeServiceImpl) Like(ctx context.Context, actor *model.User, articleID int64) (model.LikeState, error) {
	if actor == nil {
		return model.LikeState{}, errs.ErrUnauthorized
	}
	a, err := published(ctx, s.articles, articleID)
	if err != nil {
		return model.LikeState{}, err
	}
	n, err := s.likes.Like(ctx, actor.ID, articleID)
	if err != nil {
		return model.LikeState{}, err
	}
	if a.AuthorID != actor.ID {
		notify(ctx, s.notes, s.log, a.AuthorID, fmt.Sprintf("%s liked %q", actor.Username, a.Title))
	}
	return model.LikeState{ArticleID: articleID, UserID: actor.ID, LikesCount: n}, nil
}

// Unlike removes actor's like; unliking without a like is errs.ErrConflict.
func (s *LikeServiceImpl) Unlike(ctx context.Context, actor *model.User, articleID int64) (model.LikeState, error) {
	if actor == nil {
		return model.LikeState{}, errs.ErrUnauthorized
	}
	n, err := s.likes.Unlike(ctx, actor.ID, articleID)
	if err != nil {
		return model.LikeState{}, err
	}
	return model.LikeState{ArticleID: articleID, UserID: actor.ID, LikesCount: n}, nil
}

// Count returns the like counter.
func (s *LikeServiceImpl) Count(ctx context.Context, articleID int64) (model.LikeState, error) {
	n, err := s.likes.Count(ctx, articleID)
	if err != nil {
		return model.LikeState{}, err
	}
	return model.LikeState{ArticleID: articleID, LikesCount: n}, nil
}
