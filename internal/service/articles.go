package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
)

const (
	defaultArticlePage = 20
	maxArticlePage     = 100
)

// ArticleService manages blog posts.
type ArticleService interface {
	Create(ctx context.Context, actor *model.User, d model.ArticleDraft) (*model.Article, error)
	List(ctx context.Context, f model.ArticleFilter) ([]model.Article, error)
	// Get returns an article visible to viewer; viewer may be nil for anonymous reads.
	Get(ctx context.Context, viewer *model.User, id int64) (*model.Article, error)
	Update(ctx context.Context, actor *model.User, id int64, d model.ArticleDraft) (*model.Article, error)
	Publish(ctx context.Context, actor *model.User, id int64) (*model.Article, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
}

// ArticleServiceImpl implements ArticleService.
type ArticleServiceImpl struct {
	repo repository.ArticleRepository
	log  *zap.Logger
}

// NewArticleService constructs ArticleService.
func NewArticleService(repo repository.ArticleRepository, log *zap.Logger) *ArticleServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &ArticleServiceImpl{repo: repo, log: log}
}

var _ ArticleService = (*ArticleServiceImpl)(nil)

func canEdit(actor *model.User, a *model.Article) bool {
	return actor != nil && (actor.ID == a.AuthorID || actor.Role.AtLeast(model.RoleAdmin))
}

// Create stores a draft, or a published article when d.Publish is set.
func (s *ArticleServiceImpl) Create(ctx context.Context, actor *model.User, d model.ArticleDraft) (*model.Article, error) {
	if actor == nil {
		return nil, errs.ErrUnauthorized
	}
	if !actor.Role.AtLeast(model.RoleAuthor) {
		return nil, deny(s.log, actor, "create_article", "requires author")
	}
	d, err := normalizeDraft(d)
	if err != nil {
		return nil, err
	}
	a := &model.Article{
		AuthorID: actor.ID,
		Title:    d.Title,
		Content:  d.Content,
		Tags:     d.Tags,
		Category: d.Category,
		Status:   model.StatusDraft,
	}
	if d.Publish {
		a.Status = model.StatusPublished
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns published articles.
func (s *ArticleServiceImpl) List(ctx context.Context, f model.ArticleFilter) ([]model.Article, error) {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset, defaultArticlePage, maxArticlePage)
	return s.repo.ListPublished(ctx, f)
}

// Get hides drafts from everyone but their author and admins, and deleted articles from all.
func (s *ArticleServiceImpl) Get(ctx context.Context, viewer *model.User, id int64) (*model.Article, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch a.Status {
	case model.StatusPublished:
		return a, nil
	case model.StatusDraft:
		if canEdit(viewer, a) {
			return a, nil
		}
		return nil, errs.ErrNotFound
	case model.StatusDeleted:
		return nil, errs.ErrNotFound
	default:
		return nil, errs.ErrNotFound
	}
}

// editable loads an article for mutation by actor.
func (s *ArticleServiceImpl) editable(ctx context.Context, actor *model.User, id int64, action string) (*model.Article, error) {
	if actor == nil {
		return nil, errs.ErrUnauthorized
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == model.StatusDeleted {
		return nil, errs.ErrNotFound
	}
	if !canEdit(actor, a) {
		return nil, deny(s.log, actor, action, "not the author")
	}
	return a, nil
}

// Update rewrites the editable fields. d.Publish is ignored; use Publish.
func (s *ArticleServiceImpl) Update(ctx context.Context, actor *model.User, id int64, d model.ArticleDraft) (*model.Article, error) {
	a, err := s.editable(ctx, actor, id, "update_article")
	if err != nil {
		return nil, err
	}
	d, err = normalizeDraft(d)
	if err != nil {
		return nil, err
	}
	a.Title, a.Content, a.Tags, a.Category = d.Title, d.Content, d.Tags, d.Category
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Publish moves a draft to published.
func (s *ArticleServiceImpl) Publish(ctx context.Context, actor *model.User, id int64) (*model.Article, error) {
	if _, err := s.editable(ctx, actor, id, "publish_article"); err != nil {
		return nil, err
	}
	return s.repo.SetStatus(ctx, id, model.StatusPublished)
}

// Delete soft-deletes an article.
func (s *ArticleServiceImpl) Delete(ctx context.Context, actor *model.User, id int64) error {
	if _, err := s.editable(ctx, actor, id, "delete_article"); err != nil {
		return err
	}
	_, err := s.repo.SetStatus(ctx, id, model.StatusDeleted)
	if errors.Is(err, errs.ErrConflict) {
		return errs.ErrNotFound
	}
	return err
}

// published loads an article that readers may interact with.
func published(ctx context.Context, repo repository.ArticleRepository, id int64) (*model.Article, error) {
	a, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.StatusPublished {
		return nil, errs.ErrNotFound
	}
	return a, nil
}
