package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/service"
)

type stubAuth struct {
	register func(model.Registration) (*model.User, error)
	login    func(login, password, ip string) (model.Tokens, error)
	refresh  func(string) (model.Tokens, error)
	logout   func(int64) (int64, error)
	revoke   func(string) (bool, error)
}

var _ service.AuthService = (*stubAuth)(nil)

func (s *stubAuth) Register(_ context.Context, in model.Registration) (*model.User, error) {
	return s.register(in)
}
func (s *stubAuth) Login(_ context.Context, login, password, ip string) (model.Tokens, error) {
	return s.login(login, password, ip)
}
func (s *stubAuth) Refresh(_ context.Context, raw string) (model.Tokens, error) { return s.refresh(raw) }
func (s *stubAuth) Logout(_ context.Context, id int64) (int64, error)        { return s.logout(id) }
func (s *stubAuth) RevokeRefreshToken(_ context.Context, raw string) (bool, error) {
	return s.revoke(raw)
}

type stubUsers struct {
	changeRole func(actor *model.User, req model.RoleChange) (*model.User, error)
}

var _ service.UserService = (*stubUsers)(nil)

func (s *stubUsers) Get(_ context.Context, id int64) (*model.User, error) {
	if id == 2 {
		return &model.User{ID: 2, Username: "bob", Email: "bob@example.com", Role: model.RoleAuthor, IsActive: true}, nil
	}
	return nil, errs.ErrNotFound
}
func (s *stubUsers) ChangeRole(_ context.Context, actor *model.User, req model.RoleChange) (*model.User, error) {
	return s.changeRole(actor, req)
}
func (s *stubUsers) Deactivate(context.Context, *model.User, int64) error { return nil }
func (s *stubUsers) RevokeSessions(context.Context, *model.User, int64) (int64, error) {
	return 0, errs.ErrNothingToRevoke
}

type stubArticles struct {
	lastFilter model.ArticleFilter
	lastViewer *model.User
}

var _ service.ArticleService = (*stubArticles)(nil)

func (s *stubArticles) Create(_ context.Context, actor *model.User, d model.ArticleDraft) (*model.Article, error) {
	if actor.Role < model.RoleAuthor {
		return nil, errs.ErrForbidden
	}
	return &model.Article{ID: 10, AuthorID: actor.ID, Title: d.Title, Content: d.Content, Status: model.StatusDraft}, nil
}
func (s *stubArticles) List(_ context.Context, f model.ArticleFilter) ([]model.Article, error) {
	s.lastFilter = f
	return []model.Article{{ID: 1, Title: "one", Status: model.StatusPublished}}, nil
}
func (s *stubArticles) Get(_ context.Context, viewer *model.User, id int64) (*model.Article, error) {
	s.lastViewer = viewer
	if id != 1 {
		return nil, errs.ErrNotFound
	}
	return &model.Article{ID: 1, Title: "one", Tags: nil, Status: model.StatusPublished}, nil
}
func (s *stubArticles) Update(context.Context, *model.User, int64, model.ArticleDraft) (*model.Article, error) {
	return nil, errs.ErrForbidden
}
func (s *stubArticles) Publish(context.Context, *model.User, int64) (*model.Article, error) {
	return nil, errs.ErrConflict
}
func (s *stubArticles) Delete(context.Context, *model.User, int64) error { return nil }

type stubComments struct{}

var _ service.CommentService = stubComments{}

func (stubComments) Create(_ context.Context, actor *model.User, articleID int64, content string) (*model.Comment, error) {
	return &model.Comment{ID: 3, ArticleID: articleID, UserID: actor.ID, Content: content}, nil
}
func (stubComments) List(context.Context, int64) ([]model.Comment, error) { return nil, nil }
func (stubComments) Delete(context.Context, *model.User, int64) error     { return errs.ErrForbidden }

type stubLikes struct{}

var _ service.LikeService = stubLikes{}

func (stubLikes) Like(_ context.Context, actor *model.User, id int64) (model.LikeState, error) {
	return model.LikeState{ArticleID: id, UserID: actor.ID, LikesCount: 1}, nil
}
func (stubLikes) Unlike(context.Context, *model.User, int64) (model.LikeState, error) {
	return model.LikeState{}, errs.ErrConflict
}
func (stubLikes) Count(_ context.Context, id int64) (model.LikeState, error) {
	return model.LikeState{ArticleID: id, LikesCount: 4}, nil
}

type stubNotes struct{}

var _ service.NotificationService = stubNotes{}

func (stubNotes) Send(context.Context, int64, string) (*model.Notification, error) { return nil, nil }
func (stubNotes) Unread(_ context.Context, userID int64, _, _ int) ([]model.Notification, error) {
	if userID == 1 {
		return nil, errs.ErrNotFound
	}
	return []model.Notification{{ID: 1, UserID: userID, Message: "hi"}}, nil
}
func (stubNotes) MarkRead(context.Context, int64, []int64) (int64, error) { return 2, nil }

// stubGate knows a fixed set of bearer tokens.
type stubGate struct {
	users map[string]*model.User
}

func (g *stubGate) Authenticate(_ context.Context, bearer string) (*model.User, error) {
	if u, ok := g.users[bearer]; ok {
		return u, nil
	}
	return nil, errs.ErrUnauthorized
}

func (g *stubGate) RequireAtLeast(actor *model.User, _ string, min model.Role) error {
	if actor == nil {
		return errs.ErrUnauthorized
	}
	if !actor.Role.AtLeast(min) {
		return errs.ErrForbidden
	}
	return nil
}

type stubUploader struct {
	body []byte
}

func (u *stubUploader) Upload(_ context.Context, _ *model.User, filename string, r io.Reader, _ int64, _ string) (*model.Media, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.body = b
	return &model.Media{Filename: filename, Key: "media/x.png", URL: "http://cdn/media/x.png"}, nil
}

type stubHub struct {
	userID int64
}

func (h *stubHub) ServeWS(w http.ResponseWriter, _ *http.Request, userID int64) error {
	h.userID = userID
	w.WriteHeader(http.StatusOK)
	return nil
}
