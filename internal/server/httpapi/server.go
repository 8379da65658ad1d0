// Package httpapi exposes the Inkwell HTTP API.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/service"
)

// Authorizer resolves bearer tokens and enforces role tiers.
type Authorizer interface {
	Authenticate(ctx context.Context, bearer string) (*model.User, error)
	RequireAtLeast(actor *model.User, action string, min model.Role) error
}

// Uploader stores media.
type Uploader interface {
	Upload(ctx context.Context, actor *model.User, filename string, r io.Reader, size int64, contentType string) (*model.Media, error)
}

// SocketServer attaches an authenticated websocket to the notification hub.
type SocketServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID int64) error
}

// Deps are the collaborators of the HTTP layer. Media and Hub are optional;
// their routes are not mounted when nil.
type Deps struct {
	Auth          service.AuthService
	Users         service.UserService
	Articles      service.ArticleService
	Comments      service.CommentService
	Likes         service.LikeService
	Notifications service.NotificationService
	Gate          Authorizer
	Media         Uploader
	Hub           SocketServer
	MaxUpload     int64
	Log           *zap.Logger
}

// Server wires services into HTTP handlers.
type Server struct {
	auth      service.AuthService
	users     service.UserService
	articles  service.ArticleService
	comments  service.CommentService
	likes     service.LikeService
	notes     service.NotificationService
	gate      Authorizer
	media     Uploader
	hub       SocketServer
	maxUpload int64
	log       *zap.Logger
}

// New constructs a Server.
func New(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		auth:      d.Auth,
		users:     d.Users,
		articles:  d.Articles,
		comments:  d.Comments,
		likes:     d.Likes,
		notes:     d.Notifications,
		gate:      d.Gate,
		media:     d.Media,
		hub:       d.Hub,
		maxUpload: d.MaxUpload,
		log:       log,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, Logging(s.log), Recover(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Post("/refresh", s.handleRefresh)
	r.Post("/revoke", s.handleRevoke)

	r.Get("/articles", s.handleListArticles)
	r.With(s.optionalUser).Get("/articles/{article_id}", s.handleGetArticle)
	r.Get("/articles/{article_id}/comments", s.handleListComments)
	r.Get("/articles/{article_id}/likes", s.handleCountLikes)

	if s.hub != nil {
		r.Get("/notifications/ws", s.handleWS)
	}

	r.Group(func(p chi.Router) {
		p.Use(s.requireUser)

		p.Post("/logout", s.handleLogout)
		p.Get("/me", s.handleMe)
		p.Get("/users/{user_id}", s.handleGetUser)
		p.Put("/users/{user_id}/role", s.handleChangeRole)
		p.Put("/{user_id}/role", s.handleChangeRole)
		p.Delete("/users/{user_id}", s.handleDeactivate)
		p.Post("/admin/users/{user_id}/sessions/revoke", s.handleRevokeSessions)

		p.Post("/articles", s.handleCreateArticle)
		p.Put("/articles/{article_id}", s.handleUpdateArticle)
		p.Post("/articles/{article_id}/publish", s.handlePublishArticle)
		p.Delete("/articles/{article_id}", s.handleDeleteArticle)

		p.Post("/articles/{article_id}/comments", s.handleCreateComment)
		p.Delete("/comments/{comment_id}", s.handleDeleteComment)

		p.Post("/articles/{article_id}/like", s.handleLike)
		p.Delete("/articles/{article_id}/like", s.handleUnlike)

		p.Get("/notifications/unread", s.handleUnread)
		p.Post("/notifications/read", s.handleMarkRead)

		if s.media != nil {
			p.With(s.requireAtLeast(model.RoleAuthor, "upload_media")).Post("/media/upload", s.handleUpload)
		}
	})
	return r
}
