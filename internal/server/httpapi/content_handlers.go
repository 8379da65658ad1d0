package httpapi

import (
	"context"
	"net/http"

	"github.com/and161185/inkwell/internal/model"
)

type articleRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
	Publish  bool     `json:"publish"`
}

func (a articleRequest) draft() model.ArticleDraft {
	return model.ArticleDraft{Title: a.Title, Content: a.Content, Tags: a.Tags, Category: a.Category, Publish: a.Publish}
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	a, err := s.articles.Create(r.Context(), actor, req.draft())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toArticleView(a))
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := queryPage(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	list, err := s.articles.List(r.Context(), model.ArticleFilter{
		Tag:      q.Get("tag"),
		Category: q.Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]articleView, 0, len(list))
	for i := range list {
		out = append(out, toArticleView(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "article_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	viewer, _ := UserFromCtx(r.Context())
	a, err := s.articles.Get(r.Context(), viewer, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleView(a))
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "article_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req articleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	a, err := s.articles.Update(r.Context(), actor, id, req.draft())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleView(a))
}

func (s *Server) handlePublishArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "article_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	a, err := s.articles.Publish(r.Context(), actor, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleView(a))
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "article_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	if err := s.articles.Delete(r.Context(), actor, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "article_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	c, err := s.comments.Create(r.Context(), actor, id, req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentView(c))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "article_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.comments.List(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]commentView, 0, len(list))
	for i := range list {
		out = append(out, toCommentView(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "comment_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	if err := s.comments.Delete(r.Context(), actor, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	s.likeOp(w, r, s.likes.Like)
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	s.likeOp(w, r, s.likes.Unlike)
}

func (s *Server) likeOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor *model.User, articleID int64) (model.LikeState, error)) {
	id, err := pathID(r, "article_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	st, err := op(r.Context(), actor, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likeView(st))
}

func (s *Server) handleCountLikes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "article_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st, err := s.likes.Count(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likeView(st))
}
