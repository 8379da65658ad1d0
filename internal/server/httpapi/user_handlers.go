package httpapi

import (
	"net/http"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicUserView{ID: u.ID, Username: u.Username, Role: u.Role.String(), CreatedAt: u.CreatedAt})
}

type roleRequest struct {
	NewRole string `json:"new_role"`
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	role, err := model.ParseRole(req.NewRole)
	if err != nil {
		s.fail(w, r, errs.ErrValidation)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	u, err := s.users.ChangeRole(r.Context(), actor, model.RoleChange{UserID: id, NewRole: role})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	if err := s.users.Deactivate(r.Context(), actor, id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailBody{Detail: "user deactivated"})
}

func (s *Server) handleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _ := UserFromCtx(r.Context())
	n, err := s.users.RevokeSessions(r.Context(), actor, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Detail  string `json:"detail"`
		Revoked int64  `json:"revoked"`
	}{"sessions revoked", n})
}
