package httpapi

import (
	"errors"
	"mime"
	"net"
	"net/http"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.auth.Register(r.Context(), model.Registration(req))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(u))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readLogin accepts JSON or an OAuth2 password-grant style form.
func readLogin(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	var req loginRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return req, errs.ErrValidation
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		return req, nil
	}
	err := decodeJSON(w, r, &req)
	return req, err
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := readLogin(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tok, err := s.auth.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenView(tok))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, errs.ErrRefreshRejected)
		return
	}
	tok, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenView(tok))
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	changed, err := s.auth.RevokeRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !changed {
		writeJSON(w, http.StatusOK, detailBody{Detail: "already revoked"})
		return
	}
	writeJSON(w, http.StatusOK, detailBody{Detail: "revoked"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	n, err := s.auth.Logout(r.Context(), u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Detail  string `json:"detail"`
		Revoked int64  `json:"revoked"`
	}{"logged out", n})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromCtx(r.Context())
	if !ok {
		s.fail(w, r, errors.New("me: no user in context"))
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}
