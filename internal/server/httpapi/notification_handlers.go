package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
)

func (s *Server) handleUnread(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := queryPage(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, _ := UserFromCtx(r.Context())
	list, err := s.notes.Unread(r.Context(), u.ID, limit, offset)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]notificationView, 0, len(list))
	for _, n := range list {
		out = append(out, notificationView{ID: n.ID, UserID: n.UserID, Message: n.Message, IsRead: n.IsRead, CreatedAt: n.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

type markReadRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, _ := UserFromCtx(r.Context())
	n, err := s.notes.MarkRead(r.Context(), u.ID, req.IDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Detail string `json:"detail"`
		Marked int64  `json:"marked"`
	}{"marked as read", n})
}

// handleWS authenticates before upgrading; browsers cannot set headers on
// websocket requests, so the token may also come as ?token=.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		s.fail(w, r, errs.ErrUnauthorized)
		return
	}
	u, err := s.gate.Authenticate(r.Context(), raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// the upgrader has already replied on handshake errors
	if err := s.hub.ServeWS(w, r, u.ID); err != nil {
		s.log.Warn("websocket attach failed", zap.Int64("user_id", u.ID), zap.Error(err))
	}
}
