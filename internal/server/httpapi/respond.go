package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/service"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type detailBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errs.ErrValidation)
		}
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	return nil
}

// statusOf maps the error taxonomy onto HTTP. The message for client errors is
// the sentinel text, so callers cannot tell which internal check failed.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, errs.ErrRateLimited.Error()
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized, errs.ErrInvalidCredentials.Error()
	case errors.Is(err, errs.ErrRefreshRejected):
		return http.StatusUnauthorized, errs.ErrRefreshRejected.Error()
	case errors.Is(err, errs.ErrInvalidToken), errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, errs.ErrUnauthorized.Error()
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, errs.ErrForbidden.Error()
	case errors.Is(err, errs.ErrNothingToRevoke):
		return http.StatusNotFound, errs.ErrNothingToRevoke.Error()
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, errs.ErrNotFound.Error()
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes the error response. Internal faults are logged with detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	var rl *service.RateLimitedError
	if errors.As(err, &rl) {
		secs := int(math.Ceil(rl.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	writeJSON(w, status, errorBody{Error: msg})
}
