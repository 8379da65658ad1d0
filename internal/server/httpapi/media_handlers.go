package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/and161185/inkwell/internal/errs"
)

const multipartMemory = 8 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		// headroom for multipart framing; the service enforces the exact limit
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+(1<<20))
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(w, r, fmt.Errorf("%w: file exceeds %d bytes", errs.ErrValidation, s.maxUpload))
			return
		}
		s.fail(w, r, fmt.Errorf("%w: expected multipart form", errs.ErrValidation))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: missing file field", errs.ErrValidation))
		return
	}
	defer file.Close()

	actor, _ := UserFromCtx(r.Context())
	m, err := s.media.Upload(r.Context(), actor, hdr.Filename, file, hdr.Size, hdr.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mediaView{Filename: m.Filename, Key: m.Key, URL: m.URL})
}
