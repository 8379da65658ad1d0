package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

// ObjectStore is a blob store for uploaded media.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
}

// MediaService stores uploads for authors.
type MediaService struct {
	store    ObjectStore
	maxBytes int64
	log      *zap.Logger
}

// NewMediaService constructs MediaService. maxBytes <= 0 disables the size check.
func NewMediaService(store ObjectStore, maxBytes int64, log *zap.Logger) *MediaService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MediaService{store: store, maxBytes: maxBytes, log: log}
}

// MediaKey builds a collision-free object key that keeps the upload's extension.
func MediaKey(filename string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return "media/" + id.String() + strings.ToLower(filepath.Ext(filename)), nil
}

// Upload stores r under a fresh key.
func (s *MediaService) Upload(ctx context.Context, actor *model.User, filename string, r io.Reader, size int64, contentType string) (*model.Media, error) {
	if actor == nil {
		return nil, errs.ErrUnauthorized
	}
	if !actor.Role.AtLeast(model.RoleAuthor) {
		return nil, deny(s.log, actor, "upload_media", "requires author")
	}
	if size <= 0 {
		return nil, validationf("file is empty")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, validationf("file exceeds %d bytes", s.maxBytes)
	}
	filename = filepath.Base(filename)
	key, err := MediaKey(filename)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.store.Put(ctx, key, r, size, contentType); err != nil {
		return nil, err
	}
	s.log.Info("media uploaded", zap.Int64("user_id", actor.ID), zap.String("key", key), zap.Int64("size", size))
	return &model.Media{Filename: filename, Key: key, URL: s.store.URL(key), Size: size}, nil
}
