package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_.]{3,}$`)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
	maxTitleLen    = 200
	maxCommentLen  = 2000
	maxTags        = 10
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errs.ErrValidation}, args...)...)
}

// normalizeRegistration lowercases identifiers and checks shapes.
func normalizeRegistration(in model.Registration) (model.Registration, error) {
	out := model.Registration{
		Username: strings.ToLower(strings.TrimSpace(in.Username)),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: in.Password,
	}
	if !usernameRe.MatchString(out.Username) {
		return out, validationf("username must be at least 3 characters of letters, digits, underscore or dot")
	}
	addr, err := mail.ParseAddress(out.Email)
	if err != nil || addr.Address != out.Email || addr.Name != "" {
		return out, validationf("email is not a valid address")
	}
	if n := len(out.Password); n < minPasswordLen || n > maxPasswordLen {
		return out, validationf("password must be %d to %d bytes", minPasswordLen, maxPasswordLen)
	}
	return out, nil
}

func normalizeDraft(d model.ArticleDraft) (model.ArticleDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	d.Category = strings.ToLower(strings.TrimSpace(d.Category))
	if d.Title == "" || utf8.RuneCountInString(d.Title) > maxTitleLen {
		return d, validationf("title must be 1 to %d characters", maxTitleLen)
	}
	if d.Content == "" {
		return d, validationf("content is required")
	}
	seen := make(map[string]struct{}, len(d.Tags))
	tags := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	if len(tags) > maxTags {
		return d, validationf("at most %d tags", maxTags)
	}
	d.Tags = tags
	return d, nil
}

func clampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
