package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/limiter"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[int64]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.byID {
		if x.Username == u.Username || x.Email == u.Email {
			return errs.ErrConflict
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cpy := *u
	f.byID[u.ID] = &cpy
	return nil
}

func (f *fakeUsers) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUsers) UpdateRole(_ context.Context, id int64, role model.Role) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || !u.IsActive || u.Role == model.RoleSuperAdmin {
		return nil, errs.ErrNotFound
	}
	u.Role = role
	c := *u
	return &c, nil
}

func (f *fakeUsers) Deactivate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || !u.IsActive {
		return errs.ErrNotFound
	}
	u.IsActive = false
	return nil
}

// put stores u directly, bypassing validation.
func (f *fakeUsers) put(u model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = &u
	c := u
	return &c
}

type fakeRefresh struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]*model.RefreshToken

	createErrs []error
	getErr     error
}

var _ repository.RefreshTokenRepository = (*fakeRefresh)(nil)

func newFakeRefresh() *fakeRefresh { return &fakeRefresh{rows: map[string]*model.RefreshToken{}} }

func (f *fakeRefresh) Create(_ context.Context, t *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, dup := f.rows[t.Token]; dup {
		return errs.ErrConflict
	}
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	c := *t
	f.rows[t.Token] = &c
	return nil
}

func (f *fakeRefresh) GetByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	t, ok := f.rows[token]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeRefresh) Revoke(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[token]
	if !ok {
		return false, errs.ErrNotFound
	}
	if t.Revoked {
		return false, nil
	}
	t.Revoked = true
	return true, nil
}

func (f *fakeRefresh) RevokeAllForUser(_ context.Context, userID int64, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.rows {
		if t.UserID == userID && t.ActiveAt(now) {
			t.Revoked = true
			n++
		}
	}
	return n, nil
}

func (f *fakeRefresh) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.rows {
		if !t.ExpiresAt.After(now) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeRefresh) get(token string) model.RefreshToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.rows[token]
}

func (f *fakeRefresh) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeLimiter struct {
	allowOK   bool
	allowWait time.Duration
	allowErr  error

	failBlocked bool
	failWait    time.Duration
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
	lastUser     string
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, username string, _ []byte) (bool, time.Duration, error) {
	l.allowCalls++
	l.lastUser = username
	return l.allowOK, l.allowWait, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, l.failWait, l.failErr
}

type fakeArticles struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Article
}

var _ repository.ArticleRepository = (*fakeArticles)(nil)

func newFakeArticles() *fakeArticles { return &fakeArticles{rows: map[int64]*model.Article{}} }

func (f *fakeArticles) Create(_ context.Context, a *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now()
	a.ID, a.CreatedAt, a.UpdatedAt = f.nextID, now, now
	if a.Status == model.StatusPublished {
		a.PublishedAt = &now
	}
	c := *a
	f.rows[a.ID] = &c
	return nil
}

func (f *fakeArticles) Get(_ context.Context, id int64) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeArticles) ListPublished(_ context.Context, flt model.ArticleFilter) ([]model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Article
	for _, a := range f.rows {
		if a.Status != model.StatusPublished {
			continue
		}
		if flt.Category != "" && a.Category != flt.Category {
			continue
		}
		if flt.Tag != "" && !containsTag(a.Tags, flt.Tag) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if flt.Offset >= len(out) {
		return nil, nil
	}
	out = out[flt.Offset:]
	if len(out) > flt.Limit {
		out = out[:flt.Limit]
	}
	return out, nil
}

func containsTag(tags []string, t string) bool {
	for _, x := range tags {
		if x == t {
			return true
		}
	}
	return false
}

func (f *fakeArticles) Update(_ context.Context, a *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[a.ID]
	if !ok || cur.Status == model.StatusDeleted {
		return errs.ErrNotFound
	}
	cur.Title, cur.Content, cur.Tags, cur.Category = a.Title, a.Content, a.Tags, a.Category
	cur.UpdatedAt = time.Now()
	return nil
}

func (f *fakeArticles) SetStatus(_ context.Context, id int64, st model.ArticleStatus) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok || a.Status == model.StatusDeleted {
		return nil, errs.ErrNotFound
	}
	if a.Status == st {
		return nil, errs.ErrConflict
	}
	a.Status = st
	if st == model.StatusPublished && a.PublishedAt == nil {
		now := time.Now()
		a.PublishedAt = &now
	}
	c := *a
	return &c, nil
}

type fakeComments struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Comment
}

var _ repository.CommentRepository = (*fakeComments)(nil)

func newFakeComments() *fakeComments { return &fakeComments{rows: map[int64]*model.Comment{}} }

func (f *fakeComments) Create(_ context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID, c.CreatedAt = f.nextID, time.Now()
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeComments) Get(_ context.Context, id int64) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) ListByArticle(_ context.Context, articleID int64) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Comment
	for _, c := range f.rows {
		if c.ArticleID == articleID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeComments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type likeKey struct{ user, article int64 }

type fakeLikes struct {
	mu       sync.Mutex
	articles *fakeArticles
	set      map[likeKey]struct{}
}

var _ repository.LikeRepository = (*fakeLikes)(nil)

func newFakeLikes(a *fakeArticles) *fakeLikes {
	return &fakeLikes{articles: a, set: map[likeKey]struct{}{}}
}

func (f *fakeLikes) Like(_ context.Context, userID, articleID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles.mu.Lock()
	defer f.articles.mu.Unlock()
	a, ok := f.articles.rows[articleID]
	if !ok {
		return 0, errs.ErrNotFound
	}
	k := likeKey{userID, articleID}
	if _, dup := f.set[k]; dup {
		return 0, errs.ErrConflict
	}
	f.set[k] = struct{}{}
	a.LikesCount++
	return a.LikesCount, nil
}

func (f *fakeLikes) Unlike(_ context.Context, userID, articleID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles.mu.Lock()
	defer f.articles.mu.Unlock()
	k := likeKey{userID, articleID}
	if _, ok := f.set[k]; !ok {
		return 0, errs.ErrConflict
	}
	delete(f.set, k)
	a := f.articles.rows[articleID]
	if a.LikesCount > 0 {
		a.LikesCount--
	}
	return a.LikesCount, nil
}

func (f *fakeLikes) Count(_ context.Context, articleID int64) (int, error) {
	f.articles.mu.Lock()
	defer f.articles.mu.Unlock()
	a, ok := f.articles.rows[articleID]
	if !ok || a.Status == model.StatusDeleted {
		return 0, errs.ErrNotFound
	}
	return a.LikesCount, nil
}

type fakeNotifications struct {
	mu     sync.Mutex
	nextID int64
	rows   []*model.Notification

	createErr error
}

var _ repository.NotificationRepository = (*fakeNotifications)(nil)

func (f *fakeNotifications) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	n.ID, n.CreatedAt = f.nextID, time.Now()
	c := *n
	f.rows = append(f.rows, &c)
	return nil
}

func (f *fakeNotifications) ListUnread(_ context.Context, userID int64, limit, offset int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for i := len(f.rows) - 1; i >= 0; i-- {
		if n := f.rows[i]; n.UserID == userID && !n.IsRead {
			out = append(out, *n)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, userID int64, ids []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		for _, id := range ids {
			if row.ID == id && row.UserID == userID && !row.IsRead {
				row.IsRead = true
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeNotifications) forUser(userID int64) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}

type fakeNotifier struct {
	mu  sync.Mutex
	got []model.Notification
	err error
}

func (f *fakeNotifier) Notify(_ context.Context, n model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, n)
	return f.err
}
