package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

// ArticleRepo implements ArticleRepository using PostgreSQL.
type ArticleRepo struct{ db *DB }

// NewArticleRepo constructs an article repository.
func NewArticleRepo(db *DB) *ArticleRepo { return &ArticleRepo{db: db} }

const articleCols = `id, author_id, title, content, tags, category, status, likes_count, published_at, created_at, updated_at`

func scanArticle(row pgx.Row) (*model.Article, error) {
	var (
		a      model.Article
		tags   []byte
		status string
	)
	err := row.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Content, &tags, &a.Category, &status,
		&a.LikesCount, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if a.Status, err = model.ParseArticleStatus(status); err != nil {
		return nil, fmt.Errorf("article %d: %w", a.ID, err)
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &a.Tags); err != nil {
			return nil, fmt.Errorf("article %d tags: %w", a.ID, err)
		}
	}
	return &a, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// Create inserts an article; a published article gets published_at=now().
func (r *ArticleRepo) Create(ctx context.Context, a *model.Article) error {
	tags, err := encodeTags(a.Tags)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO articles (author_id, title, content, tags, category, status, published_at)
VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $6 = 'published' THEN now() END)
RETURNING ` + articleCols
	got, err := scanArticle(r.db.Pool.QueryRow(ctx, q,
		a.AuthorID, a.Title, a.Content, tags, a.Category, a.Status.String()))
	if err != nil {
		return err
	}
	*a = *got
	return nil
}

// Get returns a single article by id.
func (r *ArticleRepo) Get(ctx context.Context, id int64) (*model.Article, error) {
	const q = `SELECT ` + articleCols + ` FROM articles WHERE id=$1`
	return scanArticle(r.db.Pool.QueryRow(ctx, q, id))
}

// ListPublished returns a page of published articles, newest first.
func (r *ArticleRepo) ListPublished(ctx context.Context, f model.ArticleFilter) ([]model.Article, error) {
	const q = `
SELECT ` + articleCols + `
FROM articles
WHERE status='published'
  AND ($1 = '' OR tags ? $1)
  AND ($2 = '' OR category = $2)
ORDER BY published_at DESC, id DESC
LIMIT $3 OFFSET $4`
	rows, err := r.db.Pool.Query(ctx, q, f.Tag, f.Category, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Article, 0, f.Limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Update overwrites editable fields and bumps updated_at.
func (r *ArticleRepo) Update(ctx context.Context, a *model.Article) error {
	tags, err := encodeTags(a.Tags)
	if err != nil {
		return err
	}
	const q = `
UPDATE articles
SET title=$2, content=$3, tags=$4, category=$5, updated_at=now()
WHERE id=$1 AND status <> 'deleted'
RETURNING ` + articleCols
	got, err := scanArticle(r.db.Pool.QueryRow(ctx, q, a.ID, a.Title, a.Content, tags, a.Category))
	if err != nil {
		return err
	}
	*a = *got
	return nil
}

// SetStatus moves an article between states inside a row-locking transaction.
func (r *ArticleRepo) SetStatus(ctx context.Context, id int64, status model.ArticleStatus) (*model.Article, error) {
	var out *model.Article
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		const sel = `SELECT status FROM articles WHERE id=$1 FOR UPDATE`
		var cur string
		if err := tx.QueryRow(ctx, sel, id).Scan(&cur); err != nil {
			return notFound(err)
		}
		if cur == model.StatusDeleted.String() {
			return errs.ErrNotFound
		}
		if cur == status.String() {
			return fmt.Errorf("article %d already %s: %w", id, cur, errs.ErrConflict)
		}
		const upd = `
UPDATE articles
SET status=$2,
    published_at = CASE WHEN $2 = 'published' THEN COALESCE(published_at, $3) ELSE published_at END,
    updated_at=$3
WHERE id=$1
RETURNING ` + articleCols
		a, err := scanArticle(tx.QueryRow(ctx, upd, id, status.String(), time.Now().UTC()))
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}
