package postgres

import (
	"context"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

// CommentRepo implements CommentRepository using PostgreSQL.
type CommentRepo struct{ db *DB }

// NewCommentRepo constructs a comment repository.
func NewCommentRepo(db *DB) *CommentRepo { return &CommentRepo{db: db} }

// Create inserts a comment.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	const q = `
INSERT INTO comments (article_id, user_id, content)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	return r.db.Pool.QueryRow(ctx, q, c.ArticleID, c.UserID, c.Content).Scan(&c.ID, &c.CreatedAt)
}

// Get returns one comment.
func (r *CommentRepo) Get(ctx context.Context, id int64) (*model.Comment, error) {
	const q = `SELECT id, article_id, user_id, content, created_at FROM comments WHERE id=$1`
	var c model.Comment
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListByArticle returns comments oldest first.
func (r *CommentRepo) ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error) {
	const q = `
SELECT id, article_id, user_id, content, created_at
FROM comments WHERE article_id=$1
ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Pool.Query(ctx, q, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a comment.
func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
