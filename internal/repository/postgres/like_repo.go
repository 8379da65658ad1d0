package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/inkwell/internal/errs"
)

// LikeRepo implements LikeRepository using PostgreSQL.
type LikeRepo struct{ db *DB }

// NewLikeRepo constructs a like repository.
func NewLikeRepo(db *DB) *LikeRepo { return &LikeRepo{db: db} }

// Like records a like and increments the article counter in one transaction.
func (r *LikeRepo) Like(ctx context.Context, userID, articleID int64) (int, error) {
	var count int
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		const ins = `INSERT INTO likes (user_id, article_id) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, ins, userID, articleID); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("article %d already liked: %w", articleID, errs.ErrConflict)
			}
			if isForeignKeyViolation(err) {
				return errs.ErrNotFound
			}
			return err
		}
		const upd = `UPDATE articles SET likes_count = likes_count + 1 WHERE id=$1 RETURNING likes_count`
		return notFound(tx.QueryRow(ctx, upd, articleID).Scan(&count))
	})
	return count, err
}

// Unlike removes a like and decrements the article counter in one transaction.
func (r *LikeRepo) Unlike(ctx context.Context, userID, articleID int64) (int, error) {
	var count int
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		const del = `DELETE FROM likes WHERE user_id=$1 AND article_id=$2`
		tag, err := tx.Exec(ctx, del, userID, articleID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("article %d not liked: %w", articleID, errs.ErrConflict)
		}
		const upd = `UPDATE articles SET likes_count = GREATEST(likes_count - 1, 0) WHERE id=$1 RETURNING likes_count`
		return notFound(tx.QueryRow(ctx, upd, articleID).Scan(&count))
	})
	return count, err
}

// Count returns the cached like counter.
func (r *LikeRepo) Count(ctx context.Context, articleID int64) (int, error) {
	const q = `SELECT likes_count FROM articles WHERE id=$1 AND status <> 'deleted'`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, articleID).Scan(&n); err != nil {
		return 0, notFound(err)
	}
	return n, nil
}

