package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/tagmark/tagmark/internal/model"
)

// ErrTagNotFound is returned when a tag does not exist or is not owned by
// the requesting user.
var ErrTagNotFound = errors.New("tag not found")

// ListTagsByOwner returns all of the owner's tags, sorted by name.
func (r *Repository) ListTagsByOwner(ctx context.Context, ownerID string) ([]model.Tag, error) {
	query := `
		SELECT id, name, owner_id, created_at
		FROM tags
		WHERE owner_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}

// DeleteTag removes a tag and its article links, scoped to the owner.
func (r *Repository) DeleteTag(ctx context.Context, id, ownerID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM article_tags WHERE tag_id IN (
			SELECT id FROM tags WHERE id = $1 AND owner_id = $2
		)`, id, ownerID,
	); err != nil {
		return fmt.Errorf("failed to unlink tag: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM tags WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTagNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// upsertTags resolves tag names to rows for the owner, creating missing
// tags. Uniqueness is (owner_id, name): the same name under two owners
// yields distinct rows.
func upsertTags(ctx context.Context, tx pgx.Tx, ownerID string, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		// Insert-or-ignore, then read back. Handles concurrent creation
		// of the same (owner, name) pair.
		_, err := tx.Exec(ctx,
			`INSERT INTO tags (id, name, owner_id, created_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (owner_id, name) DO NOTHING`,
			ulid.Make().String(), name, ownerID, time.Now().UTC(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert tag: %w", err)
		}

		var t model.Tag
		err = tx.QueryRow(ctx,
			`SELECT id, name, owner_id, created_at FROM tags
			 WHERE owner_id = $1 AND name = $2`,
			ownerID, name,
		).Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to read tag: %w", err)
		}

		tags = append(tags, t)
	}

	return tags, nil
}
