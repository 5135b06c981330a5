package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/johernandezvaz/vitrine/internal/model"
)

// PostgresProgressUpdateRepo はPostgreSQLを使用した進捗報告リポジトリ。
type PostgresProgressUpdateRepo struct {
	db *sql.DB
}

// NewPostgresProgressUpdateRepo はPostgresProgressUpdateRepoを生成する。
func NewPostgresProgressUpdateRepo(db *sql.DB) *PostgresProgressUpdateRepo {
	return &PostgresProgressUpdateRepo{db: db}
}

// ListByProjectIDs は複数プロジェクトの進捗報告をまとめて取得する。
func (r *PostgresProgressUpdateRepo) ListByProjectIDs(ctx context.Context, projectIDs []string) ([]*model.ProgressUpdate, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, body, created_at
		 FROM progress_updates WHERE project_id = ANY($1)
		 ORDER BY created_at DESC`,
		pq.Array(projectIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress updates: %w", err)
	}
	defer rows.Close()

	var updates []*model.ProgressUpdate
	for rows.Next() {
		u := &model.ProgressUpdate{}
		if err := rows.Scan(&u.ID, &u.ProjectID, &u.Body, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress update row: %w", err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress update rows: %w", err)
	}

	return updates, nil
}

// compile-time interface check
var _ ProgressUpdateRepository = (*PostgresProgressUpdateRepo)(nil)
