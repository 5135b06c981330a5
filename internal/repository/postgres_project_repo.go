package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johernandezvaz/vitrine/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// Create はプロジェクトを作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, name, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		project.ID, project.UserID, project.Name, project.Description,
		project.Status, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	project := &model.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, status, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(&project.ID, &project.UserID, &project.Name, &project.Description,
		&project.Status, &project.CreatedAt, &project.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project by ID: %w", err)
	}

	return project, nil
}

// ListAllWithOwners は全プロジェクトを所有者の名前・メールアドレス付きで取得する。
func (r *PostgresProjectRepo) ListAllWithOwners(ctx context.Context) ([]*model.ProjectWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.name, p.description, p.status, p.created_at, p.updated_at,
		        u.name, u.email
		 FROM projects p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY p.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.ProjectWithOwner
	for rows.Next() {
		p := &model.ProjectWithOwner{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status,
			&p.CreatedAt, &p.UpdatedAt, &p.OwnerName, &p.OwnerEmail); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project rows: %w", err)
	}

	return projects, nil
}

// ListByUserID は指定ユーザーが所有するプロジェクトを取得する。
func (r *PostgresProjectRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, description, status, created_at, updated_at
		 FROM projects WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects by user: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p := &model.Project{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project rows: %w", err)
	}

	return projects, nil
}

// DeleteByID は指定IDのプロジェクトを削除する。
// 関連するcontracts、progress_updatesはCASCADE削除される。
func (r *PostgresProjectRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
