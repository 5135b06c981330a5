package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/johernandezvaz/vitrine/internal/model"
)

// PostgresContractRepo はPostgreSQLを使用した契約書類リポジトリ。
type PostgresContractRepo struct {
	db *sql.DB
}

// NewPostgresContractRepo はPostgresContractRepoを生成する。
func NewPostgresContractRepo(db *sql.DB) *PostgresContractRepo {
	return &PostgresContractRepo{db: db}
}

// Create は契約書類レコードを作成する。
func (r *PostgresContractRepo) Create(ctx context.Context, contract *model.Contract) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contracts (id, project_id, contract_url, payment_url, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		contract.ID, contract.ProjectID, contract.ContractURL, contract.PaymentURL, contract.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

// ListByProjectID は指定プロジェクトの契約書類レコードを取得する。
func (r *PostgresContractRepo) ListByProjectID(ctx context.Context, projectID string) ([]*model.Contract, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, contract_url, payment_url, created_at
		 FROM contracts WHERE project_id = $1
		 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

// ListByProjectIDs は複数プロジェクトの契約書類レコードをまとめて取得する。
func (r *PostgresContractRepo) ListByProjectIDs(ctx context.Context, projectIDs []string) ([]*model.Contract, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, contract_url, payment_url, created_at
		 FROM contracts WHERE project_id = ANY($1)
		 ORDER BY created_at DESC`,
		pq.Array(projectIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts by projects: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

// scanContracts は結果セットをContractスライスに変換する。
func scanContracts(rows *sql.Rows) ([]*model.Contract, error) {
	var contracts []*model.Contract
	for rows.Next() {
		c := &model.Contract{}
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.ContractURL, &c.PaymentURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contract row: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contract rows: %w", err)
	}
	return contracts, nil
}

// compile-time interface check
var _ ContractRepository = (*PostgresContractRepo)(nil)
