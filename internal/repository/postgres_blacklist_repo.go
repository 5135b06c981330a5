package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresTokenBlacklistRepo はPostgreSQLを使用した失効済みトークンリポジトリ。
type PostgresTokenBlacklistRepo struct {
	db *sql.DB
}

// NewPostgresTokenBlacklistRepo はPostgresTokenBlacklistRepoを生成する。
func NewPostgresTokenBlacklistRepo(db *sql.DB) *PostgresTokenBlacklistRepo {
	return &PostgresTokenBlacklistRepo{db: db}
}

// Add はjtiを失効リストに登録する。
// 同一トークンでの多重ログアウトは成功として扱う（ON CONFLICT DO NOTHING）。
func (r *PostgresTokenBlacklistRepo) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO token_blacklist (jti, expires_at)
		 VALUES ($1, $2)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert blacklisted token: %w", err)
	}
	return nil
}

// Contains はjtiが失効リストに含まれるかどうかを返す。
// 期限切れエントリはトークン自体も期限切れのため、存在しても影響しない。
func (r *PostgresTokenBlacklistRepo) Contains(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)`,
		jti,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check blacklisted token: %w", err)
	}
	return exists, nil
}

// DeleteExpired は期限切れエントリを削除し、削除件数を返す。
// マイグレーション実行時や運用ジョブからの定期実行を想定する。
func (r *PostgresTokenBlacklistRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired blacklist entries: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ TokenBlacklistRepository = (*PostgresTokenBlacklistRepo)(nil)
