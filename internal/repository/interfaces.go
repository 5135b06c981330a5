// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/johernandezvaz/vitrine/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByIdentifier はメールアドレスまたはユーザー名でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDと作成時刻をuserに書き戻す。
	// メールアドレスの一意性はストレージ層のUNIQUE制約が唯一の正となり、
	// 違反時はDUPLICATE_EMAILのAPIErrorを返す。
	Create(ctx context.Context, user *model.User) error
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
type ProjectRepository interface {
	// Create はプロジェクトを作成する。
	Create(ctx context.Context, project *model.Project) error

	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// ListAllWithOwners は全プロジェクトを所有者情報付きで取得する。
	ListAllWithOwners(ctx context.Context) ([]*model.ProjectWithOwner, error)

	// ListByUserID は指定ユーザーが所有するプロジェクトを取得する。
	ListByUserID(ctx context.Context, userID int64) ([]*model.Project, error)

	// DeleteByID は指定IDのプロジェクトを削除する。
	// 関連するcontracts、progress_updatesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// ContractRepository は契約書類レコードの永続化インターフェース。
type ContractRepository interface {
	// Create は契約書類レコードを作成する。
	Create(ctx context.Context, contract *model.Contract) error

	// ListByProjectID は指定プロジェクトの契約書類レコードを取得する。
	ListByProjectID(ctx context.Context, projectID string) ([]*model.Contract, error)

	// ListByProjectIDs は複数プロジェクトの契約書類レコードをまとめて取得する。
	ListByProjectIDs(ctx context.Context, projectIDs []string) ([]*model.Contract, error)
}

// ProgressUpdateRepository は進捗報告の永続化インターフェース。
type ProgressUpdateRepository interface {
	// ListByProjectIDs は複数プロジェクトの進捗報告をまとめて取得する。
	ListByProjectIDs(ctx context.Context, projectIDs []string) ([]*model.ProgressUpdate, error)
}

// TokenBlacklistRepository は失効済みトークンIDの永続化インターフェース。
// ログアウト時にjtiを登録し、失効確認ミドルウェアが参照する。
type TokenBlacklistRepository interface {
	// Add はjtiをトークン自体の有効期限まで失効リストに登録する。
	Add(ctx context.Context, jti string, expiresAt time.Time) error

	// Contains はjtiが失効リストに含まれるかどうかを返す。
	Contains(ctx context.Context, jti string) (bool, error)
}
