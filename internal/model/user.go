// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleClient は一般のクライアントユーザー。APIから登録できる唯一の役割。
	RoleClient Role = "client"
	// RoleProvider はサービス提供者。APIからの自己登録は許可されず、運用側で作成する。
	RoleProvider Role = "provider"
)

// Valid は定義済みの役割かどうかを返す。
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleProvider
}

// User はサービス利用ユーザーを表す。
// PasswordHashはソルト付きの一方向ハッシュであり、平文パスワードは保持しない。
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
