// Package auth は資格情報の検証、パスワードハッシュ、トークンの発行と検証を提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher は平文パスワードの一方向ハッシュ化と照合を行う。
// bcryptはソルトとコストパラメータをハッシュ文字列自体に埋め込むため、
// 照合に外部状態を必要としない。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costが0の場合はbcryptのデフォルトコストを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードからソルト付きハッシュを生成する。
// エラーはアルゴリズム自体が実行できない場合（リソース枯渇等）のみで、
// そのリクエストにとって致命的であり、リトライしない。
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify は平文パスワードを保存済みハッシュと照合する。
// 不一致は通常のfalseでありエラーではない。保存値が不正な形式
// （レガシーな平文行など）の場合もfalseを返し、クラッシュしない。
// 比較はbcrypt内部で定数時間に行われる。
func (h *PasswordHasher) Verify(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
