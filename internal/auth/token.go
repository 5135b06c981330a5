package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// claimsVersion はクレームスキーマのバージョン。
// トークン形式を変更する際にインクリメントし、旧形式との曖昧なデコードを防ぐ。
const claimsVersion = 1

// トークン検証エラー。クライアントにはいずれも区別なく401として返し、
// 具体的な理由はログとメトリクスのみに記録する。
var (
	// ErrTokenMalformed はトークンの構造が解析できないことを示す。
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenSignature は署名の再計算結果が一致しないことを示す。
	ErrTokenSignature = errors.New("token signature is invalid")
	// ErrTokenExpired はexpires_atを過ぎたトークンであることを示す。
	ErrTokenExpired = errors.New("token is expired")
)

// Claims はトークンに埋め込む最小限のアイデンティティ情報。
// UserRecordの決定的な射影であり、パスワード由来の情報は一切含まない。
type Claims struct {
	jwt.RegisteredClaims
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Version int    `json:"vtv"`
}

// TokenCodec はクレームと署名付きトークン文字列の相互変換を行う。
// 署名鍵はプロセス起動時に一度だけ設定され、以後は読み取り専用のため
// ロックなしで全リクエストから共有できる。
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec はTokenCodecを生成する。
// ttlはExpiresAt未設定のクレームに適用される有効期間。
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl}
}

// Encode はクレームをHS256で署名した自己完結型トークン文字列に変換する。
// IssuedAtには現在時刻を、ExpiresAtが未設定の場合は現在時刻+TTLを設定する。
// サーバー側にセッションレコードは作成しない（ステートレスセッション）。
func (c *TokenCodec) Encode(claims Claims) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	if claims.ID == "" {
		claims.ID = uuid.New().String()
	}
	claims.Subject = strconv.FormatInt(claims.UserID, 10)
	claims.Version = claimsVersion

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode はトークン文字列を検証し、埋め込まれたクレームを取り出す。
// 署名検証はクレーム値の解釈より前に行われる。未検証のフィールドを
// 信用してはならない（検証前のデコードは偽造を許す既知の落とし穴）。
// expクレームは必須。expを持たない署名済みトークンは無期限セッションに
// なってしまうため、スキーマ不一致として拒否する。vtvも同様に照合する。
// 失敗はErrTokenMalformed、ErrTokenSignature、ErrTokenExpiredのいずれかを返す。
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrTokenSignature
	}
	if claims.Version != claimsVersion {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
