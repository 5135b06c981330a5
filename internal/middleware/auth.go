// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/johernandezvaz/vitrine/internal/auth"
	"github.com/johernandezvaz/vitrine/internal/model"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// claimsContextKey はリクエストコンテキストに検証済みクレームを格納するためのキー。
var claimsContextKey = contextKey("claims")

// TokenDecoder は認証ミドルウェアが必要とするトークン検証インターフェース。
// auth.TokenCodecの部分集合として定義する。
type TokenDecoder interface {
	Decode(tokenString string) (*auth.Claims, error)
}

// TokenMetrics はトークン拒否のメトリクス記録インターフェース。
type TokenMetrics interface {
	RecordTokenRejected(reason string)
}

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証する
// ミドルウェアを返す。検証済みクレームをリクエストコンテキストに注入し、
// 下流ハンドラーへそのまま転送する。リクエストごとのDBアクセスは行わない。
//
// トークンの欠落・不正形式・署名不一致・期限切れはすべて同一形式の
// 401 Unauthorizedとして拒否する。具体的な理由はログとメトリクスのみに
// 記録し、応答からは判別できない。
func NewAuthMiddleware(decoder TokenDecoder, metrics TokenMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからベアラートークンを取り出す
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				metrics.RecordTokenRejected("missing_token")
				slog.Warn("request rejected",
					slog.String("reason", "missing_token"),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			token := strings.TrimPrefix(header, bearerPrefix)

			// 2. 署名と有効期限を検証する
			claims, err := decoder.Decode(token)
			if err != nil {
				reason := rejectionReason(err)
				metrics.RecordTokenRejected(reason)
				slog.Warn("token rejected",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. 検証済みクレームをコンテキストに注入して転送する
			ctx := ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectionReason はトークン検証エラーをログ・メトリクス用の理由文字列に変換する。
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrTokenSignature):
		return "bad_signature"
	case errors.Is(err, auth.ErrTokenMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}

// ClaimsFromContext はリクエストコンテキストから検証済みクレームを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}

// ContextWithClaims はコンテキストに検証済みクレームを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// UserIDFromContext はリクエストコンテキストから認証済みユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (int64, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
