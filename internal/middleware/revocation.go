package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/johernandezvaz/vitrine/internal/model"
)

// BlacklistChecker は失効済みトークンの確認インターフェース。
// repository.TokenBlacklistRepositoryの部分集合として定義する。
type BlacklistChecker interface {
	Contains(ctx context.Context, jti string) (bool, error)
}

// NewRevocationMiddleware はトークンのjtiを失効リストと照合するミドルウェアを返す。
// 認証ミドルウェアの後段に配置すること。
//
// トークンはデフォルトでステートレス（署名と有効期限のみで検証）であり、
// このミドルウェアは即時失効が必要な構成でのみ有効化するオプション。
// リクエストごとにストアを1回参照するコストを伴う。
func NewRevocationMiddleware(checker BlacklistChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ClaimsFromContext(r.Context())
			if err != nil || claims.ID == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			revoked, err := checker.Contains(r.Context(), claims.ID)
			if err != nil {
				slog.Error("failed to check token blacklist",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreUnavailableError())
				return
			}
			if revoked {
				slog.Warn("revoked token presented", slog.Int64("user_id", claims.UserID))
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
