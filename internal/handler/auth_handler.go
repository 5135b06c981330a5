package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/johernandezvaz/vitrine/internal/auth"
	"github.com/johernandezvaz/vitrine/internal/middleware"
	"github.com/johernandezvaz/vitrine/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は資格情報を検証し、署名付きトークンとユーザー情報を返す。
	Login(ctx context.Context, identifier, password string) (string, *model.User, error)
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	// Logout はトークンを失効リストに登録する。
	Logout(ctx context.Context, claims *auth.Claims) error
}

// AuthHandler はトークン認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// loginRequest はログインリクエストのボディ。
// identifierにはメールアドレスまたは表示名を指定する。
type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// loginResponse はログイン成功時のAPIレスポンス。
type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

// Register はユーザー登録を処理する。
// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("name、email、passwordは必須です"))
		return
	}

	// roleの省略はclientとして扱う
	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleClient
	}
	if !role.Valid() {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("roleはclientまたはproviderを指定してください"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserResponse(user),
	})
}

// Login は資格情報を検証してトークンを発行する。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Identifier == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("identifierとpasswordは必須です"))
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		User: userResponse{
			ID:   user.ID,
			Name: user.Name,
			Role: string(user.Role),
		},
	})
}

// Logout は提示されたトークンを失効させる。
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "ログアウトしました。",
	})
}

// VerifyToken は提示されたトークンの有効性を確認する。
// 認証ミドルウェアを通過した時点でトークンは検証済みのため、
// クレームの内容をそのまま返す。
// POST /api/verify-token
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user": userResponse{
			ID:   claims.UserID,
			Name: claims.Name,
			Role: claims.Role,
		},
	})
}

// Dashboard は認証済みユーザーのダッシュボード情報を返す。
// GET /api/dashboard
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": userResponse{
			ID:   claims.UserID,
			Name: claims.Name,
			Role: claims.Role,
		},
	})
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}
