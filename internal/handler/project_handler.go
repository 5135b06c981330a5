package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/johernandezvaz/vitrine/internal/middleware"
	"github.com/johernandezvaz/vitrine/internal/model"
	"github.com/johernandezvaz/vitrine/internal/project"
)

// multipartMaxMemory はマルチパート解析時にメモリへ保持する最大バイト数。
// 超過分は一時ファイルに書き出される。
const multipartMaxMemory = 32 << 20

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	Create(ctx context.Context, userID int64, name, description string) (*model.Project, error)
	ListAll(ctx context.Context) ([]*model.ProjectWithOwner, error)
	Get(ctx context.Context, projectID string) (*model.Project, error)
	Cancel(ctx context.Context, userID int64, projectID string) error
	Documents(ctx context.Context, projectID string) ([]*model.Contract, error)
	UploadDocuments(ctx context.Context, projectID string, contract, payment project.DocumentUpload) (*model.Contract, error)
	Messages(ctx context.Context, userID int64) ([]*model.Message, error)
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// createProjectRequest はプロジェクト作成リクエストのボディ。
type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// projectResponse はプロジェクト情報のAPIレスポンス。
type projectResponse struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// projectWithOwnerResponse は所有者情報付きプロジェクトのAPIレスポンス。
type projectWithOwnerResponse struct {
	projectResponse
	OwnerName  string `json:"owner_name"`
	OwnerEmail string `json:"owner_email"`
}

// contractResponse は契約書類レコードのAPIレスポンス。
type contractResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ContractURL string    `json:"contract_url"`
	PaymentURL  string    `json:"payment_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// messageResponse は通知メッセージのAPIレスポンス。
type messageResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	ContractURL string    `json:"contract_url,omitempty"`
	PaymentURL  string    `json:"payment_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProject は新規プロジェクトを作成する。
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Name == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("nameは必須です"))
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(created))
}

// ListProjects は全プロジェクトを所有者情報付きで返す。
// GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]projectWithOwnerResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, projectWithOwnerResponse{
			projectResponse: toProjectResponse(&p.Project),
			OwnerName:       p.OwnerName,
			OwnerEmail:      p.OwnerEmail,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": resp})
}

// GetProject はプロジェクト詳細を返す。
// GET /api/projects/:id
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// CancelProject はプロジェクトをキャンセル（削除）する。
// DELETE /api/projects/:id
func (h *ProjectHandler) CancelProject(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), userID, projectID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "プロジェクトをキャンセルしました。",
	})
}

// ListDocuments はプロジェクトの契約書類レコード一覧を返す。
// GET /api/projects/:id/documents
func (h *ProjectHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	contracts, err := h.service.Documents(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]contractResponse, 0, len(contracts))
	for _, c := range contracts {
		resp = append(resp, toContractResponse(c))
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": resp})
}

// UploadDocuments は契約書と支払証明のマルチパートアップロードを処理する。
// フォームフィールド名は contract と payment。
// POST /api/projects/:id/documents
func (h *ProjectHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("マルチパートフォームの解析に失敗しました"))
		return
	}

	contractFile, contractHeader, err := r.FormFile("contract")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("contractファイルは必須です"))
		return
	}
	defer contractFile.Close()

	paymentFile, paymentHeader, err := r.FormFile("payment")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("paymentファイルは必須です"))
		return
	}
	defer paymentFile.Close()

	record, err := h.service.UploadDocuments(r.Context(), projectID,
		project.DocumentUpload{Filename: contractHeader.Filename, Body: contractFile},
		project.DocumentUpload{Filename: paymentHeader.Filename, Body: paymentFile},
	)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContractResponse(record))
}

// ListMessages は認証済みユーザーの通知メッセージ一覧を返す。
// GET /api/messages
func (h *ProjectHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	messages, err := h.service.Messages(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, messageResponse{
			ID:          m.ID,
			ProjectID:   m.ProjectID,
			ProjectName: m.ProjectName,
			Type:        m.Type,
			Content:     m.Content,
			ContractURL: m.ContractURL,
			PaymentURL:  m.PaymentURL,
			CreatedAt:   m.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": resp})
}

// --- ヘルパー関数 ---

// parseProjectID はパスパラメータのプロジェクトIDをUUIDとして検証する。
// 不正な場合は400を書き込み、falseを返す。
func parseProjectID(w http.ResponseWriter, r *http.Request) (string, bool) {
	projectID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(projectID); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("プロジェクトIDはUUID形式で指定してください"))
		return "", false
	}
	return projectID, true
}

// toProjectResponse はmodel.ProjectからAPIレスポンスに変換する。
func toProjectResponse(p *model.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// toContractResponse はmodel.ContractからAPIレスポンスに変換する。
func toContractResponse(c *model.Contract) contractResponse {
	return contractResponse{
		ID:          c.ID,
		ProjectID:   c.ProjectID,
		ContractURL: c.ContractURL,
		PaymentURL:  c.PaymentURL,
		CreatedAt:   c.CreatedAt,
	}
}
