// Package project はプロジェクトCRUD、契約書類、通知メッセージのビジネスロジックを提供する。
package project

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/johernandezvaz/vitrine/internal/model"
	"github.com/johernandezvaz/vitrine/internal/repository"
	"github.com/johernandezvaz/vitrine/internal/storage"
)

// ServiceConfig はプロジェクトサービスの設定。
type ServiceConfig struct {
	// StoreTimeout はストア呼び出し1回に課すタイムアウト。
	StoreTimeout time.Duration
}

// Service はプロジェクトに関するビジネスロジックを提供する。
type Service struct {
	projects  repository.ProjectRepository
	contracts repository.ContractRepository
	updates   repository.ProgressUpdateRepository
	storage   storage.DocumentStorage
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	projects repository.ProjectRepository,
	contracts repository.ContractRepository,
	updates repository.ProgressUpdateRepository,
	docStorage storage.DocumentStorage,
	config ServiceConfig,
) *Service {
	return &Service{
		projects:  projects,
		contracts: contracts,
		updates:   updates,
		storage:   docStorage,
		config:    config,
	}
}

// Create は新規プロジェクトを作成する。ステータスはpendingで開始する。
func (s *Service) Create(ctx context.Context, userID int64, name, description string) (*model.Project, error) {
	now := time.Now()
	project := &model.Project{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Status:      model.ProjectStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.projects.Create(storeCtx, project); err != nil {
		slog.Error("failed to create project", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}

	slog.Info("project created",
		slog.String("project_id", project.ID),
		slog.Int64("user_id", userID),
	)
	return project, nil
}

// ListAll は全プロジェクトを所有者情報付きで取得する。
func (s *Service) ListAll(ctx context.Context) ([]*model.ProjectWithOwner, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	projects, err := s.projects.ListAllWithOwners(storeCtx)
	if err != nil {
		slog.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}
	return projects, nil
}

// Get は指定IDのプロジェクトを取得する。見つからない場合はPROJECT_NOT_FOUND。
func (s *Service) Get(ctx context.Context, projectID string) (*model.Project, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	project, err := s.projects.FindByID(storeCtx, projectID)
	if err != nil {
		slog.Error("failed to find project", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}
	return project, nil
}

// Cancel はプロジェクトを削除する。所有者本人のみ実行でき、
// 契約書類がアップロード済みの場合はキャンセルできない。
func (s *Service) Cancel(ctx context.Context, userID int64, projectID string) error {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}

	if project.UserID != userID {
		return model.NewNotProjectOwnerError()
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	contracts, err := s.contracts.ListByProjectID(storeCtx, projectID)
	if err != nil {
		slog.Error("failed to list contracts", slog.String("error", err.Error()))
		return model.NewStoreUnavailableError()
	}
	if len(contracts) > 0 {
		return model.NewProjectHasDocumentsError()
	}

	if err := s.projects.DeleteByID(storeCtx, projectID); err != nil {
		slog.Error("failed to delete project", slog.String("error", err.Error()))
		return model.NewStoreUnavailableError()
	}

	slog.Info("project cancelled",
		slog.String("project_id", projectID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// Documents は指定プロジェクトの契約書類レコードを取得する。
func (s *Service) Documents(ctx context.Context, projectID string) ([]*model.Contract, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	contracts, err := s.contracts.ListByProjectID(storeCtx, projectID)
	if err != nil {
		slog.Error("failed to list contracts", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}
	return contracts, nil
}

// DocumentUpload はアップロードされた書類ファイル1件を表す。
type DocumentUpload struct {
	Filename string
	Body     io.Reader
}

// UploadDocuments は契約書と支払証明をストレージに保存し、契約書類レコードを作成する。
// 保存名は {プロジェクトID}_{種別}_{タイムスタンプ}{拡張子} の形式。
func (s *Service) UploadDocuments(ctx context.Context, projectID string, contract, payment DocumentUpload) (*model.Contract, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102_150405")
	contractName := fmt.Sprintf("%s_contract_%s%s", projectID, timestamp, filepath.Ext(contract.Filename))
	paymentName := fmt.Sprintf("%s_payment_%s%s", projectID, timestamp, filepath.Ext(payment.Filename))

	contractURL, err := s.storage.Save(ctx, contractName, contract.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store contract file: %w", err)
	}
	paymentURL, err := s.storage.Save(ctx, paymentName, payment.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment file: %w", err)
	}

	record := &model.Contract{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		ContractURL: contractURL,
		PaymentURL:  paymentURL,
		CreatedAt:   time.Now(),
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.contracts.Create(storeCtx, record); err != nil {
		slog.Error("failed to create contract record", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}

	slog.Info("project documents uploaded", slog.String("project_id", projectID))
	return record, nil
}

// Messages は呼び出しユーザーのプロジェクトに紐づく契約書類と進捗報告を
// 時系列（新しい順）にマージした通知一覧を返す。
func (s *Service) Messages(ctx context.Context, userID int64) ([]*model.Message, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	projects, err := s.projects.ListByUserID(storeCtx, userID)
	if err != nil {
		slog.Error("failed to list user projects", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}
	if len(projects) == 0 {
		return nil, nil
	}

	projectIDs := make([]string, 0, len(projects))
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
		names[p.ID] = p.Name
	}

	contracts, err := s.contracts.ListByProjectIDs(storeCtx, projectIDs)
	if err != nil {
		slog.Error("failed to list contracts", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}
	updates, err := s.updates.ListByProjectIDs(storeCtx, projectIDs)
	if err != nil {
		slog.Error("failed to list progress updates", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}

	messages := make([]*model.Message, 0, len(contracts)+len(updates))
	for _, c := range contracts {
		messages = append(messages, &model.Message{
			ID:          c.ID,
			ProjectID:   c.ProjectID,
			ProjectName: names[c.ProjectID],
			Type:        model.MessageTypeContract,
			Content:     "プロジェクトの契約書類がアップロードされました。",
			ContractURL: c.ContractURL,
			PaymentURL:  c.PaymentURL,
			CreatedAt:   c.CreatedAt,
		})
	}
	for _, u := range updates {
		messages = append(messages, &model.Message{
			ID:          u.ID,
			ProjectID:   u.ProjectID,
			ProjectName: names[u.ProjectID],
			Type:        model.MessageTypeUpdate,
			Content:     u.Body,
			CreatedAt:   u.CreatedAt,
		})
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})

	return messages, nil
}

// storeContext はストア呼び出し用のタイムアウト付きコンテキストを返す。
func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.StoreTimeout)
}
