package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/johernandezvaz/vitrine/internal/model"
	"github.com/johernandezvaz/vitrine/internal/repository"
)

// dummyHash は存在しない識別子に対するログイン試行で照合するハッシュ
// （平文は "vitrine-dummy-password"）。ユーザー不在時にも同等のbcrypt照合を
// 実行し、応答時間から識別子の存在有無が漏れないようにする。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Metrics は認証結果のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type Metrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordRegistration()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// StoreTimeout はストア呼び出し1回に課すタイムアウト。
	// 超過した操作はハングせずSTORE_UNAVAILABLEで失敗する。
	StoreTimeout time.Duration
}

// Service はログイン（資格情報の検証とトークン発行）と
// 登録（ハッシュ化と永続化）をオーケストレーションする。
type Service struct {
	users     repository.UserRepository
	blacklist repository.TokenBlacklistRepository
	hasher    *PasswordHasher
	codec     *TokenCodec
	metrics   Metrics
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	blacklist repository.TokenBlacklistRepository,
	hasher *PasswordHasher,
	codec *TokenCodec,
	metrics Metrics,
	config ServiceConfig,
) *Service {
	return &Service{
		users:     users,
		blacklist: blacklist,
		hasher:    hasher,
		codec:     codec,
		metrics:   metrics,
		config:    config,
	}
}

// Login は識別子とパスワードを検証し、署名付きトークンを発行する。
// 識別子が存在しない場合とパスワード不一致の場合は同一のInvalidCredentials
// エラーを返す（どちらが原因かは応答から判別できない）。
// ストア呼び出しはパスワード照合の前に完了するため、CPUバウンドな
// ハッシュ計算中にプールのコネクションを占有しない。
func (s *Service) Login(ctx context.Context, identifier, password string) (string, *model.User, error) {
	user, err := s.findUser(ctx, identifier)
	if err != nil {
		slog.Error("failed to find user for login", slog.String("error", err.Error()))
		return "", nil, model.NewStoreUnavailableError()
	}

	if user == nil {
		// ユーザー不在でもダミーハッシュとの照合を行い、タイミングを揃える
		s.hasher.Verify(password, dummyHash)
		s.metrics.RecordLoginFailure()
		slog.Warn("login failed", slog.String("reason", "unknown_identifier"))
		return "", nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordLoginFailure()
		slog.Warn("login failed",
			slog.String("reason", "password_mismatch"),
			slog.Int64("user_id", user.ID),
		)
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, err := s.codec.Encode(Claims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   string(user.Role),
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordLoginSuccess()
	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return token, user, nil
}

// Register はパスワードをハッシュ化してユーザーを永続化する。
// APIから登録できる役割はclientのみ。メールアドレスの重複は
// ストレージ層のUNIQUE制約を唯一の正とし、アプリケーション層での
// 事前チェックは行わない（並行登録の競合を制約で排除する）。
// 返却するレコードにハッシュは含めない。
func (s *Service) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if role != model.RoleClient {
		return nil, model.NewForbiddenRoleError()
	}

	// ハッシュ化はCPUバウンドのため、ストア呼び出しの外で先に済ませる
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	if err := s.users.Create(storeCtx, user); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		slog.Error("failed to create user", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}

	s.metrics.RecordRegistration()
	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	user.PasswordHash = ""
	return user, nil
}

// Logout はトークンのjtiを失効リストに登録する。
// 登録期間はトークン自体の有効期限までで十分（期限後は署名検証で弾かれる）。
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return model.NewUnauthorizedError()
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	if err := s.blacklist.Add(storeCtx, claims.ID, claims.ExpiresAt.Time); err != nil {
		slog.Error("failed to blacklist token", slog.String("error", err.Error()))
		return model.NewStoreUnavailableError()
	}

	slog.Info("user logged out", slog.Int64("user_id", claims.UserID))
	return nil
}

// findUser はタイムアウト付きでユーザーを検索する。
func (s *Service) findUser(ctx context.Context, identifier string) (*model.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()
	return s.users.FindByIdentifier(storeCtx, identifier)
}
