package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// セキュリティ上の詳細（識別子の存在有無、トークン検証の失敗理由）は
// 決して含めず、ログのみに記録する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, project, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeForbiddenRole       = "FORBIDDEN_ROLE"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeProjectNotFound     = "PROJECT_NOT_FOUND"
	ErrCodeNotProjectOwner     = "NOT_PROJECT_OWNER"
	ErrCodeProjectHasDocuments = "PROJECT_HAS_DOCUMENTS"
	ErrCodeDocumentNotFound    = "DOCUMENT_NOT_FOUND"
)

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// 識別子が存在しない場合とパスワード不一致の場合で同一のエラーを返し、
// ユーザー列挙攻撃を防ぐ。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewForbiddenRoleError はAPIから許可されない役割での登録エラーを生成する。
func NewForbiddenRoleError() *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenRole,
		Message:  "この役割ではAPIから登録できません。",
		Category: "validation",
		Action:   "clientとして登録してください。プロバイダーアカウントは運用側が作成します。",
	}
}

// NewStoreUnavailableError はストア接続障害エラーを生成する。
// 一時的なインフラ障害であり、呼び出し側のバックオフ付きリトライが可能。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "データストアに接続できませんでした。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidRequestError はリクエスト不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewUnauthorizedError は認証必須エラーを生成する。
// トークンの欠落・不正形式・署名不一致・期限切れのすべてで同一のエラーを返し、
// 検証内部の情報を漏らさない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインして有効なトークンを提示してください。",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定されたプロジェクトが見つかりません: %s", projectID),
		Category: "project",
		Action:   "プロジェクトIDを確認してください。",
	}
}

// NewNotProjectOwnerError は所有者以外による操作エラーを生成する。
func NewNotProjectOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotProjectOwner,
		Message:  "このプロジェクトを操作する権限がありません。",
		Category: "project",
		Action:   "自分が作成したプロジェクトのみ操作できます。",
	}
}

// NewProjectHasDocumentsError は書類アップロード済みプロジェクトのキャンセルエラーを生成する。
func NewProjectHasDocumentsError() *APIError {
	return &APIError{
		Code:     ErrCodeProjectHasDocuments,
		Message:  "契約書類がアップロード済みのため、プロジェクトをキャンセルできません。",
		Category: "project",
		Action:   "担当プロバイダーに連絡してください。",
	}
}

// NewDocumentNotFoundError は書類ファイル未検出エラーを生成する。
func NewDocumentNotFoundError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDocumentNotFound,
		Message:  fmt.Sprintf("指定されたファイルが見つかりません: %s", name),
		Category: "project",
		Action:   "ファイル名を確認してください。",
	}
}
