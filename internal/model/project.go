package model

import "time"

// プロジェクトのステータス。
const (
	// ProjectStatusPending は作成直後の初期ステータス。
	ProjectStatusPending = "pending"
	// ProjectStatusActive は作業中のステータス。
	ProjectStatusActive = "active"
	// ProjectStatusCompleted は完了済みのステータス。
	ProjectStatusCompleted = "completed"
)

// Project はクライアントが依頼するプロジェクトを表す。
type Project struct {
	ID          string
	UserID      int64
	Name        string
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectWithOwner はプロジェクトと所有者情報を結合した一覧表示用のビュー。
type ProjectWithOwner struct {
	Project
	OwnerName  string
	OwnerEmail string
}

// Contract はプロジェクトに紐づく契約書・支払証明書類のレコードを表す。
// URLはストレージ上の保存先を指し、ファイル本体はDBに保持しない。
type Contract struct {
	ID          string
	ProjectID   string
	ContractURL string
	PaymentURL  string
	CreatedAt   time.Time
}

// ProgressUpdate はプロバイダーが投稿するプロジェクトの進捗報告を表す。
type ProgressUpdate struct {
	ID        string
	ProjectID string
	Body      string
	CreatedAt time.Time
}

// メッセージの種別。
const (
	// MessageTypeContract は書類アップロードに由来するメッセージ。
	MessageTypeContract = "contract"
	// MessageTypeUpdate は進捗報告に由来するメッセージ。
	MessageTypeUpdate = "update"
)

// Message はクライアントの受信箱に表示する通知ビュー。
// 契約書類レコードと進捗報告を時系列にマージしたもの。
type Message struct {
	ID          string
	ProjectID   string
	ProjectName string
	Type        string
	Content     string
	ContractURL string
	PaymentURL  string
	CreatedAt   time.Time
}
