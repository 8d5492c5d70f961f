package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResourceKind は操作対象のファイル種別を表します
type ResourceKind string

const (
	// KindSheet は Google Sheets
	KindSheet ResourceKind = "sheet"

	// KindExcel は Drive 上の Excel ワークブック (.xlsx)
	KindExcel ResourceKind = "excel"

	// KindCSV は Drive 上の CSV ファイル
	KindCSV ResourceKind = "csv"
)

// Valid は既知のファイル種別かどうかを返します
func (k ResourceKind) Valid() bool {
	switch k {
	case KindSheet, KindExcel, KindCSV:
		return true
	}
	return false
}

// ResourceRef は特定のリソース（スプレッドシート・Excel・CSV）への参照です
// Refresh ボタンや更新モーダルの private_metadata に JSON で埋め込まれ、
// ラウンドトリップ後に再ディスパッチの宛先を決めるために使われます
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

// Validate は ResourceRef の必須項目を検証します
func (r ResourceRef) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: 不明なリソース種別です (kind=%s)", ErrInvalid, r.Kind)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: リソースIDは必須項目です", ErrInvalid)
	}
	return nil
}

// refDescriptor は既存UIとのワイヤ互換のための JSON 形式です
// 旧実装の {"source": "...", "params": {"sheet_id"|"file_id": "..."}} に一致させます
type refDescriptor struct {
	Source string            `json:"source"`
	Params map[string]string `json:"params"`
}

// EncodeDescriptor は ResourceRef をボタン value / private_metadata 用の
// JSON 記述子にエンコードします
func (r ResourceRef) EncodeDescriptor() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	d := refDescriptor{Source: string(r.Kind), Params: map[string]string{}}
	if r.Kind == KindSheet {
		d.Params["sheet_id"] = r.ID
	} else {
		d.Params["file_id"] = r.ID
	}

	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("%w: 記述子のJSON化に失敗しました: %v", ErrInvalid, err)
	}
	return string(b), nil
}

// DecodeDescriptor はボタン value / private_metadata の JSON 記述子を
// ResourceRef に復元します
func DecodeDescriptor(s string) (ResourceRef, error) {
	var d refDescriptor
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return ResourceRef{}, fmt.Errorf("%w: 記述子のパースに失敗しました: %v", ErrInvalid, err)
	}

	kind := ResourceKind(d.Source)
	if d.Source == "" {
		// 旧UIは source 省略時にシート扱いにしていた
		kind = KindSheet
	}

	ref := ResourceRef{Kind: kind}
	switch kind {
	case KindSheet:
		ref.ID = d.Params["sheet_id"]
	default:
		ref.ID = d.Params["file_id"]
	}

	if err := ref.Validate(); err != nil {
		return ResourceRef{}, err
	}
	return ref, nil
}

// ResourceInfo は Drive フォルダ一覧に表示するリソースのメタ情報です
type ResourceInfo struct {
	ID       string
	Name     string
	Modified string // RFC3339。表示時に日付部分だけ使う
	URL      string
}

// Outcome はバックグラウンド操作の結果です。成功か失敗のどちらか一方のみが
// 設定され、ResultNotifier がちょうど一度だけ消費します
type Outcome struct {
	OK      bool
	Message string
	Details string

	// 失敗時のみ
	Kind ErrorKind
}

// SuccessOutcome は成功結果を作成します
func SuccessOutcome(message, details string) Outcome {
	return Outcome{OK: true, Message: message, Details: details}
}

// FailureOutcome は失敗結果を作成します
func FailureOutcome(kind ErrorKind, message string) Outcome {
	return Outcome{OK: false, Kind: kind, Message: message}
}

// AuditEvent はセキュリティ・監査ログの1レコードです
// 認可拒否やディスパッチされたアクションを記録します
type AuditEvent struct {
	// UserID は操作を行った（試みた）SlackユーザーのID
	UserID string `firestore:"user_id"`

	// Action は操作種別（例: "slash_command_/start", "auth_denied"）
	Action string `firestore:"action"`

	// Detail は補足情報（コマンド引数、アクションIDなど）
	Detail string `firestore:"detail"`

	// CreatedAt はイベント発生時刻（Unix秒）
	CreatedAt int64 `firestore:"created_at"`
}

// Validate は AuditEvent の必須項目を検証します
func (e AuditEvent) Validate() error {
	if strings.TrimSpace(e.Action) == "" {
		return fmt.Errorf("%w: Actionは必須項目です", ErrInvalid)
	}
	if e.CreatedAt <= 0 {
		return fmt.Errorf("%w: CreatedAtは0より大きい必要があります", ErrInvalid)
	}
	return nil
}
