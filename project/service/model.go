package service

import (
	"fmt"

	"slack-data-bot/project/domain"
	"slack-data-bot/project/dto"
)

// Interaction は正規化されたインバウンドイベントのタグ付きバリアントです
// SlashCommand / BlockAction / ViewSubmission のうちちょうど1つだけが設定されます
// 認識できない形のペイロードは分類時に拒否され、推測はしません
type Interaction struct {
	SlashCommand   *SlashCommand
	BlockAction    *BlockAction
	ViewSubmission *ViewSubmission
}

// Validate はちょうど1つのバリアントが設定されていることを検証します
func (i Interaction) Validate() error {
	n := 0
	if i.SlashCommand != nil {
		n++
	}
	if i.BlockAction != nil {
		n++
	}
	if i.ViewSubmission != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("%w: Interactionはちょうど1つのバリアントを持つ必要があります (n=%d)", domain.ErrInvalid, n)
	}
	return nil
}

// SlashCommand はスラッシュコマンドのバリアントです
type SlashCommand struct {
	Command   string
	Text      string
	UserID    string
	ChannelID string
	TriggerID string
}

// BlockAction はボタン押下（block_actions）のバリアントです
// Slack は actions 配列を送りますが、処理対象は先頭の1件のみです
type BlockAction struct {
	ActionID  string
	Value     string
	TriggerID string
	UserID    string
	ChannelID string
}

// ViewSubmission はモーダル送信（view_submission）のバリアントです
type ViewSubmission struct {
	CallbackID      string
	PrivateMetadata string
	State           dto.SlackViewState
	UserID          string
}

// AckKind は同期応答の種類です
type AckKind int

const (
	// AckOK は `{"ok": true}` の空応答（インタラクション用）
	AckOK AckKind = iota

	// AckEphemeralText はエフェメラルテキスト応答（スラッシュコマンド用）
	AckEphemeralText

	// AckMenu はメインメニュー（/start の in_channel 応答）
	AckMenu

	// AckViewClear はモーダルを閉じる view_submission 応答
	AckViewClear

	// AckViewErrors はフィールド単位のバリデーションエラーを
	// モーダルへインライン表示する view_submission 応答
	AckViewErrors
)

// Ack はディスパッチャーが返す即時応答です。HTTPハンドラーが
// チャットプラットフォームのワイヤ形式に変換します
// バリデーションエラーは必ずこの同期応答で返り、通知経由では届きません
type Ack struct {
	Kind AckKind
	Text string

	// FieldErrors は AckViewErrors のときのみ設定（block_id -> メッセージ）
	FieldErrors map[string]string
}

// ackOK / ackText / ackViewClear / ackViewErrors は Ack のコンストラクタ群です
func ackOK() Ack                { return Ack{Kind: AckOK} }
func ackText(text string) Ack  { return Ack{Kind: AckEphemeralText, Text: text} }
func ackMenu(text string) Ack  { return Ack{Kind: AckMenu, Text: text} }
func ackViewClear() Ack        { return Ack{Kind: AckViewClear} }
func ackViewErrors(errs map[string]string) Ack {
	return Ack{Kind: AckViewErrors, FieldErrors: errs}
}
