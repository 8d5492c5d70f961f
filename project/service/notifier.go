package service

import (
	"context"
	"fmt"
	"log"

	"slack-data-bot/project/domain"
)

// Notifier はバックグラウンド操作の結果をユーザーに届けます
// 配送はベストエフォートで、投稿自体の失敗はログに残すのみです
// （二次チャネルはありません）
type Notifier struct {
	cp SlackPort
}

// NewNotifier は通知コンポーネントを作成します
func NewNotifier(cp SlackPort) *Notifier {
	return &Notifier{cp: cp}
}

// Notify は Outcome を整形してユーザーへエフェメラル投稿します
// 成功かつメッセージが空の場合（結果自体が既に投稿済みのタスク）は何もしません
func (n *Notifier) Notify(ctx context.Context, userID string, o domain.Outcome) {
	text := n.format(o)
	if text == "" {
		return
	}

	if err := n.cp.PostEphemeralText(ctx, "", userID, text); err != nil {
		log.Printf("notifier: 結果通知の投稿失敗 (user=%s): %v", userID, err)
	}
}

// format は Outcome をユーザー向けテキストに整形します
// 失敗は既知のエラー種別ごとに対処方法つきの文言へ対応づけます
func (n *Notifier) format(o domain.Outcome) string {
	if o.OK {
		if o.Message == "" {
			return ""
		}
		text := fmt.Sprintf("✅ %s", o.Message)
		if o.Details != "" {
			text += "\n" + o.Details
		}
		return text
	}

	switch o.Kind {
	case domain.ErrorKindPermissionDenied:
		return "❌ Permission denied. Please check your Google account permissions."
	case domain.ErrorKindNotFound:
		return "❌ File not found. Please check that it still exists in your Drive folder."
	case domain.ErrorKindFormatUnsupported:
		return "❌ The file format is not supported. Supported formats: Google Sheets, .xlsx, .csv"
	default:
		return fmt.Sprintf("❌ %s", o.Message)
	}
}
