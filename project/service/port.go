package service

import (
	"context"

	"slack-data-bot/project/domain"
	"slack-data-bot/project/infrastructure/tasks"
)

// SlackPort は Slack API 呼び出しのポートです
type SlackPort interface {
	// PostEphemeralText はユーザーにだけ見えるテキストメッセージを投稿します
	// channelID が空の場合はユーザーとのDMに投稿します
	PostEphemeralText(ctx context.Context, channelID, userID, text string) error

	// PostResourceList はリソース一覧を Block Kit 形式で投稿します
	PostResourceList(ctx context.Context, channelID, userID string, kind domain.ResourceKind, items []domain.ResourceInfo) error

	// PostResourceData はリソースのデータ（先頭行をヘッダ扱い）を
	// Refresh / Update Cell ボタン付きで投稿します
	PostResourceData(ctx context.Context, channelID, userID string, ref domain.ResourceRef, rows [][]string) error

	// OpenCreateModal はファイル作成モーダルを開きます
	// trigger_id は短命（約3秒）のため、遅延なく呼び出す必要があります
	OpenCreateModal(ctx context.Context, triggerID string, kind domain.ResourceKind) error

	// OpenUpdateModal はセル更新モーダルを開きます。対象リソースの記述子は
	// private_metadata に埋め込まれ、送信時にそのまま返ってきます
	OpenUpdateModal(ctx context.Context, triggerID string, ref domain.ResourceRef) error
}

// StoragePort はスプレッドシート／ファイルストレージ操作のポートです
// エラーは不透明な文字列として返り、domain.ClassifyRemoteError で分類されます
type StoragePort interface {
	// ListResources は Drive フォルダ内の指定種別のリソース一覧を返します
	ListResources(ctx context.Context, kind domain.ResourceKind) ([]domain.ResourceInfo, error)

	// ReadResource はリソースのデータを読み出します
	// readRange は Sheets のみ有効（空なら A1:Z10）。Excel / CSV は全体を返します
	ReadResource(ctx context.Context, ref domain.ResourceRef, readRange string) ([][]string, error)

	// WriteCell は単一セルを更新します。同一セルへの並行書き込みは
	// 後勝ち（last-write-wins）で、ロックは行いません
	WriteCell(ctx context.Context, ref domain.ResourceRef, row int, col, value string) error

	// CreateResource は新しいリソースを作成し、IDとURLを返します
	CreateResource(ctx context.Context, kind domain.ResourceKind, title string, rows [][]string) (*domain.ResourceInfo, error)
}

// TaskPort はバックグラウンドタスク提出のポートです
// 提出後の所有権はランナーに完全に移り、呼び出し側は参照を保持しません
type TaskPort interface {
	// Submit はタスクを提出します。上限到達時は tasks.ErrBusy を返します
	Submit(name, userID string, task tasks.Task) error
}
