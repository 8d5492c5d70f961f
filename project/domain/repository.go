package domain

import (
	"context"
)

// AuditRepository はセキュリティ・監査イベントの永続化を担当します
// 記録はベストエフォートであり、失敗しても呼び出し側の処理は継続します
type AuditRepository interface {
	// Save は監査イベントを保存します
	// バリデーションエラー時は domain.ErrInvalid を返します
	Save(ctx context.Context, e *AuditEvent) error

	// ListByUser は指定ユーザーの監査イベントを新しい順に最大 limit 件取得します
	// 1件も存在しない場合は空スライスを返します（エラーにしません）
	ListByUser(ctx context.Context, userID string, limit int) ([]*AuditEvent, error)
}
