package store

import (
	"context"
	"fmt"

	"slack-data-bot/project/domain"
	"slack-data-bot/project/infrastructure/config"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// isNotFound は Firestore の NotFound エラーを判定するヘルパー関数です
func isNotFound(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.NotFound
}

// FirestoreRepo は domain.AuditRepository の Firestore 実装です
// 認可拒否やディスパッチ済みアクションの監査レコードを保存します
type FirestoreRepo struct {
	cli      *firestore.Client
	auditCol string
}

// NewFirestoreRepo は Firestore リポジトリを初期化します
func NewFirestoreRepo(ctx context.Context, cfg *config.Config) (*FirestoreRepo, error) {
	client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
	if err != nil {
		return nil, fmt.Errorf("firestore: クライアント初期化失敗: %w", err)
	}

	return &FirestoreRepo{
		cli:      client,
		auditCol: cfg.CollectionAudit,
	}, nil
}

// Save は監査イベントを保存します
func (repo *FirestoreRepo) Save(ctx context.Context, e *domain.AuditEvent) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("firestore: Save検証失敗: %w", err)
	}

	// ドキュメントIDは自動採番（同一ユーザーの同時イベントを衝突させない）
	data := map[string]interface{}{
		"user_id":    e.UserID,
		"action":     e.Action,
		"detail":     e.Detail,
		"created_at": e.CreatedAt,
	}

	if _, _, err := repo.cli.Collection(repo.auditCol).Add(ctx, data); err != nil {
		return fmt.Errorf("firestore: 監査イベント保存失敗 (action=%s): %w", e.Action, err)
	}

	return nil
}

// ListByUser は指定ユーザーの監査イベントを新しい順に最大 limit 件取得します
func (repo *FirestoreRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	iter := repo.cli.Collection(repo.auditCol).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var events []*domain.AuditEvent
	for {
		snapshot, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if isNotFound(err) {
				break
			}
			return nil, fmt.Errorf("firestore: 監査イベント取得失敗 (user=%s): %w", userID, err)
		}

		// Firestore ドキュメントから domain.AuditEvent へ写経
		var e domain.AuditEvent
		if err := snapshot.DataTo(&e); err != nil {
			return nil, fmt.Errorf("firestore: 監査イベント構造体変換失敗: %w", err)
		}
		events = append(events, &e)
	}

	return events, nil
}

// Close は Firestore クライアントを閉じます
func (repo *FirestoreRepo) Close() error {
	if repo.cli != nil {
		return repo.cli.Close()
	}
	return nil
}
