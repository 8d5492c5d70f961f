package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"slack-data-bot/project/domain"
	"slack-data-bot/project/handler"
	"slack-data-bot/project/infrastructure/cache"
	"slack-data-bot/project/infrastructure/config"
	"slack-data-bot/project/infrastructure/google"
	"slack-data-bot/project/infrastructure/httpsec"
	"slack-data-bot/project/infrastructure/ratelimit"
	slackinfra "slack-data-bot/project/infrastructure/slack"
	"slack-data-bot/project/infrastructure/store"
	"slack-data-bot/project/infrastructure/tasks"
	"slack-data-bot/project/service"
)

// スラッシュコマンドのレート制限（インタラクションより厳しめ）
const slashRateLimit = 50

func main() {
	ctx := context.Background()

	// 1. 設定を読み込む
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		log.Fatalf("設定読み込み失敗: %v", err)
	}

	// 2. 依存関係を初期化
	// Firestore 監査ログ（FIRESTORE_PROJECT_ID 未設定なら無効）
	var auditRepo domain.AuditRepository
	if cfg.FirestoreProjectID != "" {
		repo, err := store.NewFirestoreRepo(ctx, cfg)
		if err != nil {
			log.Fatalf("Firestore 初期化失敗: %v", err)
		}
		defer repo.Close()
		auditRepo = repo
	} else {
		log.Printf("FIRESTORE_PROJECT_ID 未設定のため監査ログは無効です")
	}

	// Slack API ポート実装
	slackClient := slackinfra.NewClient(cfg.SlackBotToken)

	// Google Sheets / Drive ポート実装（一覧キャッシュ付き）
	listCache := cache.New()
	storageSvc, err := google.NewService(ctx, cfg.GoogleCredentialsFile, cfg.DriveFolderID, listCache, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Google クライアント初期化失敗: %v", err)
	}

	// 3. サービス層を初期化
	notifier := service.NewNotifier(slackClient)
	runner := tasks.NewRunner(cfg.MaxBackgroundTasks, notifier.Notify)
	dispatcher := service.NewDispatcher(storageSvc, slackClient, runner, notifier, auditRepo)

	// セキュリティパイプライン（署名検証・許可リスト・レート制限・監査）
	limiter := ratelimit.NewLimiter()
	stopSweeper := limiter.StartSweeper(10 * time.Minute)
	defer stopSweeper()

	sec := handler.NewSecurity(
		cfg.SlackSigningSecret,
		httpsec.NewAllowList(cfg.AllowedUserIDs),
		limiter,
		auditRepo,
	)

	// 4. HTTP ハンドラーを設定
	mux := http.NewServeMux()

	// Slack スラッシュコマンド
	mux.Handle("/api/command",
		handler.NewCommandsHandler(sec, dispatcher, slashRateLimit, cfg.RateLimitWindow))

	// Slack インタラクション（ボタン押下・モーダル送信）
	mux.Handle("/api/interactions/command",
		handler.NewInteractionsHandler(sec, dispatcher, cfg.RateLimitRequests, cfg.RateLimitWindow))

	// ヘルスチェック
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// 5. サーバー起動
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("サーバー起動: %s", addr)

	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Fatalf("サーバーエラー: %v", err)
	}
}
