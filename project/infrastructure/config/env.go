package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"slack-data-bot/project/infrastructure/secret"
)

// Config は環境変数から読み込まれるアプリケーション設定を表します
type Config struct {
	// 基本設定
	Port       string
	GcpProject string

	// Slack API設定
	SlackSigningSecret string // GCP_PROJECT 設定時は Secret Manager から読み込み
	SlackBotToken      string // 同上
	AllowedUserIDs     []string

	// Google Drive / Sheets 設定
	GoogleCredentialsFile string
	DriveFolderID         string

	// Firestore 監査ログ設定（空の場合は監査ログ無効）
	FirestoreProjectID string
	CollectionAudit    string

	// レート制限設定
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// バックグラウンド実行設定
	MaxBackgroundTasks int

	// キャッシュ設定
	CacheTTL time.Duration
}

// NewConfig は環境変数から設定を読み込み、Config構造体を返します
// センシティブな情報（Slack認証情報）は GCP_PROJECT が設定されていれば
// Secret Manager から取得し、ローカル実行時は環境変数にフォールバックします
func NewConfig(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Port:                  getEnvOr("PORT", "8080"),
		GcpProject:            os.Getenv("GCP_PROJECT"),
		GoogleCredentialsFile: getEnvOr("GOOGLE_CREDENTIALS_FILE", "credentials/service-account.json"),
		DriveFolderID:         os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		FirestoreProjectID:    os.Getenv("FIRESTORE_PROJECT_ID"),
		CollectionAudit:       getEnvOr("FS_COLLECTION_AUDIT", "audit_events"),
	}

	// 許可ユーザーリスト（カンマ区切り）
	for _, id := range strings.Split(os.Getenv("ALLOWED_USER_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.AllowedUserIDs = append(cfg.AllowedUserIDs, id)
		}
	}

	// レート制限（デフォルト: 100リクエスト/1時間）
	var err error
	cfg.RateLimitRequests, err = getEnvIntOr("RATE_LIMIT_REQUESTS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	windowSec, err := getEnvIntOr("RATE_LIMIT_WINDOW", 3600)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.RateLimitWindow = time.Duration(windowSec) * time.Second

	// バックグラウンドワーカー上限
	cfg.MaxBackgroundTasks, err = getEnvIntOr("MAX_BACKGROUND_TASKS", 32)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_BACKGROUND_TASKS: %w", err)
	}

	// キャッシュTTL（デフォルト: 5分）
	cacheTTLSec, err := getEnvIntOr("CACHE_DEFAULT_TIMEOUT", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_DEFAULT_TIMEOUT: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTLSec) * time.Second

	// Slack 認証情報の取得
	if cfg.GcpProject != "" {
		// Secret Manager から取得
		mgr, err := secret.NewManager(ctx, cfg.GcpProject)
		if err != nil {
			return nil, fmt.Errorf("Secret Manager 初期化失敗: %w", err)
		}
		defer mgr.Close()

		cfg.SlackSigningSecret, err = mgr.GetSecret(ctx, "slack-signing-secret")
		if err != nil {
			return nil, fmt.Errorf("SLACK_SIGNING_SECRET 取得失敗: %w", err)
		}

		cfg.SlackBotToken, err = mgr.GetSecret(ctx, "slack-bot-token")
		if err != nil {
			return nil, fmt.Errorf("SLACK_BOT_TOKEN 取得失敗: %w", err)
		}
	} else {
		// ローカル実行: 環境変数から取得
		cfg.SlackSigningSecret = mustGetEnv("SLACK_SIGNING_SECRET")
		cfg.SlackBotToken = mustGetEnv("SLACK_BOT_TOKEN")
	}

	return cfg, nil
}

// mustGetEnv は環境変数を取得し、存在しない場合はパニックします
func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable not set: %s", key))
	}
	return value
}

// getEnvOr は環境変数を取得し、未設定ならデフォルト値を返します
func getEnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvIntOr は整数の環境変数を取得し、未設定ならデフォルト値を返します
func getEnvIntOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
