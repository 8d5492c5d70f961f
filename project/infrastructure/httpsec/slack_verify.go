package httpsec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// replayWindowSeconds はリプレイ攻撃対策のタイムスタンプ許容幅（5分）
const replayWindowSeconds = 300

// VerifySlackSignature は Slack からのリクエストの署名を検証します
// リクエストの X-Slack-Signature ヘッダと X-Slack-Request-Timestamp ヘッダを確認し、
// 改ざんやリプレイ攻撃から保護します
func VerifySlackSignature(signingSecret, signature, timestamp, body string) error {
	// タイムスタンプの検証（5分以内）
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp format: %w", err)
	}

	now := time.Now().Unix()
	if abs(now-ts) > replayWindowSeconds {
		return fmt.Errorf("request timestamp too old: now=%d, ts=%d", now, ts)
	}

	// 署名の検証
	// Slack署名: "v0=<hash>"
	// hash = HMAC-SHA256("v0:<timestamp>:<body>", signingSecret)
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	expectedSignature := computeSignature(signingSecret, baseString)

	// 定時間比較（タイミング攻撃対策）
	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}

// computeSignature は Slack 署名を計算します
func computeSignature(signingSecret, baseString string) string {
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	hash := h.Sum(nil)
	// 16進数文字列に変換して "v0=" プレフィックスを付与
	return fmt.Sprintf("v0=%x", hash)
}

// abs は絶対値を計算します
func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// ResolveUserID はフォームから操作ユーザーのIDを解決します
// 優先順位は固定: (1) トップレベルの user_id フィールド、
// (2) インタラクティブペイロード "payload" 内の user.id。
// どちらからも得られない場合は空文字列を返し、呼び出し側はフェイルクローズします
func ResolveUserID(form url.Values) string {
	if userID := form.Get("user_id"); userID != "" {
		return userID
	}

	payload := form.Get("payload")
	if payload == "" {
		return ""
	}

	var envelope struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return ""
	}
	return envelope.User.ID
}

// AllowList は利用を許可されたユーザーIDの静的な集合です
type AllowList map[string]struct{}

// NewAllowList はユーザーIDのスライスから許可リストを作成します
// 空要素は無視されます
func NewAllowList(userIDs []string) AllowList {
	al := make(AllowList, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			al[id] = struct{}{}
		}
	}
	return al
}

// Contains は指定ユーザーが許可リストに含まれるかを返します
// リスト自体が空の場合は全員拒否です
func (al AllowList) Contains(userID string) bool {
	if len(al) == 0 {
		return false
	}
	_, ok := al[userID]
	return ok
}
