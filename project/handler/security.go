package handler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slack-data-bot/project/domain"
	"slack-data-bot/project/infrastructure/httpsec"
	"slack-data-bot/project/infrastructure/ratelimit"
)

// Security は両エンドポイント共通のリクエスト検証パイプラインです
// 署名検証 → ユーザーID解決 → 許可リスト → レート制限の順に確認し、
// 失敗時は理由を漏らさない汎用レスポンスを書き込みます
type Security struct {
	signingSecret string
	allowList     httpsec.AllowList
	limiter       *ratelimit.Limiter
	audit         domain.AuditRepository // nil なら監査ログ無効
}

// NewSecurity は検証パイプラインを作成します
func NewSecurity(signingSecret string, allowList httpsec.AllowList, limiter *ratelimit.Limiter, audit domain.AuditRepository) *Security {
	return &Security{
		signingSecret: signingSecret,
		allowList:     allowList,
		limiter:       limiter,
		audit:         audit,
	}
}

// Authenticate は署名・ユーザーID・許可リストを検証します
// 成功時はパース済みフォームとユーザーIDを返します。失敗時はレスポンスを
// 書き込み済みで ok=false を返します
func (s *Security) Authenticate(w http.ResponseWriter, r *http.Request) (form url.Values, userID string, ok bool) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("security: リクエストボディの読み込み失敗: %v", err)
		writeJSON(w, http.StatusInternalServerError, `{"error":"internal_error"}`)
		return nil, "", false
	}

	if err := httpsec.VerifySlackSignature(s.signingSecret,
		r.Header.Get("X-Slack-Signature"),
		r.Header.Get("X-Slack-Request-Timestamp"),
		string(bodyBytes)); err != nil {
		log.Printf("security: 署名検証失敗 (path=%s): %v", r.URL.Path, err)
		writeJSON(w, http.StatusUnauthorized, `{"error":"unauthorized"}`)
		return nil, "", false
	}

	form = parseFormFromBytes(bodyBytes)

	// 操作ユーザーを特定できないリクエストはフェイルクローズ
	userID = httpsec.ResolveUserID(form)
	if userID == "" {
		log.Printf("security: ユーザーIDを解決できません (path=%s)", r.URL.Path)
		writeJSON(w, http.StatusUnauthorized, `{"error":"unauthorized"}`)
		return nil, "", false
	}

	if !s.allowList.Contains(userID) {
		log.Printf("security: 許可リスト外のユーザー (user=%s, path=%s)", userID, r.URL.Path)
		s.recordAudit(userID, "auth_denied", r.URL.Path)
		writeJSON(w, http.StatusForbidden, `{"error":"access_denied"}`)
		return nil, "", false
	}

	return form, userID, true
}

// CheckRateLimit は (ユーザー, アクション) のレート制限を確認します
// 超過時は 429 と Retry-After / X-RateLimit-* ヘッダを書き込みます
func (s *Security) CheckRateLimit(w http.ResponseWriter, userID, action string, max int, window time.Duration) bool {
	allowed, info := s.limiter.Check(ratelimit.Key(userID, action), max, window)

	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Max))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetAt))

	if !allowed {
		log.Printf("security: レート制限超過 (user=%s, action=%s, used=%d/%d)", userID, action, info.Used, info.Max)
		s.recordAudit(userID, "rate_limited", action)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", info.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests,
			fmt.Sprintf(`{"error":"rate_limit_exceeded","retry_after":%d}`, info.RetryAfter))
		return false
	}

	return true
}

// RecordAction はディスパッチされた操作を監査ログに残します（ベストエフォート）
func (s *Security) RecordAction(userID, action, detail string) {
	s.recordAudit(userID, action, detail)
}

// recordAudit は監査イベントを非同期で保存します
// 保存失敗はログに残すのみで、リクエスト処理には影響させません
func (s *Security) recordAudit(userID, action, detail string) {
	if s.audit == nil {
		return
	}

	event := &domain.AuditEvent{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().Unix(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.Save(ctx, event); err != nil {
			log.Printf("security: 監査ログの保存失敗 (action=%s): %v", action, err)
		}
	}()
}

// writeJSON は JSON レスポンスを書き込みます
func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

// parseFormFromBytes はバイト列からURLエンコードされたフォームをパースします
func parseFormFromBytes(b []byte) url.Values {
	values := make(url.Values)
	for _, pair := range strings.Split(string(b), "&") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 {
			key, _ := url.QueryUnescape(parts[0])
			val, _ := url.QueryUnescape(parts[1])
			values[key] = append(values[key], val)
		}
	}
	return values
}
