package httpsec

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"net/url"
	"testing"
	"time"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

// sign はテスト用に正しい Slack 署名を計算します
func sign(secret, timestamp, body string) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "v0:%s:%s", timestamp, body)
	return fmt.Sprintf("v0=%x", h.Sum(nil))
}

func TestVerifySlackSignature(t *testing.T) {
	body := "command=%2Fstart&user_id=U123"
	ts := fmt.Sprintf("%d", time.Now().Unix())
	sig := sign(testSecret, ts, body)

	if err := VerifySlackSignature(testSecret, sig, ts, body); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
}

func TestVerifySlackSignatureTampered(t *testing.T) {
	body := "command=%2Fstart&user_id=U123"
	ts := fmt.Sprintf("%d", time.Now().Unix())
	sig := sign(testSecret, ts, body)

	// ボディ改ざん
	if err := VerifySlackSignature(testSecret, sig, ts, body+"&admin=1"); err == nil {
		t.Error("tampered body accepted")
	}

	// 署名の1ビット反転
	tampered := []byte(sig)
	tampered[len(tampered)-1] ^= 1
	if err := VerifySlackSignature(testSecret, string(tampered), ts, body); err == nil {
		t.Error("bit-flipped signature accepted")
	}

	// 別のシークレットで計算した署名
	other := sign("other-secret", ts, body)
	if err := VerifySlackSignature(testSecret, other, ts, body); err == nil {
		t.Error("signature from wrong secret accepted")
	}
}

func TestVerifySlackSignatureStaleTimestamp(t *testing.T) {
	body := "command=%2Fstart"

	// 5分より古いタイムスタンプはリプレイとして拒否
	stale := fmt.Sprintf("%d", time.Now().Add(-6*time.Minute).Unix())
	if err := VerifySlackSignature(testSecret, sign(testSecret, stale, body), stale, body); err == nil {
		t.Error("stale timestamp accepted")
	}

	// 未来方向も同様に拒否
	future := fmt.Sprintf("%d", time.Now().Add(6*time.Minute).Unix())
	if err := VerifySlackSignature(testSecret, sign(testSecret, future, body), future, body); err == nil {
		t.Error("future timestamp accepted")
	}

	// 数値でないタイムスタンプ
	if err := VerifySlackSignature(testSecret, "v0=deadbeef", "soon", body); err == nil {
		t.Error("non-numeric timestamp accepted")
	}
}

func TestResolveUserID(t *testing.T) {
	// トップレベルの user_id が最優先
	form := url.Values{"user_id": {"U111"}, "payload": {`{"user": {"id": "U222"}}`}}
	if got := ResolveUserID(form); got != "U111" {
		t.Errorf("got %q, want U111", got)
	}

	// user_id がなければペイロード内の user.id
	form = url.Values{"payload": {`{"user": {"id": "U222"}}`}}
	if got := ResolveUserID(form); got != "U222" {
		t.Errorf("got %q, want U222", got)
	}

	// どちらからも得られなければ空（フェイルクローズ）
	for _, form := range []url.Values{
		{},
		{"payload": {"not json"}},
		{"payload": {`{"user": {}}`}},
	} {
		if got := ResolveUserID(form); got != "" {
			t.Errorf("ResolveUserID(%v) = %q, want empty", form, got)
		}
	}
}

func TestAllowList(t *testing.T) {
	al := NewAllowList([]string{"U1", "", "U2"})

	if !al.Contains("U1") || !al.Contains("U2") {
		t.Error("listed users should be allowed")
	}
	if al.Contains("U3") {
		t.Error("unlisted user should be denied")
	}
	if al.Contains("") {
		t.Error("empty user id should be denied")
	}

	// 空の許可リストは全員拒否
	empty := NewAllowList(nil)
	if empty.Contains("U1") {
		t.Error("empty allow list should deny everyone")
	}
}
