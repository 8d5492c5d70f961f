package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Info はレート制限チェックの結果詳細です
type Info struct {
	// Remaining はウィンドウ内の残りリクエスト数
	Remaining int

	// RetryAfter は制限超過時に再試行可能になるまでの秒数
	RetryAfter int

	// ResetAt はウィンドウがリセットされる時刻（Unix秒）
	ResetAt int64

	// Used はウィンドウ内で消費したリクエスト数
	Used int

	// Max はウィンドウあたりの最大リクエスト数
	Max int
}

// entry は (ユーザー, アクション) キーごとのウィンドウ状態です
type entry struct {
	count   int
	resetAt time.Time
}

// Limiter は固定ウィンドウ方式のプロセス内レートリミッターです
// ウィンドウはタイマーではなくアクセス時に遅延ロールオーバーします
// カウンタの更新はキー単位でアトミックです（並行インクリメントの取りこぼし防止）
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewLimiter はレートリミッターを初期化します
func NewLimiter() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Key は (ユーザーID, アクション) のレート制限キーを生成します
func Key(userID, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", userID, action)
}

// Check はキーのカウンタを検査し、許可される場合はインクリメントします
//  1. キーが未登録なら count=0, resetAt=now+window で初期化
//  2. now > resetAt ならウィンドウを巻き直す（遅延ロールオーバー）
//  3. count >= max なら不許可、RetryAfter = resetAt - now
//  4. それ以外は count をインクリメントして許可
func (l *Limiter) Check(key string, max int, window time.Duration) (bool, Info) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 0, resetAt: now.Add(window)}
		l.entries[key] = e
	}

	if e.count >= max {
		retryAfter := int(e.resetAt.Sub(now).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		return false, Info{
			Remaining:  0,
			RetryAfter: retryAfter,
			ResetAt:    e.resetAt.Unix(),
			Used:       e.count,
			Max:        max,
		}
	}

	e.count++
	return true, Info{
		Remaining: max - e.count,
		ResetAt:   e.resetAt.Unix(),
		Used:      e.count,
		Max:       max,
	}
}

// Sweep は期限切れのエントリを削除し、削除件数を返します
// メモリ増加を抑えるため定期的に呼び出します
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len は現在保持しているエントリ数を返します
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// StartSweeper は interval ごとに Sweep を実行するバックグラウンドループを開始します
// 返り値の関数を呼ぶとループを停止します
func (l *Limiter) StartSweeper(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Sweep()
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
