package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// newTestLimiter は時刻を注入可能なリミッターを作ります
func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	current := start
	l := NewLimiter()
	l.now = func() time.Time { return current }
	return l, &current
}

func TestCheckSequence(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1700000000, 0))
	key := Key("U1", "slash_command")

	// 3回まで許可され、残数が減っていく
	for i, wantRemaining := range []int{2, 1, 0} {
		allowed, info := l.Check(key, 3, time.Minute)
		if !allowed {
			t.Fatalf("request %d: should be allowed", i+1)
		}
		if info.Remaining != wantRemaining {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, info.Remaining, wantRemaining)
		}
	}

	// 4回目は拒否
	allowed, info := l.Check(key, 3, time.Minute)
	if allowed {
		t.Fatal("4th request should be denied")
	}
	if info.RetryAfter < 1 || info.RetryAfter > 60 {
		t.Errorf("RetryAfter = %d, want 1..60", info.RetryAfter)
	}
	if info.Used != 3 {
		t.Errorf("Used = %d, want 3", info.Used)
	}
}

func TestCheckLazyRollover(t *testing.T) {
	l, current := newTestLimiter(time.Unix(1700000000, 0))
	key := Key("U1", "interaction")

	for i := 0; i < 2; i++ {
		if allowed, _ := l.Check(key, 2, time.Minute); !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if allowed, _ := l.Check(key, 2, time.Minute); allowed {
		t.Fatal("over-limit request should be denied")
	}

	// ウィンドウ経過後の最初のアクセスで巻き直る
	*current = current.Add(61 * time.Second)
	allowed, info := l.Check(key, 2, time.Minute)
	if !allowed {
		t.Fatal("request after window should be allowed")
	}
	if info.Used != 1 {
		t.Errorf("Used after rollover = %d, want 1", info.Used)
	}
}

func TestCheckKeyIsolation(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1700000000, 0))

	// ユーザーとアクションの組ごとに独立したカウンタ
	if allowed, _ := l.Check(Key("U1", "a"), 1, time.Minute); !allowed {
		t.Fatal("first key should be allowed")
	}
	if allowed, _ := l.Check(Key("U1", "a"), 1, time.Minute); allowed {
		t.Fatal("first key should be exhausted")
	}
	if allowed, _ := l.Check(Key("U1", "b"), 1, time.Minute); !allowed {
		t.Error("different action should have its own counter")
	}
	if allowed, _ := l.Check(Key("U2", "a"), 1, time.Minute); !allowed {
		t.Error("different user should have its own counter")
	}
}

func TestCheckConcurrent(t *testing.T) {
	l := NewLimiter()
	key := Key("U1", "interaction")

	const workers = 50
	const max = 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Check(key, max, time.Hour); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 並行でもちょうど max 件だけ通る（取りこぼしなし）
	if allowedCount != max {
		t.Errorf("allowed %d requests, want exactly %d", allowedCount, max)
	}
}

func TestSweep(t *testing.T) {
	l, current := newTestLimiter(time.Unix(1700000000, 0))

	l.Check(Key("U1", "a"), 5, time.Minute)
	l.Check(Key("U2", "a"), 5, time.Hour)

	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}

	*current = current.Add(2 * time.Minute)
	if removed := l.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len after sweep = %d, want 1", l.Len())
	}
}
