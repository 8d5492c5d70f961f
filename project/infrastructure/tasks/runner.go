package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"slack-data-bot/project/domain"
)

// ErrBusy は同時実行数が上限に達している場合に Submit が返すエラーです
// キューに積まずに即時拒否することでバックプレッシャーを明示します
var ErrBusy = errors.New("tasks: バックグラウンドワーカーが上限に達しています")

// Task はバックグラウンドで実行される作業単位です
// 提出時に必要な文脈をすべて値で捕捉し、結果を Outcome として返します
type Task func(ctx context.Context) domain.Outcome

// NotifyFunc はタスク完了時に結果を受け取るコールバックです
type NotifyFunc func(ctx context.Context, userID string, outcome domain.Outcome)

// Runner は投げっぱなし方式のバックグラウンド実行基盤です
// チャネルセマフォで同時実行数を制限し、各タスクは独立した goroutine で走ります
// タスクからの panic は境界で回収されて Failure Outcome に変換されるため、
// ワーカーが黙って死ぬことはありません
type Runner struct {
	sem    chan struct{}
	notify NotifyFunc
	wg     sync.WaitGroup
}

// NewRunner はバックグラウンドランナーを初期化します
// maxConcurrent が0以下の場合はデフォルト値(32)を使います
func NewRunner(maxConcurrent int, notify NotifyFunc) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 32
	}
	return &Runner{
		sem:    make(chan struct{}, maxConcurrent),
		notify: notify,
	}
}

// Submit はタスクを提出します。呼び出し側へ結果を返すチャネルはありません。
// 結果は登録済みの NotifyFunc 経由でユーザーへ届きます
// 同時実行数が上限に達している場合は ErrBusy を即時返却します
func (r *Runner) Submit(name, userID string, task Task) error {
	select {
	case r.sem <- struct{}{}:
	default:
		return fmt.Errorf("%w (task=%s)", ErrBusy, name)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() { <-r.sem }()

		// HTTPリクエストは既に応答済みのため、リクエストコンテキストとは独立
		ctx := context.Background()

		outcome := r.run(ctx, name, task)
		if r.notify != nil {
			r.notify(ctx, userID, outcome)
		}
	}()

	return nil
}

// run はタスクを panic 境界付きで実行します
func (r *Runner) run(ctx context.Context, name string, task Task) (outcome domain.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("tasks: タスク panic 回収 (task=%s): %v", name, rec)
			outcome = domain.FailureOutcome(domain.ErrorKindGeneric,
				fmt.Sprintf("Unexpected error while processing %s", name))
		}
	}()

	return task(ctx)
}

// Wait は実行中のタスクがすべて完了するまでブロックします（シャットダウン・テスト用）
func (r *Runner) Wait() {
	r.wg.Wait()
}
