// Package cleanup は期限切れセッションの定期削除ジョブを提供する。
// セッション行は期限切れでも参照時に無効として扱われるため、
// このジョブはテーブルの肥大化を防ぐ目的で動く。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/rentafamily/internal/metrics"
)

// SessionPurger は期限切れセッションの削除を抽象化するインターフェース。
// repository.SessionRepositoryの部分集合。
type SessionPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// CleanupJob は期限切れセッションの削除ジョブ。
// 冪等で、削除対象がない場合もエラーにならない。
type CleanupJob struct {
	sessions SessionPurger
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
	now      func() time.Time
}

// NewCleanupJob は新しいCleanupJobを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewCleanupJob(sessions SessionPurger, collector metrics.MetricsCollector, logger *slog.Logger) *CleanupJob {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &CleanupJob{
		sessions: sessions,
		metrics:  collector,
		logger:   logger,
		now:      time.Now,
	}
}

// Run は現在時刻で期限切れとなっているセッションを削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := j.now()

	deleted, err := j.sessions.DeleteExpired(ctx, start)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	j.metrics.RecordSessionsPurged(int(deleted))
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start は起動直後に1回、その後intervalごとにRunを実行する。
// ctxがキャンセルされるまでブロックする。個々の実行の失敗はログのみで継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	_ = j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
