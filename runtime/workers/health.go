package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"chat-relay/domain"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"
)

// PresenceSource exposes the current online-user set for health reporting.
type PresenceSource interface {
	OnlineUsers() []domain.UserID
}

// HealthWorker periodically logs self process stats and the size of the
// online set. It is observability for operators reading logs, nothing
// downstream consumes it.
type HealthWorker struct {
	log      *slog.Logger
	presence PresenceSource
	interval time.Duration
}

func NewHealthWorker(log *slog.Logger, presence PresenceSource, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, presence: presence, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health reporting")
			return nil
		case <-ticker.C:
			online := len(w.presence.OnlineUsers())

			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := p.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}

			w.log.Info("health",
				"online_users", online,
				"cpu_percent", cpu,
				"ram_percent", ram,
				"goroutines", runtime.NumGoroutine())
		}
	}
}
