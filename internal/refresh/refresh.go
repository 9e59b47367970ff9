// internal/refresh/refresh.go
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Func reloads whatever the operator is looking at.
type Func func(ctx context.Context) error

// Runner fires a reload on a cron schedule. Reloads never overlap: a tick
// that arrives while the previous reload is still running is skipped.
type Runner struct {
	schedule string
	fn       Func
	cron     *cron.Cron
	logger   *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field, plus descriptors like
// "@every 30s".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate reports whether schedule parses. The empty schedule is valid and
// means refresh is off.
func Validate(schedule string) error {
	if schedule == "" {
		return nil
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return nil
}

// New creates a Runner. Call Start to begin firing.
func New(schedule string, fn Func) *Runner {
	logger := slog.Default().With("component", "refresh")
	return &Runner{
		schedule: schedule,
		fn:       fn,
		logger:   logger,
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Enabled reports whether the runner has a schedule at all.
func (r *Runner) Enabled() bool { return r.schedule != "" }

// Start registers the schedule and starts the ticker. Each reload receives
// a context derived from ctx; Stop cancels it. With an empty schedule Start
// does nothing.
func (r *Runner) Start(ctx context.Context) error {
	if !r.Enabled() {
		r.logger.Debug("refresh disabled")
		return nil
	}
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(ctx)
	runCtx := r.ctx
	r.mu.Unlock()

	_, err := r.cron.AddFunc(r.schedule, func() {
		if runCtx.Err() != nil {
			return
		}
		if err := r.fn(runCtx); err != nil {
			r.logger.Warn("refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
	}
	r.logger.Info("refresh scheduled", "schedule", r.schedule)
	r.cron.Start()
	return nil
}

// Stop cancels in-flight reloads and stops the ticker.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	<-r.cron.Stop().Done()
}
