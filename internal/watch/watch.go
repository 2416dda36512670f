package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"geosummary/internal/domain"
	"geosummary/internal/summary"
)

// Summarizer produces the result for a report file.
type Summarizer interface {
	SummarizeFile(ctx context.Context, path string) (domain.ParsedResult, error)
}

// Publisher delivers a result, e.g. to a Slack channel.
type Publisher interface {
	Publish(ctx context.Context, title string, res domain.ParsedResult) (string, error)
}

// ParseSchedule accepts a standard 5-field cron expression (minute hour
// day-of-month month day-of-week), e.g. "0 9 * * 1-5" for weekdays at 9am.
func ParseSchedule(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty watch schedule")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid watch schedule '%s': %w", expr, err)
	}
	return sched, nil
}

// Watcher re-summarizes a report file on a cron schedule. A file whose size
// and modification time have not changed since the last run is skipped.
type Watcher struct {
	path       string
	expr       string
	sched      cron.Schedule
	summarizer Summarizer
	publisher  Publisher
	loc        *time.Location
	logger     *zap.Logger
	now        func() time.Time
	wait       func(ctx context.Context, d time.Duration) error

	last fileState
}

type fileState struct {
	size    int64
	modTime time.Time
}

type Option func(*Watcher)

// WithPublisher posts every new result. Without it results are only logged.
func WithPublisher(p Publisher) Option { return func(w *Watcher) { w.publisher = p } }

func WithLocation(loc *time.Location) Option {
	return func(w *Watcher) {
		if loc != nil {
			w.loc = loc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func withClock(now func() time.Time, wait func(context.Context, time.Duration) error) Option {
	return func(w *Watcher) {
		w.now = now
		w.wait = wait
	}
}

func New(path, schedule string, s Summarizer, opts ...Option) (*Watcher, error) {
	sched, err := ParseSchedule(schedule)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:       path,
		expr:       strings.TrimSpace(schedule),
		sched:      sched,
		summarizer: s,
		loc:        time.Local,
		logger:     zap.NewNop(),
		now:        time.Now,
		wait:       sleep,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is done, running once per schedule tick.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watch scheduled", zap.String("cron", w.expr), zap.String("path", w.path))
	for {
		now := w.now().In(w.loc)
		next := w.sched.Next(now)
		wait := next.Sub(now)
		w.logger.Info("next watch run",
			zap.String("at", next.Format("Mon Jan 2 15:04")),
			zap.Duration("in", wait.Round(time.Minute)),
		)
		if err := w.wait(ctx, wait); err != nil {
			w.logger.Info("watch stopped")
			return err
		}
		w.RunOnce(ctx)
	}
}

// Outcome describes one scheduled run.
type Outcome struct {
	Skipped bool
	Result  domain.ParsedResult
	Err     error
	Posted  bool
}

// RunOnce summarizes the file unless it is unchanged, then publishes.
func (w *Watcher) RunOnce(ctx context.Context) Outcome {
	state, statErr := stat(w.path)
	if statErr == nil && state.same(w.last) {
		w.logger.Info("report unchanged, skipping", zap.String("path", w.path))
		return Outcome{Skipped: true}
	}

	res, err := w.summarizer.SummarizeFile(ctx, w.path)
	out := Outcome{Result: res, Err: err}
	switch {
	case err != nil:
		w.logger.Warn("watch run failed", zap.String("path", w.path), zap.Error(err))
	case res.Method == summary.MethodError:
		// The upstream call failed; leave the file eligible for the next tick.
		w.logger.Warn("watch run got no summary", zap.String("path", w.path))
	default:
		w.last = state
		w.logger.Info("watch run complete", zap.String("path", w.path), zap.String("method", res.Method))
	}

	if w.publisher != nil {
		title := fmt.Sprintf("AI readiness summary: %s", filepath.Base(w.path))
		if _, postErr := w.publisher.Publish(ctx, title, res); postErr != nil {
			w.logger.Warn("watch post failed", zap.Error(postErr))
		} else {
			out.Posted = true
		}
	}
	return out
}

func (s fileState) same(o fileState) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime) && !s.modTime.IsZero()
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{size: info.Size(), modTime: info.ModTime()}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
