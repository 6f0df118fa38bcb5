package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Rotator cuts a recorder over to a fresh session file on a cron
// schedule. Each rotation finalizes the open session, so every file
// in the output directory is a complete trace document.
type Rotator struct {
	recorder *Recorder
	schedule cron.Schedule
	expr     string
	dir      string
	prefix   string

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewRotator creates a rotator for the given five field cron
// expression. Session files are written to dir as
// <prefix>-20060102-150405.json.
func NewRotator(recorder *Recorder, expr, dir, prefix string) (*Rotator, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid rotation schedule %q: %w", expr, err)
	}

	if prefix == "" {
		prefix = "trace"
	}

	return &Rotator{
		recorder: recorder,
		schedule: schedule,
		expr:     expr,
		dir:      dir,
		prefix:   prefix,
	}, nil
}

// Next returns the rotation time following t.
func (ro *Rotator) Next(t time.Time) time.Time {
	return ro.schedule.Next(t)
}

// SessionPath returns the session file path a rotation at t writes to.
func (ro *Rotator) SessionPath(t time.Time) string {
	name := ro.sessionName(t)
	return filepath.Join(ro.dir, name+".json")
}

func (ro *Rotator) sessionName(t time.Time) string {
	return ro.prefix + "-" + t.Format("20060102-150405")
}

// Start opens the first session and begins rotating on schedule.
func (ro *Rotator) Start() error {
	if err := os.MkdirAll(ro.dir, 0755); err != nil {
		return fmt.Errorf("failed to create rotation directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ro.cancel = cancel
	ro.done = make(chan struct{})

	ro.rotate()

	go ro.run(ctx)

	log.Info().
		Str("schedule", ro.expr).
		Str("dir", ro.dir).
		Msg("Session rotation started")

	return nil
}

func (ro *Rotator) run(ctx context.Context) {
	defer close(ro.done)

	for {
		next := ro.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			ro.rotate()
		}
	}
}

func (ro *Rotator) rotate() {
	now := time.Now()
	name := ro.sessionName(now)

	ro.recorder.EndSession()
	ro.recorder.BeginSession(name, filepath.Join(ro.dir, name+".json"))
}

// Stop halts rotation and finalizes the open session.
func (ro *Rotator) Stop() {
	ro.stopOnce.Do(func() {
		if ro.cancel != nil {
			ro.cancel()
			<-ro.done
		}
		ro.recorder.EndSession()

		log.Info().Msg("Session rotation stopped")
	})
}
