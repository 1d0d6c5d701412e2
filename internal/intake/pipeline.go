package intake

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/warescan/warescan/internal/scan"
)

// ErrPipelineClosed is returned by Submit after the pipeline has stopped.
var ErrPipelineClosed = errors.New("intake pipeline is not running")

// Read is a normalized barcode read from any input channel.
type Read struct {
	Code   string
	Actor  scan.Actor
	Source string // "camera" or "scanner"

	reply chan Result
}

// Result reports what the pipeline did with a read.
type Result struct {
	// Suppressed is true when the debounce guard dropped the read
	// before any store call.
	Suppressed bool
	Outcome    *scan.Outcome
	Err        error
}

// ScanNotifier is told after every successful log mutation so live
// subscribers receive a fresh snapshot.
type ScanNotifier interface {
	ScansChanged(ctx context.Context)
}

// Pipeline funnels all input channels through one queue consumed by a
// single goroutine: guard first, then reconciliation, then feed
// notification. Producers may submit faster than reconciliations
// complete; reads queue up rather than being dropped.
type Pipeline struct {
	guard      *Guard
	reconciler *scan.Reconciler
	notifier   ScanNotifier
	events     chan Read
	now        func() time.Time
}

// NewPipeline creates a Pipeline. notifier may be nil.
func NewPipeline(guard *Guard, reconciler *scan.Reconciler, notifier ScanNotifier) *Pipeline {
	return &Pipeline{
		guard:      guard,
		reconciler: reconciler,
		notifier:   notifier,
		events:     make(chan Read, 64),
		now:        time.Now,
	}
}

// Run consumes reads until ctx is cancelled. An in-flight reconciliation
// is finished, not abandoned, when producers go away.
func (p *Pipeline) Run(ctx context.Context) {
	slog.Info("intake pipeline started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("intake pipeline stopped")
			return
		case ev := <-p.events:
			res := p.process(ctx, ev)
			if ev.reply != nil {
				ev.reply <- res
			}
		}
	}
}

// Submit queues a read and waits for its result.
func (p *Pipeline) Submit(ctx context.Context, r Read) Result {
	r.reply = make(chan Result, 1)

	select {
	case p.events <- r:
	case <-ctx.Done():
		return Result{Err: ErrPipelineClosed}
	}

	select {
	case res := <-r.reply:
		return res
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

func (p *Pipeline) process(ctx context.Context, ev Read) Result {
	if !p.guard.ShouldProcess(ev.Code, p.now()) {
		slog.Debug("read suppressed", "code", ev.Code, "source", ev.Source)
		return Result{Suppressed: true}
	}

	outcome, err := p.reconciler.Reconcile(ctx, ev.Code, ev.Actor)
	if err != nil {
		slog.Error("reconciliation failed", "code", ev.Code, "source", ev.Source, "error", err)
		return Result{Err: err}
	}

	if p.notifier != nil {
		p.notifier.ScansChanged(ctx)
	}

	slog.Info("scan reconciled",
		"code", ev.Code,
		"action", string(outcome.Action),
		"actor", ev.Actor.ID,
		"source", ev.Source,
	)
	return Result{Outcome: outcome}
}
