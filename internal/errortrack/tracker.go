package errortrack

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/besteffort"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/setting"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

const (
	channel = "errortrack"

	// DefaultWindow is the debounce window of identical errors.
	DefaultWindow = 5 * time.Second
)

// Options configure a Tracker.
type Options struct {
	// Window is the debounce window; zero means DefaultWindow.
	Window time.Duration
	// NotifyFallback is used when the error_notify_critical setting is absent.
	NotifyFallback bool
	// Notifier receives critical errors; nil means LogNotifier.
	Notifier Notifier
}

// pending tracks one signature inside its debounce window.
type pending struct {
	event      Event
	lastWrite  time.Time
	suppressed int
}

// Tracker captures errors and serves the guarded error operations.
type Tracker struct {
	db       *gorm.DB
	guard    permission.Authorizer
	window   time.Duration
	notifier Notifier
	fallback bool
	notify   atomic.Bool
	now      func() time.Time

	mu      sync.Mutex
	pending map[uint64]*pending
}

// New creates a tracker and reads the error_notify_critical flag.
func New(ctx context.Context, db *gorm.DB, guard permission.Authorizer, opts Options) *Tracker {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}

	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}

	t := &Tracker{
		db:       db,
		guard:    guard,
		window:   opts.Window,
		notifier: opts.Notifier,
		fallback: opts.NotifyFallback,
		now:      time.Now,
		pending:  make(map[uint64]*pending),
	}

	if err := t.Refresh(ctx); err != nil {
		log.Warn().Err(err).Bool("notify", opts.NotifyFallback).Msg("errortrack: could not read notify flag, using default")
	}

	return t
}

// Refresh re-reads the error_notify_critical flag.
func (t *Tracker) Refresh(ctx context.Context) error {
	v, err := setting.GetBool(ctx, t.db, setting.KeyErrorNotifyCritical, t.fallback)
	t.notify.Store(v)

	return err
}

// NotifyCritical reports the cached critical-notify flag.
func (t *Tracker) NotifyCritical() bool {
	return t.notify.Load()
}

// Capture records e. Within the debounce window of the previous write of the
// same signature the occurrence is only counted in memory; the count is folded
// into the row by the next write past the window or by Flush.
func (t *Tracker) Capture(ctx context.Context, e Event) besteffort.Outcome {
	e, err := e.normalize()
	if err != nil {
		return besteffort.Fail(channel, err)
	}

	sig := e.Signature()
	now := t.now()

	t.mu.Lock()

	p := t.pending[sig]
	if p != nil && now.Sub(p.lastWrite) < t.window {
		p.suppressed++
		t.mu.Unlock()
		capturedCounter().WithLabelValues(string(e.Severity), outcomeSuppressed).Inc()

		return besteffort.Skip(channel)
	}

	n := 1
	if p != nil {
		n += p.suppressed
	}

	t.pending[sig] = &pending{event: e, lastWrite: now}
	t.mu.Unlock()

	if err := t.write(ctx, e, n, now); err != nil {
		t.requeue(sig, n)
		capturedCounter().WithLabelValues(string(e.Severity), outcomeFailed).Inc()

		return besteffort.Fail(channel, err)
	}

	capturedCounter().WithLabelValues(string(e.Severity), outcomeWritten).Inc()

	return besteffort.OK(channel)
}

// requeue puts n occurrences of a failed write back into the pending count.
func (t *Tracker) requeue(sig uint64, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p := t.pending[sig]; p != nil {
		p.suppressed += n
	}
}

// Flush folds every suppressed count into its row and forgets signatures
// whose window has passed.
func (t *Tracker) Flush(ctx context.Context) error {
	now := t.now()

	type fold struct {
		sig   uint64
		event Event
		n     int
	}

	var folds []fold

	t.mu.Lock()

	for sig, p := range t.pending {
		if p.suppressed > 0 {
			folds = append(folds, fold{sig: sig, event: p.event, n: p.suppressed})
			p.suppressed = 0

			continue
		}

		if now.Sub(p.lastWrite) >= t.window {
			delete(t.pending, sig)
		}
	}

	t.mu.Unlock()

	var errs []error

	for _, f := range folds {
		if err := t.write(ctx, f.event, f.n, now); err != nil {
			t.requeue(f.sig, f.n)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Run flushes on every tick of interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Flush(ctx); err != nil {
				log.Warn().Err(err).Msg("errortrack: flush failed")
			}
		}
	}
}

// write adds n occurrences of e: to the open row with the same signature if
// there is one, otherwise as a new row.
func (t *Tracker) write(ctx context.Context, e Event, n int, now time.Time) error {
	var row models.ErrorLog

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("error_type = ? AND message = ? AND component = ? AND resolved = ?",
			e.ErrorType, e.Message, e.Component, false).
			Order("last_seen DESC").
			First(&row).Error

		switch {
		case err == nil:
			row.OccurrenceCount += n
			row.LastSeen = now

			return tx.Model(&row).Updates(map[string]any{
				"occurrence_count": gorm.Expr("occurrence_count + ?", n),
				"last_seen":        now,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.ErrorLog{
				ID:              uuid.NewString(),
				ErrorType:       e.ErrorType,
				Severity:        string(e.Severity),
				Message:         e.Message,
				StackTrace:      e.StackTrace,
				Component:       e.Component,
				Module:          e.Module,
				UserID:          e.UserID,
				OccurrenceCount: n,
				FirstSeen:       now,
				LastSeen:        now,
			}

			if e.Context != nil {
				raw, err := json.Marshal(e.Context)
				if err != nil {
					return err
				}

				row.Context = datatypes.JSON(raw)
			}

			return tx.Create(&row).Error
		default:
			return err
		}
	})
	if err != nil {
		return err
	}

	if e.Severity == SeverityCritical && t.NotifyCritical() {
		if err := t.notifier.Notify(ctx, row); err != nil {
			log.Warn().Err(err).Str("error_id", row.ID).Msg("errortrack: critical notification failed")
		}
	}

	return nil
}
