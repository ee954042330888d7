package errortrack

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/db/controller/setting"
	"github.com/PontoAdmin/ponto-admin/internal/db/dbtest"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// recordingNotifier remembers notified rows.
type recordingNotifier struct {
	mu   sync.Mutex
	rows []models.ErrorLog
}

func (n *recordingNotifier) Notify(_ context.Context, row models.ErrorLog) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.rows = append(n.rows, row)

	return nil
}

func newTracker(t *testing.T, notifyFallback bool) (*Tracker, *gorm.DB, *clock, *recordingNotifier) {
	t.Helper()

	db := dbtest.Open(t)
	notifier := &recordingNotifier{}
	c := &clock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}

	tr := New(context.Background(), db, permission.NewGuard(permission.NewStore(db)), Options{
		NotifyFallback: notifyFallback,
		Notifier:       notifier,
	})
	tr.now = c.Now

	return tr, db, c, notifier
}

func rows(t *testing.T, db *gorm.DB) []models.ErrorLog {
	t.Helper()

	var out []models.ErrorLog
	require.NoError(t, db.Order("first_seen").Find(&out).Error)

	return out
}

var sample = Event{ //nolint:gochecknoglobals
	ErrorType: "TypeError",
	Severity:  SeverityHigh,
	Message:   "cannot read property of undefined",
	Component: "AttendanceTable",
}

func TestCaptureDebounceWithinWindow(t *testing.T) {
	ctx := context.Background()
	tr, db, c, _ := newTracker(t, false)

	out := tr.Capture(ctx, sample)
	require.False(t, out.Failed())
	assert.False(t, out.Skipped)

	c.Advance(2 * time.Second)
	out = tr.Capture(ctx, sample)
	assert.True(t, out.Skipped, "second occurrence inside the window is not written")

	got := rows(t, db)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].OccurrenceCount)

	require.NoError(t, tr.Flush(ctx))

	got = rows(t, db)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].OccurrenceCount)
}

func TestCaptureFoldsSuppressedOnNextWrite(t *testing.T) {
	ctx := context.Background()
	tr, db, c, _ := newTracker(t, false)

	tr.Capture(ctx, sample)
	c.Advance(time.Second)
	tr.Capture(ctx, sample)
	tr.Capture(ctx, sample)

	c.Advance(DefaultWindow)
	require.False(t, tr.Capture(ctx, sample).Skipped)

	got := rows(t, db)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].OccurrenceCount)
	assert.True(t, c.Now().Equal(got[0].LastSeen))
}

func TestCaptureAfterWindowCoalescesOpenRow(t *testing.T) {
	ctx := context.Background()
	tr, db, c, _ := newTracker(t, false)

	tr.Capture(ctx, sample)
	c.Advance(time.Minute)
	tr.Capture(ctx, sample)

	got := rows(t, db)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].OccurrenceCount)
}

func TestCaptureAfterResolveOpensNewRow(t *testing.T) {
	ctx := context.Background()
	tr, db, c, _ := newTracker(t, false)

	tr.Capture(ctx, sample)
	first := rows(t, db)[0]
	require.NoError(t, tr.Resolve(ctx, permission.SuperUserID, first.ID))

	c.Advance(time.Minute)
	tr.Capture(ctx, sample)

	got := rows(t, db)
	require.Len(t, got, 2)
	assert.True(t, got[0].Resolved)
	assert.False(t, got[1].Resolved)
	assert.Equal(t, 1, got[1].OccurrenceCount)
}

func TestCaptureDistinctSignatures(t *testing.T) {
	ctx := context.Background()
	tr, db, _, _ := newTracker(t, false)

	other := sample
	other.Component = "PaymentsTable"

	tr.Capture(ctx, sample)
	tr.Capture(ctx, other)

	assert.Len(t, rows(t, db), 2)
}

func TestCaptureInvalidEvent(t *testing.T) {
	tr, db, _, _ := newTracker(t, false)

	out := tr.Capture(context.Background(), Event{Message: "no type"})
	require.ErrorIs(t, out.Err, ErrInvalidEvent)
	assert.Empty(t, rows(t, db))
}

func TestCaptureDefaultsSeverity(t *testing.T) {
	tr, db, _, _ := newTracker(t, false)

	tr.Capture(context.Background(), Event{ErrorType: "E", Message: "m", Severity: "fatal"})
	assert.Equal(t, string(SeverityMedium), rows(t, db)[0].Severity)
}

func TestCriticalNotification(t *testing.T) {
	ctx := context.Background()

	critical := sample
	critical.Severity = SeverityCritical

	testCases := []struct {
		name       string
		fallback   bool
		stored     *bool
		event      Event
		wantNotify int
	}{
		{name: "critical with notify on", fallback: true, event: critical, wantNotify: 1},
		{name: "critical with notify off", fallback: false, event: critical},
		{name: "stored flag overrides fallback", fallback: true, stored: new(bool), event: critical},
		{name: "high is never notified", fallback: true, event: sample},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := dbtest.Open(t)
			if tc.stored != nil {
				require.NoError(t, setting.SetBool(ctx, db, setting.KeyErrorNotifyCritical, *tc.stored))
			}

			notifier := &recordingNotifier{}
			tr := New(ctx, db, permission.NewGuard(permission.NewStore(db)), Options{
				NotifyFallback: tc.fallback,
				Notifier:       notifier,
			})

			require.False(t, tr.Capture(ctx, tc.event).Failed())
			assert.Len(t, notifier.rows, tc.wantNotify)
		})
	}
}

func TestCaptureFailureIsRequeued(t *testing.T) {
	ctx := context.Background()
	tr, db, _, _ := newTracker(t, false)

	require.NoError(t, db.Migrator().DropTable(&models.ErrorLog{}))
	assert.True(t, tr.Capture(ctx, sample).Failed())

	require.NoError(t, db.AutoMigrate(&models.ErrorLog{}))
	require.NoError(t, tr.Flush(ctx))

	got := rows(t, db)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].OccurrenceCount)
}

func TestFlushForgetsExpiredSignatures(t *testing.T) {
	ctx := context.Background()
	tr, _, c, _ := newTracker(t, false)

	tr.Capture(ctx, sample)
	c.Advance(DefaultWindow)
	require.NoError(t, tr.Flush(ctx))

	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Empty(t, tr.pending)
}

func TestRunStopsOnCancel(t *testing.T) {
	tr, _, _, _ := newTracker(t, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		tr.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSignature(t *testing.T) {
	a := Event{ErrorType: "a", Message: "bc"}
	b := Event{ErrorType: "ab", Message: "c"}

	assert.NotEqual(t, a.Signature(), b.Signature())
	assert.Equal(t, sample.Signature(), sample.Signature())
}
