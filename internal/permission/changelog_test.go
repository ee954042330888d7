package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PontoAdmin/ponto-admin/internal/db/dbtest"
)

func TestSummarize(t *testing.T) {
	flipped := Supervisor()
	flipped[ModuleUsers]["create"] = true
	flipped[ModuleAttendance]["mark"] = false
	flipped[ModuleFinancial]["clear_payments"] = true

	testCases := []struct {
		name   string
		before Set
		after  Set
		want   string
	}{
		{name: "created", before: nil, after: Supervisor(), want: SummaryCreated},
		{name: "no changes", before: Supervisor(), after: Supervisor(), want: SummaryNoChanges},
		{
			name:   "flips in schema order",
			before: Supervisor(),
			after:  flipped,
			want:   "attendance.mark desativada, financial.clear_payments ativada, users.create ativada",
		},
		{
			name:   "missing before key counts as change",
			before: Set{},
			after:  Set{ModuleReports: Actions{"view": false}},
			want:   "reports.view desativada",
		},
		{
			name:   "keys only in before are ignored",
			before: Set{ModuleReports: Actions{"view": true}},
			after:  Set{},
			want:   SummaryNoChanges,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Summarize(tc.before, tc.after))
		})
	}
}

func TestSummarizeListsExactlyTheFlippedFlags(t *testing.T) {
	before := ReadOnly()
	after := ReadOnly()

	var want []string

	for i, p := range All() {
		if i%5 != 0 {
			continue
		}

		m, a, _ := Parse(p)
		after[m][a] = !before[m][a]

		label := labelDisabled
		if after[m][a] {
			label = labelEnabled
		}

		want = append(want, p+" "+label)
	}

	got := Summarize(before, after)
	for _, w := range want {
		assert.Contains(t, got, w)
	}

	assert.Len(t, splitSummary(got), len(want))
}

func splitSummary(s string) []string {
	var out []string

	start := 0

	for i := 0; i+1 < len(s); i++ {
		if s[i] == ',' && s[i+1] == ' ' {
			out = append(out, s[start:i])
			start = i + 2
		}
	}

	return append(out, s[start:])
}

func TestChangeLogRecordAndHistory(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	cl := NewChangeLog(db)

	out := cl.Record(ctx, "u1", "admin", nil, ReadOnly())
	require.False(t, out.Failed())

	after := ReadOnly()
	after[ModuleEmployees]["create"] = true
	out = cl.Record(ctx, "u1", "admin", ReadOnly(), after)
	require.False(t, out.Failed())

	entries, err := cl.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "employees.create ativada", entries[0].Summary)
	assert.Equal(t, SummaryCreated, entries[1].Summary)
	assert.Nil(t, entries[1].Before)
	assert.NotNil(t, entries[0].Before)

	limited, err := cl.History(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestChangeLogRecordFailureIsReturned(t *testing.T) {
	db := dbtest.Open(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out := NewChangeLog(db).Record(context.Background(), "u1", "admin", nil, Full())
	assert.True(t, out.Failed())
}
