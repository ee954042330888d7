package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	testCases := []struct {
		name   string
		stored Set
		check  func(t *testing.T, merged Set)
	}{
		{
			name:   "nil yields supervisor",
			stored: nil,
			check: func(t *testing.T, merged Set) {
				assert.Equal(t, Supervisor(), merged)
			},
		},
		{
			name:   "empty yields supervisor",
			stored: Set{},
			check: func(t *testing.T, merged Set) {
				assert.Equal(t, Supervisor(), merged)
			},
		},
		{
			name:   "stored flag overrides skeleton",
			stored: Set{ModuleUsers: Actions{"create": true}, ModuleAttendance: Actions{"mark": false}},
			check: func(t *testing.T, merged Set) {
				assert.True(t, merged[ModuleUsers]["create"])
				assert.False(t, merged[ModuleAttendance]["mark"])
				assert.True(t, merged[ModuleAttendance]["view"], "absent key keeps skeleton value")
			},
		},
		{
			name:   "unknown keys dropped",
			stored: Set{"zone": Actions{"view": true}, ModuleErrors: Actions{"fly": true}},
			check: func(t *testing.T, merged Set) {
				_, ok := merged["zone"]
				assert.False(t, ok)
				_, ok = merged[ModuleErrors]["fly"]
				assert.False(t, ok)
			},
		},
		{
			name:   "module with nil actions",
			stored: Set{ModuleReports: nil},
			check: func(t *testing.T, merged Set) {
				assert.Equal(t, Supervisor()[ModuleReports], merged[ModuleReports])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			merged := Merge(tc.stored)
			requireComplete(t, merged)
			tc.check(t, merged)
		})
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	inputs := []Set{
		nil,
		{},
		{ModuleUsers: Actions{"delete": true}},
		{ModuleSettings: Actions{"view": true, "bogus": true}, "unknown": Actions{"x": true}},
		Full(),
		ReadOnly(),
	}

	for _, in := range inputs {
		once := Merge(in)
		assert.Equal(t, once, Merge(once))
	}
}

func TestMergeDoesNotAliasInput(t *testing.T) {
	stored := Set{ModuleUsers: Actions{"create": true}}
	merged := Merge(stored)
	merged[ModuleUsers]["create"] = false

	assert.True(t, stored[ModuleUsers]["create"])
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    Set
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "null", raw: "null", want: nil},
		{name: "not json", raw: "{", wantErr: true},
		{name: "not an object", raw: "[1,2]", wantErr: true},
		{
			name: "non object module ignored",
			raw:  `{"users":true,"reports":{"view":true}}`,
			want: Set{ModuleReports: Actions{"view": true}},
		},
		{
			name: "non bool leaves ignored",
			raw:  `{"reports":{"view":"true","export":false,"generate":{"a":1}}}`,
			want: Set{ModuleReports: Actions{"export": false}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.raw))
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrune(t *testing.T) {
	got := Prune(Set{
		ModuleUsers: Actions{"create": true, "fly": true},
		"zone":      Actions{"view": true},
	})

	assert.Equal(t, Set{ModuleUsers: Actions{"create": true}}, got)
	assert.Nil(t, Prune(nil))
}
