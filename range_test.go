package shelfdb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(t *testing.T, s *Store, cf string, n int) {
	t.Helper()
	require.NoError(t, s.CreateCF(cf))
	for i := 1; i <= n; i++ {
		key := fmt.Sprintf("%d", i)
		require.NoError(t, InsertCF(s, cf, key, testUser{ID: uint64(i), Name: "u" + key}))
	}
}

func ids(users []testUser) []uint64 {
	out := make([]uint64, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestGetRangeCF(t *testing.T) {
	s := openTestStore(t)
	seedUsers(t, s, "users", 5)

	tests := []struct {
		name      string
		from, to  string
		limit     int
		direction Direction
		want      []uint64
	}{
		{"full_window", "0", "4", 10, Forward, []uint64{1, 2, 3, 4, 5}},
		{"inner_window", "1", "3", 10, Forward, []uint64{2, 3, 4}},
		{"single_position", "2", "2", 10, Forward, []uint64{3}},
		{"window_end_inclusive", "0", "0", 10, Forward, []uint64{1}},
		{"reverse", "1", "3", 10, Reverse, []uint64{4, 3, 2}},
		{"limit_applies_after_direction", "0", "4", 2, Reverse, []uint64{5, 4}},
		{"limit_truncates", "0", "4", 3, Forward, []uint64{1, 2, 3}},
		{"limit_zero", "0", "4", 0, Forward, nil},
		{"negative_limit", "0", "4", -1, Forward, nil},
		{"unparseable_from_defaults_to_start", "x", "4", 10, Forward, []uint64{1, 2, 3, 4, 5}},
		{"unparseable_to_defaults_to_end", "2", "x", 10, Forward, []uint64{3, 4, 5}},
		{"negative_positions_default", "-3", "-1", 10, Forward, []uint64{1, 2, 3, 4, 5}},
		{"to_clamped", "3", "99", 10, Forward, []uint64{4, 5}},
		{"from_past_end", "9", "99", 10, Forward, nil},
		{"inverted_window", "3", "1", 10, Forward, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GetRangeCF[testUser](s, "users", tc.from, tc.to, tc.limit, tc.direction)
			require.NoError(t, err)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestGetRangeCFKeyOrderIsRaw(t *testing.T) {
	// Positions follow byte order of keys, not numeric order: "10" sorts
	// between "1" and "2".
	s := openTestStore(t)
	require.NoError(t, s.CreateCF("users"))
	for _, key := range []string{"1", "2", "3", "10"} {
		require.NoError(t, InsertCF(s, "users", key, testUser{Name: key}))
	}

	got, err := GetRangeCFWithKeys[testUser](s, "users", "0", "9", 10, Forward)
	require.NoError(t, err)

	keys := make([]string, len(got))
	for i, pair := range got {
		keys[i] = pair.Key
	}
	assert.Equal(t, []string{"1", "10", "2", "3"}, keys)
}

func TestGetRangeCFWithKeys(t *testing.T) {
	s := openTestStore(t)
	seedUsers(t, s, "users", 3)

	got, err := GetRangeCFWithKeys[testUser](s, "users", "0", "9", 10, Forward)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, pair := range got {
		assert.Equal(t, fmt.Sprintf("%d", i+1), pair.Key)
		assert.Equal(t, uint64(i+1), pair.Value.ID)
	}
}

func TestGetRangeCFEmptyCollection(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.CreateCF("empty"))

	got, err := GetRangeCF[testUser](s, "empty", "0", "9", 10, Forward)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetRangeCFUnknownCollection(t *testing.T) {
	s := openTestStore(t)

	_, err := GetRangeCF[testUser](s, "nosuch", "0", "9", 10, Forward)
	assert.ErrorIs(t, err, ErrInvalidCollection)
}
