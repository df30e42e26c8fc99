package id

import (
	"sort"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MonotonicWithinSameInstant(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = New(at)
	}

	assert.True(t, sort.StringsAreSorted(ids))
	seen := map[string]bool{}
	for _, s := range ids {
		assert.False(t, seen[s], "duplicate %s", s)
		seen[s] = true

		parsed, err := ulid.ParseStrict(s)
		require.NoError(t, err)
		assert.Equal(t, ulid.Timestamp(at), parsed.Time())
	}
}
