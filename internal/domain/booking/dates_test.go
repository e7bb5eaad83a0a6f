package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDatesSortsAndDedupes(t *testing.T) {
	got, err := NormalizeDates([]string{"2026-09-03", "2026-09-01", "2026-09-03", "2026-09-02"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-01", "2026-09-02", "2026-09-03"}, got)
}

func TestNormalizeDatesIsIdempotent(t *testing.T) {
	once, err := NormalizeDates([]string{"2026-09-02", "2026-09-01"})
	require.NoError(t, err)
	twice, err := NormalizeDates(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalizeDatesOrderIndependent(t *testing.T) {
	a, err := NormalizeDates([]string{"2026-09-01", "2026-09-05", "2026-09-03"})
	require.NoError(t, err)
	b, err := NormalizeDates([]string{"2026-09-05", "2026-09-03", "2026-09-01"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalizeDatesRejectsInvalid(t *testing.T) {
	cases := []string{"", "2026-9-1", "09-01-2026", "2026-13-01", "2026-02-30", "not-a-date"}
	for _, c := range cases {
		_, err := NormalizeDates([]string{c})
		assert.True(t, IsErrBadRequest(err), "input %q", c)
	}
}

func TestNormalizeDatesRejectsEmpty(t *testing.T) {
	_, err := NormalizeDates(nil)
	assert.True(t, IsErrBadRequest(err))
	_, err = NormalizeDates([]string{})
	assert.True(t, IsErrBadRequest(err))
}
