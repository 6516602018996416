package dues

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		p, err := ParsePeriod("2024-03")
		require.NoError(t, err)
		assert.Equal(t, "2024-03", p.String())
		assert.Equal(t, "2024-03-01", p.Canonical())
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), p.Time())
	})

	for _, in := range []string{"2024-13", "2024-3", "2024-00", "24-03", "2024-03-01", "", " 2024-03", "2024/03"} {
		t.Run("reject "+in, func(t *testing.T) {
			_, err := ParsePeriod(in)
			assert.ErrorIs(t, err, ErrInvalidPeriod)
		})
	}
}

func TestPeriodNext(t *testing.T) {
	p, err := ParsePeriod("2024-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-01", p.Next().String())
	assert.Equal(t, p, PeriodOf(time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)))
}
