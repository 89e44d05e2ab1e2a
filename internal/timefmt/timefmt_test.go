package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAndParse(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "09:30 14/03", Format(now))

	parsed, err := Parse("17:05 02/11", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 2, 17, 5, 0, 0, time.UTC), parsed)

	_, err = Parse("", now)
	assert.Error(t, err)
	_, err = Parse("2026-01-01", now)
	assert.Error(t, err)
}

func TestIsToday(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	assert.True(t, IsToday("23:59 14/03", now))
	assert.False(t, IsToday("00:01 15/03", now))
	assert.False(t, IsToday("garbage", now))
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	assert.True(t, IsOverdue("08:00 14/03", false, now))
	assert.False(t, IsOverdue("08:00 14/03", true, now))
	assert.False(t, IsOverdue("10:00 14/03", false, now))
	assert.False(t, IsOverdue("", false, now))
}

func TestISO(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	ts := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

	assert.Equal(t, "2023-11-14T22:13:20.000Z", ISO(ts.In(loc)))
	assert.Equal(t, "05:13 15/11", DisplayFromISO("2023-11-14T22:13:20.000Z", loc))
	assert.Equal(t, "", DisplayFromISO("not a date", loc))
}
