package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKey_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 10, 17, 5, 0, 0, 0, loc)
	assert.Equal(t, "2026-10-16", DateKey(ts))
}

func TestSeed_StablePerDay(t *testing.T) {
	morning := time.Date(2026, 10, 17, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)
	tomorrow := morning.Add(24 * time.Hour)

	assert.Equal(t, Seed(morning, "salt"), Seed(evening, "salt"))
	assert.NotEqual(t, Seed(morning, "salt"), Seed(tomorrow, "salt"))
	assert.NotEqual(t, Seed(morning, "salt"), Seed(morning, "pepper"))
	assert.GreaterOrEqual(t, Seed(morning, "salt"), int64(0))
}
