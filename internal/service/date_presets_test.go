package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consultation-api/internal/models"
)

func TestResolveDatePreset(t *testing.T) {
	// Wednesday.
	today := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)
	cases := map[string]models.DateRange{
		PresetToday:       {Start: "2026-03-18", End: "2026-03-18"},
		PresetWeek:        {Start: "2026-03-11", End: "2026-03-18"},
		PresetThisWeek:    {Start: "2026-03-16", End: "2026-03-22"},
		PresetThisMonth:   {Start: "2026-03-01", End: "2026-03-31"},
		PresetLastMonth:   {Start: "2026-02-01", End: "2026-02-28"},
		PresetLast3Months: {Start: "2026-01-01", End: "2026-03-31"},
	}
	for preset, want := range cases {
		got, err := ResolveDatePreset(preset, today)
		require.NoError(t, err, preset)
		require.NotNil(t, got, preset)
		assert.Equal(t, want, *got, preset)
	}

	all, err := ResolveDatePreset(PresetAll, today)
	require.NoError(t, err)
	assert.Nil(t, all)

	_, err = ResolveDatePreset("fortnight", today)
	assert.Error(t, err)
}

func TestResolveDatePresetYearBoundary(t *testing.T) {
	today := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC) // Sunday

	lastMonth, err := ResolveDatePreset(PresetLastMonth, today)
	require.NoError(t, err)
	assert.Equal(t, models.DateRange{Start: "2025-12-01", End: "2025-12-31"}, *lastMonth)

	week, err := ResolveDatePreset(PresetThisWeek, today)
	require.NoError(t, err)
	assert.Equal(t, models.DateRange{Start: "2025-12-29", End: "2026-01-04"}, *week)
}
