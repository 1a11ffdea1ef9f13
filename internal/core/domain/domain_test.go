package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityConfig_ListingPagePath(t *testing.T) {
	city := CityConfig{Name: "munich", ListingPath: "wg-zimmer-in-Munchen.90.0.0"}
	assert.Equal(t, "wg-zimmer-in-Munchen.90.0.0.0.html?noDeact=1", city.ListingPagePath(0))
	assert.Equal(t, "wg-zimmer-in-Munchen.90.0.0.12.html?noDeact=1", city.ListingPagePath(12))
}

func TestParseStampPolicy(t *testing.T) {
	p, err := ParseStampPolicy("")
	require.NoError(t, err)
	assert.Equal(t, StampOnTransition, p)

	p, err = ParseStampPolicy(" EVERY_RUN ")
	require.NoError(t, err)
	assert.Equal(t, RestampEveryRun, p)

	_, err = ParseStampPolicy("sometimes")
	assert.Error(t, err)
}

func TestCollectResult_Contains(t *testing.T) {
	r := CollectResult{IDs: map[int64]struct{}{7: {}}}
	assert.True(t, r.Contains(7))
	assert.False(t, r.Contains(8))
}
