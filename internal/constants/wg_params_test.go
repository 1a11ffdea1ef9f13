package constants

import (
	"testing"

	"wg-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCities(t *testing.T) {
	cities, err := ResolveCities([]string{" Munich", "berlin", ""})
	require.NoError(t, err)
	assert.Len(t, cities, 2)
	assert.Equal(t, "München", cities["munich"].DisplayName)

	_, err = ResolveCities([]string{"hamburg"})
	assert.ErrorIs(t, err, domain.ErrUnknownCity)

	_, err = ResolveCities(nil)
	assert.Error(t, err)
}

func TestPredefinedCitiesAreConsistent(t *testing.T) {
	for key, city := range PredefinedCities {
		assert.Equal(t, key, city.Name)
		assert.NotEmpty(t, city.ListingPath)
		assert.NotEmpty(t, city.DisplayName)
	}
}
