package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"wg-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeNewAds_StoresOnlyUnknownAds(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &fakeFetcher{
		overview: []domain.ListingAd{
			{AdID: 1, URL: "https://site/1.html"},
			{AdID: 2, URL: "https://site/2.html"},
			{AdID: 3, URL: "https://site/3.html"},
			{AdID: 4, URL: "https://site/4.html"},
		},
		details: map[string]*domain.AdDetails{
			"https://site/2.html": {Street: "Leopoldstr. 1", District: "80802 München Schwabing"},
			"https://site/4.html": {Street: "Nowhere 5", District: ""},
		},
		detailErrs: map[string]error{"https://site/3.html": errors.New("timeout")},
	}
	repo := &fakeRepo{known: idSet(1)}
	geo := &fakeGeocoder{results: map[string]*domain.GeoLocation{
		"Leopoldstr. 1, 80802 München Schwabing, München": {FormattedAddress: "Leopoldstraße 1, 80802 München", Latitude: 48.15, Longitude: 11.58},
	}}
	pub := &fakeAdPublisher{}

	uc := NewScrapeNewAdsUseCase(testCities, f, repo, geo, pub)
	uc.now = func() time.Time { return now }

	report, err := uc.Execute(context.Background(), "munich")
	require.NoError(t, err)

	assert.Equal(t, domain.ScrapeReport{CityName: "munich", Seen: 4, New: 3, Inserted: 2, Skipped: 1, NotGeocoded: 1}, *report)

	require.Len(t, repo.inserted, 2)
	geocoded := repo.inserted[0]
	assert.Equal(t, int64(2), geocoded.AdID)
	assert.True(t, geocoded.IsActive)
	assert.Equal(t, "munich", geocoded.CityName)
	assert.Equal(t, now, geocoded.TsScraped)
	require.NotNil(t, geocoded.Latitude)
	assert.InDelta(t, 48.15, *geocoded.Latitude, 1e-9)

	notGeocoded := repo.inserted[1]
	assert.Nil(t, notGeocoded.Latitude)
	assert.Equal(t, []string{"Leopoldstr. 1, 80802 München Schwabing, München", "Nowhere 5, München"}, geo.addresses)

	assert.Len(t, pub.ads, 2)
}

func TestScrapeNewAds_UnknownCity(t *testing.T) {
	uc := NewScrapeNewAdsUseCase(testCities, &fakeFetcher{}, &fakeRepo{}, nil, nil)
	_, err := uc.Execute(context.Background(), "hamburg")
	assert.ErrorIs(t, err, domain.ErrUnknownCity)
}

func TestScrapeNewAds_Failures(t *testing.T) {
	overview := []domain.ListingAd{
		{AdID: 1, URL: "https://site/1.html"},
		{AdID: 2, URL: "https://site/2.html"},
	}
	details := map[string]*domain.AdDetails{
		"https://site/1.html": {Street: "Leopoldstr. 1"},
		"https://site/2.html": {Street: "Leopoldstr. 2"},
	}
	dbDown := errors.New("db is down")

	tests := []struct {
		name         string
		fetcher      *fakeFetcher
		repo         *fakeRepo
		wantErr      error
		wantReport   domain.ScrapeReport
		wantInserted []int64
	}{
		{
			name:    "overview fetch error aborts",
			fetcher: &fakeFetcher{overviewErr: domain.ErrFetch},
			repo:    &fakeRepo{},
			wantErr: domain.ErrFetch,
		},
		{
			name:    "insert error aborts",
			fetcher: &fakeFetcher{overview: overview, details: details},
			repo:    &fakeRepo{insertErr: dbDown},
			wantErr: dbDown,
		},
		{
			name:         "already stored ad is not counted or published",
			fetcher:      &fakeFetcher{overview: overview, details: details},
			repo:         &fakeRepo{conflicts: idSet(1)},
			wantReport:   domain.ScrapeReport{CityName: "munich", Seen: 2, New: 2, Inserted: 1, NotGeocoded: 2},
			wantInserted: []int64{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakeAdPublisher{}
			uc := NewScrapeNewAdsUseCase(testCities, tt.fetcher, tt.repo, nil, pub)

			report, err := uc.Execute(context.Background(), "munich")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, report)
				assert.Empty(t, tt.repo.inserted)
				assert.Empty(t, pub.ads)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReport, *report)

			var ids []int64
			for _, ad := range tt.repo.inserted {
				ids = append(ids, ad.AdID)
			}
			assert.Equal(t, tt.wantInserted, ids)

			var published []int64
			for _, ad := range pub.ads {
				published = append(published, ad.AdID)
			}
			assert.Equal(t, tt.wantInserted, published)
		})
	}
}
