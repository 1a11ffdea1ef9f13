package usecase

import (
	"context"
	"errors"
	"sync"

	"wg-parser-service/internal/core/domain"
)

type fakeFetcher struct {
	mu          sync.Mutex
	pages       map[int][]domain.AdSummary
	pageErr     map[int]error
	calls       []int
	overview    []domain.ListingAd
	overviewErr error
	details     map[string]*domain.AdDetails
	detailErrs  map[string]error
	// block, если задан, держит FetchListingPage до закрытия канала
	block chan struct{}
}

func (f *fakeFetcher) FetchListingPage(ctx context.Context, city domain.CityConfig, page int) ([]domain.AdSummary, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	if err := f.pageErr[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func (f *fakeFetcher) FetchOverview(ctx context.Context, city domain.CityConfig) ([]domain.ListingAd, error) {
	if f.overviewErr != nil {
		return nil, f.overviewErr
	}
	return f.overview, nil
}

func (f *fakeFetcher) FetchAdDetails(ctx context.Context, adURL string) (*domain.AdDetails, error) {
	if err := f.detailErrs[adURL]; err != nil {
		return nil, err
	}
	if d, ok := f.details[adURL]; ok {
		return d, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeFetcher) fetchedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

type fakeRepo struct {
	mu       sync.Mutex
	records  []domain.AdRecord
	loadErr  error
	applyErr error
	applied  [][]domain.AdRecord
	known    map[int64]struct{}
	inserted []domain.Ad
	// conflicts - id, которые уже сохранены кем-то другим
	conflicts map[int64]struct{}
	insertErr error
}

func (r *fakeRepo) LoadRecords(ctx context.Context, cityName string) ([]domain.AdRecord, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	var out []domain.AdRecord
	for _, rec := range r.records {
		if rec.CityName == cityName {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ApplyActivationChanges ведет себя как UPDATE ... FROM по ключу (city_name, ad_id)
func (r *fakeRepo) ApplyActivationChanges(ctx context.Context, cityName string, changes []domain.AdRecord) (int64, error) {
	if r.applyErr != nil {
		return 0, r.applyErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, changes)
	var n int64
	for _, ch := range changes {
		for i := range r.records {
			if r.records[i].CityName == cityName && r.records[i].AdID == ch.AdID {
				r.records[i].IsActive = ch.IsActive
				r.records[i].TsDeactivated = ch.TsDeactivated
				n++
			}
		}
	}
	return n, nil
}

func (r *fakeRepo) KnownAdIDs(ctx context.Context, cityName string) (map[int64]struct{}, error) {
	out := make(map[int64]struct{}, len(r.known))
	for id := range r.known {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *fakeRepo) InsertAd(ctx context.Context, ad domain.Ad) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return false, r.insertErr
	}
	if _, ok := r.conflicts[ad.AdID]; ok {
		return false, nil
	}
	r.inserted = append(r.inserted, ad)
	return true, nil
}

func (r *fakeRepo) ListAds(ctx context.Context, filter domain.AdFilter) ([]domain.Ad, error) {
	return nil, nil
}

func (r *fakeRepo) Stats(ctx context.Context) ([]domain.CityStats, error) {
	return nil, nil
}

type fakeReportPublisher struct {
	reports []domain.UpdateReport
	err     error
}

func (p *fakeReportPublisher) PublishUpdateReport(ctx context.Context, report domain.UpdateReport) error {
	p.reports = append(p.reports, report)
	return p.err
}

type fakeAdPublisher struct {
	ads []domain.Ad
}

func (p *fakeAdPublisher) PublishAdDiscovered(ctx context.Context, ad domain.Ad) error {
	p.ads = append(p.ads, ad)
	return nil
}

type fakeGeocoder struct {
	results   map[string]*domain.GeoLocation
	addresses []string
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (*domain.GeoLocation, error) {
	g.addresses = append(g.addresses, address)
	if loc, ok := g.results[address]; ok {
		return loc, nil
	}
	return nil, domain.ErrAddressNotFound
}

func active(id int64) domain.AdSummary {
	return domain.AdSummary{AdID: id, PostedMarker: "Online: 3 Stunden"}
}

func inactive(id int64) domain.AdSummary {
	return domain.AdSummary{AdID: id, PostedMarker: "inaktiv"}
}

func idSet(ids ...int64) map[int64]struct{} {
	s := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}
