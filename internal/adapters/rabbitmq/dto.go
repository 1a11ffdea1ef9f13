package rabbitmq

import (
	"time"

	"wg-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

// UpdateTaskDTO - входящая задача из wg.update.tasks
type UpdateTaskDTO struct {
	CityName string    `json:"city_name"`
	TaskID   uuid.UUID `json:"task_id"`
}

// UpdateReportDTO - сообщение в wg.update.results, соответствует схеме update-report/v1
type UpdateReportDTO struct {
	RunID        uuid.UUID         `json:"run_id"`
	CityName     string            `json:"city_name"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	PagesFetched int               `json:"pages_fetched"`
	ActiveIDs    int               `json:"active_ids"`
	Termination  string            `json:"termination"`
	Truncated    bool              `json:"truncated"`
	Stats        ReconcileStatsDTO `json:"stats"`
	RowsUpdated  int64             `json:"rows_updated"`
}

type ReconcileStatsDTO struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Inactive    int `json:"inactive"`
	Deactivated int `json:"deactivated"`
	Reactivated int `json:"reactivated"`
	Restamped   int `json:"restamped"`
}

// AdDiscoveredDTO - сообщение в wg.ads.new, соответствует схеме ad-discovered/v1
type AdDiscoveredDTO struct {
	AdID      int64     `json:"ad_id"`
	CityName  string    `json:"city_name"`
	URL       string    `json:"url"`
	TsScraped time.Time `json:"ts_scraped"`
	Rent      *float64  `json:"rent"`
	RoomSize  *float64  `json:"room_size"`
	Address   *string   `json:"address"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
}

func toUpdateReportDTO(r domain.UpdateReport) UpdateReportDTO {
	return UpdateReportDTO{
		RunID:        r.RunID,
		CityName:     r.CityName,
		StartedAt:    r.StartedAt.UTC(),
		FinishedAt:   r.FinishedAt.UTC(),
		PagesFetched: r.PagesFetched,
		ActiveIDs:    r.ActiveIDs,
		Termination:  string(r.Termination),
		Truncated:    r.Truncated,
		Stats: ReconcileStatsDTO{
			Total:       r.Stats.Total,
			Active:      r.Stats.Active,
			Inactive:    r.Stats.Inactive,
			Deactivated: r.Stats.Deactivated,
			Reactivated: r.Stats.Reactivated,
			Restamped:   r.Stats.Restamped,
		},
		RowsUpdated: r.RowsUpdated,
	}
}

func toAdDiscoveredDTO(ad domain.Ad) AdDiscoveredDTO {
	return AdDiscoveredDTO{
		AdID:      ad.AdID,
		CityName:  ad.CityName,
		URL:       ad.Listing.URL,
		TsScraped: ad.TsScraped.UTC(),
		Rent:      ad.Listing.Rent,
		RoomSize:  ad.Listing.RoomSize,
		Address:   ad.AddressFormatted,
		Latitude:  ad.Latitude,
		Longitude: ad.Longitude,
	}
}
