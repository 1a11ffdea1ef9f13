package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Termination - причина остановки обхода страниц
type Termination string

const (
	TerminationEmptyPage      Termination = "empty_page"
	TerminationInactiveMarker Termination = "inactive_marker"
	TerminationPageLimit      Termination = "page_limit"
)

// CollectResult - итог обхода списка
type CollectResult struct {
	IDs          map[int64]struct{}
	PagesFetched int
	Termination  Termination
}

// Contains сообщает, попал ли id в активное множество
func (r CollectResult) Contains(adID int64) bool {
	_, ok := r.IDs[adID]
	return ok
}

// StampPolicy определяет, когда записывается ts_deactivated
type StampPolicy string

const (
	// StampOnTransition ставит метку только при переходе в неактивное состояние
	// (или если у неактивной записи метки еще нет)
	StampOnTransition StampPolicy = "on_transition"
	// RestampEveryRun перезаписывает метку каждый прогон, пока объявления нет на сайте
	RestampEveryRun StampPolicy = "every_run"
)

// ParseStampPolicy разбирает значение из конфига; пустая строка - политика по умолчанию
func ParseStampPolicy(s string) (StampPolicy, error) {
	switch StampPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StampOnTransition:
		return StampOnTransition, nil
	case RestampEveryRun:
		return RestampEveryRun, nil
	default:
		return "", fmt.Errorf("unknown deactivation stamp policy %q", s)
	}
}

// ReconcileStats - счетчики переходов одного прогона
type ReconcileStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Inactive    int `json:"inactive"`
	Deactivated int `json:"deactivated"` // active -> inactive
	Reactivated int `json:"reactivated"` // inactive -> active
	Restamped   int `json:"restamped"`   // остались неактивными, но метка изменилась
}

// ReconcileResult - все записи города после сверки и минимальный набор изменений
type ReconcileResult struct {
	Records []AdRecord
	Changes []AdRecord
	Stats   ReconcileStats
}

// UpdateReport - отчет о прогоне обновления одного города
type UpdateReport struct {
	RunID        uuid.UUID      `json:"run_id"`
	CityName     string         `json:"city_name"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	PagesFetched int            `json:"pages_fetched"`
	ActiveIDs    int            `json:"active_ids"`
	Termination  Termination    `json:"termination"`
	Truncated    bool           `json:"truncated"` // достигнут лимит страниц, изменения не записаны
	Stats        ReconcileStats `json:"stats"`
	RowsUpdated  int64          `json:"rows_updated"`
}

// ScrapeReport - отчет о сборе новых объявлений
type ScrapeReport struct {
	CityName    string `json:"city_name"`
	Seen        int    `json:"seen"`
	New         int    `json:"new"`
	Inserted    int    `json:"inserted"`
	Skipped     int    `json:"skipped"` // не удалось загрузить страницу объявления
	NotGeocoded int    `json:"not_geocoded"`
}

// UpdateTask - запрос на внеочередное обновление из очереди
type UpdateTask struct {
	CityName string    `json:"city_name"`
	TaskID   uuid.UUID `json:"task_id"`
}
