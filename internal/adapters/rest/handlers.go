package rest

import (
	"errors"
	"net/http"
	"strings"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
	"wg-parser-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

type AdsHandlers struct {
	updateUC usecases_port.UpdateActiveAdsUseCase
	scrapeUC usecases_port.ScrapeNewAdsUseCase
	queryUC  usecases_port.QueryAdsUseCase
}

func NewAdsHandlers(
	updateUC usecases_port.UpdateActiveAdsUseCase,
	scrapeUC usecases_port.ScrapeNewAdsUseCase,
	queryUC usecases_port.QueryAdsUseCase,
) *AdsHandlers {
	return &AdsHandlers{
		updateUC: updateUC,
		scrapeUC: scrapeUC,
		queryUC:  queryUC,
	}
}

// HandleUpdateCity - POST /api/v1/cities/{city}/update.
// Прогон синхронный: ответ приходит вместе с отчетом.
func (h *AdsHandlers) HandleUpdateCity(w http.ResponseWriter, r *http.Request) {
	city := strings.ToLower(chi.URLParam(r, "city"))
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleUpdateCity", "city": city})

	report, err := h.updateUC.Execute(r.Context(), city)
	if err != nil {
		logger.Error("Update run failed", err, nil)
		writeUseCaseError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, report)
}

// HandleScrapeCity - POST /api/v1/cities/{city}/scrape
func (h *AdsHandlers) HandleScrapeCity(w http.ResponseWriter, r *http.Request) {
	city := strings.ToLower(chi.URLParam(r, "city"))
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleScrapeCity", "city": city})

	report, err := h.scrapeUC.Execute(r.Context(), city)
	if err != nil {
		logger.Error("Scrape run failed", err, nil)
		writeUseCaseError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, report)
}

// HandleListAds - GET /api/v1/ads?city=&active=&limit=&offset=
func (h *AdsHandlers) HandleListAds(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleListAds"})

	limit, err := GetLimitOrDefault(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := GetOffsetOrDefault(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	active, err := GetOptionalBool(r, "active")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := domain.AdFilter{
		CityName: strings.ToLower(r.URL.Query().Get("city")),
		IsActive: active,
		Limit:    limit,
		Offset:   offset,
	}

	ads, err := h.queryUC.ListAds(r.Context(), filter)
	if err != nil {
		logger.Error("Failed to list ads", err, nil)
		writeUseCaseError(w, err)
		return
	}

	items := make([]AdResponseDTO, 0, len(ads))
	for _, ad := range ads {
		items = append(items, toAdResponseDTO(ad))
	}
	RespondWithJSON(w, http.StatusOK, AdsListResponseDTO{Items: items, Count: len(items)})
}

// HandleStats - GET /api/v1/stats
func (h *AdsHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queryUC.Stats(r.Context())
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Failed to load stats", err, port.Fields{"handler": "HandleStats"})
		writeUseCaseError(w, err)
		return
	}
	if stats == nil {
		stats = []domain.CityStats{}
	}
	RespondWithJSON(w, http.StatusOK, stats)
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeUseCaseError переводит доменные ошибки в HTTP-статусы
func writeUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownCity):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRunInProgress):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrFetch), errors.Is(err, domain.ErrMalformedPage):
		WriteJSONError(w, http.StatusBadGateway, err.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
