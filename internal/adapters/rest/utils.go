package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, map[string]string{"error": message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// GetLimitOrDefault читает ?limit=; 0 означает "по умолчанию" и дальше решается в use case
func GetLimitOrDefault(r *http.Request) (int, error) {
	return getNonNegativeInt(r, "limit")
}

func GetOffsetOrDefault(r *http.Request) (int, error) {
	return getNonNegativeInt(r, "offset")
}

func getNonNegativeInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("parameter '%s' must be a non-negative integer", name)
	}
	return value, nil
}

// GetOptionalBool читает ?active=true|false; отсутствие параметра - nil
func GetOptionalBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("parameter '%s' must be a boolean", name)
	}
	return &value, nil
}
