package domain

import "errors"

var (
	// ErrFetch - не удалось загрузить страницу (сеть, таймаут, не-2xx)
	ErrFetch = errors.New("page fetch failed")
	// ErrMalformedPage - на странице есть объявление без отметки о публикации
	ErrMalformedPage = errors.New("malformed listing page")
	// ErrRunInProgress - для города уже идет обновление
	ErrRunInProgress = errors.New("update run already in progress for city")
	// ErrUnknownCity - город не настроен
	ErrUnknownCity = errors.New("unknown city")
	// ErrAddressNotFound - геокодер не нашел адрес
	ErrAddressNotFound = errors.New("address not found")
)
