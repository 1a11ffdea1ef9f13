package logger_adapter

import (
	"fmt"

	"wg-parser-service/internal/core/port"
)

// MultiLoggerAdapter пишет каждую запись в stdout и, если включен, в fluent-bit
type MultiLoggerAdapter struct {
	sinks []port.LoggerPort
}

// NewMultiLoggerAdapter пропускает nil и раскрывает вложенные MultiLoggerAdapter,
// чтобы запись не попала в один и тот же sink дважды через WithFields
func NewMultiLoggerAdapter(loggers ...port.LoggerPort) (*MultiLoggerAdapter, error) {
	var sinks []port.LoggerPort
	for _, l := range loggers {
		switch v := l.(type) {
		case nil:
		case *MultiLoggerAdapter:
			sinks = append(sinks, v.sinks...)
		default:
			sinks = append(sinks, v)
		}
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("multilogger: at least one logger is required")
	}
	return &MultiLoggerAdapter{sinks: sinks}, nil
}

// Len - число подключенных sink'ов
func (m *MultiLoggerAdapter) Len() int { return len(m.sinks) }

func (m *MultiLoggerAdapter) each(write func(port.LoggerPort)) {
	for _, s := range m.sinks {
		write(s)
	}
}

func (m *MultiLoggerAdapter) Debug(msg string, fields port.Fields) {
	m.each(func(s port.LoggerPort) { s.Debug(msg, fields) })
}

func (m *MultiLoggerAdapter) Info(msg string, fields port.Fields) {
	m.each(func(s port.LoggerPort) { s.Info(msg, fields) })
}

func (m *MultiLoggerAdapter) Warn(msg string, fields port.Fields) {
	m.each(func(s port.LoggerPort) { s.Warn(msg, fields) })
}

func (m *MultiLoggerAdapter) Error(msg string, err error, fields port.Fields) {
	m.each(func(s port.LoggerPort) { s.Error(msg, err, fields) })
}

func (m *MultiLoggerAdapter) WithFields(fields port.Fields) port.LoggerPort {
	enriched := make([]port.LoggerPort, len(m.sinks))
	for i, s := range m.sinks {
		enriched[i] = s.WithFields(fields)
	}
	return &MultiLoggerAdapter{sinks: enriched}
}
