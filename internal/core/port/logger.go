package port

// Fields - структурированные данные для лога
type Fields map[string]interface{}

// LoggerPort - контракт логгера, который видят use case'ы и адаптеры
type LoggerPort interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, err error, fields Fields)
	// WithFields возвращает логгер, к каждой записи которого добавлены поля
	WithFields(fields Fields) LoggerPort
}
