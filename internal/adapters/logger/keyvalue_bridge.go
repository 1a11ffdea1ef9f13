package logger_adapter

import (
	"fmt"

	"wg-parser-service/internal/core/port"
)

// badKey - ключ для значения без пары, как у slog
const badKey = "!BADKEY"

// KeyValueBridge принимает логи в стиле "msg, k1, v1, k2, v2" и пишет их в LoggerPort.
// Такой интерфейс ожидают pkg/rabbitmq (rabbitmq_common.Logger) и robfig/cron (cron.Logger).
type KeyValueBridge struct {
	logger port.LoggerPort
	prefix string
	// infoAsDebug понижает Info до Debug: cron пишет Info на каждом пробуждении
	infoAsDebug bool
}

type BridgeOption func(*KeyValueBridge)

// WithPrefix добавляет префикс к каждому сообщению
func WithPrefix(prefix string) BridgeOption {
	return func(b *KeyValueBridge) { b.prefix = prefix }
}

func WithInfoAsDebug() BridgeOption {
	return func(b *KeyValueBridge) { b.infoAsDebug = true }
}

func NewKeyValueBridge(logger port.LoggerPort, opts ...BridgeOption) *KeyValueBridge {
	b := &KeyValueBridge{logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *KeyValueBridge) Debug(msg string, keysAndValues ...interface{}) {
	b.logger.Debug(b.prefix+msg, keyValuesToFields(keysAndValues))
}

func (b *KeyValueBridge) Info(msg string, keysAndValues ...interface{}) {
	if b.infoAsDebug {
		b.Debug(msg, keysAndValues...)
		return
	}
	b.logger.Info(b.prefix+msg, keyValuesToFields(keysAndValues))
}

func (b *KeyValueBridge) Warn(msg string, keysAndValues ...interface{}) {
	b.logger.Warn(b.prefix+msg, keyValuesToFields(keysAndValues))
}

func (b *KeyValueBridge) Error(err error, msg string, keysAndValues ...interface{}) {
	b.logger.Error(b.prefix+msg, err, keyValuesToFields(keysAndValues))
}

// keyValuesToFields: нестроковый ключ приводится к строке, значение без пары уходит под badKey.
// Ошибки превращаются в текст, иначе JSON-логгеры пишут их как {}.
func keyValuesToFields(keysAndValues []interface{}) port.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(port.Fields, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 == len(keysAndValues) {
			fields[badKey] = fieldValue(keysAndValues[i])
			break
		}
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = fieldValue(keysAndValues[i+1])
	}
	return fields
}

func fieldValue(v interface{}) interface{} {
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return v
}
