package port

import "context"

// EventListenerPort - компонент, который слушает очередь и запускает use case'ы
type EventListenerPort interface {
	// Start блокируется, пока слушатель работает
	Start(ctx context.Context) error
	// Close дожидается текущей задачи и освобождает ресурсы
	Close() error
}
