package usecase

import "sync"

// cityLocks - не больше одного прогона на город внутри процесса
type cityLocks struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newCityLocks() *cityLocks {
	return &cityLocks{running: make(map[string]struct{})}
}

// tryLock возвращает false, если город уже занят
func (l *cityLocks) tryLock(city string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.running[city]; busy {
		return false
	}
	l.running[city] = struct{}{}
	return true
}

func (l *cityLocks) unlock(city string) {
	l.mu.Lock()
	delete(l.running, city)
	l.mu.Unlock()
}
