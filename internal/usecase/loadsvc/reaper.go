package loadsvc

import (
	"sync"
	"time"
)

// StartJobReaper стартует периодическую чистку завершённых джоб старше ttl.
// Возвращённая функция останавливает чистку; повторный вызов безопасен.
func StartJobReaper(l *Loader, ttl time.Duration, every time.Duration) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				l.reapOnce(ttl)
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// reapOnce удаляет из реестра джобы, завершившиеся раньше чем ttl назад.
func (l *Loader) reapOnce(ttl time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for path, j := range l.jobs {
		done, finished := j.done()
		if !done {
			continue
		}
		if now.Sub(finished) < ttl {
			continue
		}
		delete(l.jobs, path)
	}
}
