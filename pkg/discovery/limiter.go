package discovery

import "context"

// RateLimiter limita cuántas sondas corren a la vez
type RateLimiter struct {
	semaphore chan struct{}
}

// NewRateLimiter crea un nuevo rate limiter; maxConcurrent < 1 se toma como 1
func NewRateLimiter(maxConcurrent int) *RateLimiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &RateLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// Acquire espera un slot libre o la cancelación del contexto
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	select {
	case rl.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release libera un slot
func (rl *RateLimiter) Release() {
	<-rl.semaphore
}

// Capacity retorna el máximo de slots
func (rl *RateLimiter) Capacity() int {
	return cap(rl.semaphore)
}
