// Package jitter предоставляет утилиты для добавления случайности в интервалы отступления (backoff),
// чтобы предотвратить эффект «буйного стада» (thundering herd) в распределённых системах.
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает продолжительность с применённым джиттером.
// Результат находится в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	jitter := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(jitter)
}

// ExponentialBackoff вычисляет экспоненциальное отступление с джиттером.
// base — начальная длительность отступления,
// max — максимальная длительность отступления до применения джиттера,
// attempt — номер текущей попытки повтора (нумерация с нуля).
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}

// Backoff считает подряд идущие неудачи и выдаёт очередную паузу.
// Безопасен для использования из нескольких горутин.
type Backoff struct {
	base         time.Duration
	max          time.Duration
	jitterFactor float64

	mu      sync.Mutex
	attempt int
}

func NewBackoff(base, max time.Duration, jitterFactor float64) *Backoff {
	if max < base {
		max = base
	}

	return &Backoff{
		base:         base,
		max:          max,
		jitterFactor: jitterFactor,
	}
}

// Next возвращает паузу для текущей попытки и увеличивает счётчик.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	attempt := b.attempt
	b.attempt++
	b.mu.Unlock()

	return ExponentialBackoff(b.base, b.max, attempt, b.jitterFactor)
}

// Reset сбрасывает счётчик после успешной попытки.
func (b *Backoff) Reset() {
	b.mu.Lock()
	b.attempt = 0
	b.mu.Unlock()
}

// Attempt возвращает число неудач подряд.
func (b *Backoff) Attempt() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempt
}
