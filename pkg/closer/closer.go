package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

const defaultForcedTimeout = 2 * time.Second

// Func закрывает один ресурс.
type Func func(ctx context.Context) error

type resource struct {
	name  string
	close Func
}

// Closer закрывает зарегистрированные ресурсы в обратном порядке (LIFO).
// Ресурсы, не успевшие закрыться до отмены ctx, закрываются параллельно с отдельным таймаутом.
type Closer struct {
	mu            sync.Mutex
	once          sync.Once
	resources     []resource
	forcedTimeout time.Duration
	logger        logger.Logger
	err           error
}

func NewCloser(forcedTimeout time.Duration, logger logger.Logger) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{
		forcedTimeout: forcedTimeout,
		logger:        logger,
	}
}

// Add регистрирует ресурс. name попадает в лог и в текст ошибки.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, resource{name: name, close: f})
}

// AddFunc регистрирует закрытие, которое не принимает контекст и не возвращает ошибку.
func (c *Closer) AddFunc(name string, f func()) {
	c.Add(name, func(context.Context) error {
		f()
		return nil
	})
}

// Close выполняется один раз. Повторные вызовы возвращают результат первого.
func (c *Closer) Close(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		resources := make([]resource, len(c.resources))
		copy(resources, c.resources)
		c.mu.Unlock()

		left, errs := c.closeInOrder(ctx, resources)
		if len(left) > 0 {
			c.logger.Warnf("shutdown interrupted, forcing %d resource(s) to close", len(left))
			errs = append(errs, c.forceClose(left)...)
		}

		c.err = errors.Join(errs...)
	})

	return c.err
}

// closeInOrder возвращает ресурсы, до которых не дошла очередь из-за отмены ctx.
func (c *Closer) closeInOrder(ctx context.Context, resources []resource) ([]resource, []error) {
	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		res := resources[i]
		done := make(chan error, 1)
		go func() { done <- res.close(ctx) }()

		select {
		case err := <-done:
			if err != nil {
				c.logger.Errorf(err, "failed to close %s", res.name)
				errs = append(errs, fmt.Errorf("%s: %w", res.name, err))
				continue
			}
			c.logger.Infof("%s closed", res.name)
		case <-ctx.Done():
			return resources[:i+1], errs
		}
	}

	return nil, errs
}

func (c *Closer) forceClose(resources []resource) []error {
	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, res := range resources {
		res := res
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := res.close(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s (forced): %w", res.name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errs
}
