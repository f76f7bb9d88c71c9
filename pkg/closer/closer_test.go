package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(0, logger.NewNop())

	var order []string
	for _, name := range []string{"db", "redis", "http"} {
		name := name
		c.AddFunc(name, func() { order = append(order, name) })
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "db"}, order)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0, logger.NewNop())
	errDB := errors.New("db is gone")

	closed := false
	c.AddFunc("kafka", func() { closed = true })
	c.Add("db", func(context.Context) error { return errDB })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "db")
	assert.True(t, closed)
}

func TestCloser_CloseOnce(t *testing.T) {
	c := NewCloser(0, logger.NewNop())

	calls := 0
	c.AddFunc("worker", func() { calls++ })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloser_ForcesRemainingOnTimeout(t *testing.T) {
	c := NewCloser(time.Second, logger.NewNop())

	var (
		mu        sync.Mutex
		firstCtxs []error
		slowCalls int
	)
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	c.Add("first", func(ctx context.Context) error {
		mu.Lock()
		firstCtxs = append(firstCtxs, ctx.Err())
		mu.Unlock()
		return nil
	})
	c.Add("slow", func(context.Context) error {
		mu.Lock()
		slowCalls++
		call := slowCalls
		mu.Unlock()

		if call == 1 {
			<-block
			return nil
		}
		return errors.New("still busy")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow (forced): still busy")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, slowCalls)
	assert.Equal(t, []error{nil}, firstCtxs, "first is closed only once, with a fresh context")
}
