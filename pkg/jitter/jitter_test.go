package jitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_Range(t *testing.T) {
	d := 100 * time.Millisecond

	for i := 0; i < 100; i++ {
		got := Duration(d, DefaultJitter)
		assert.GreaterOrEqual(t, got, d)
		assert.LessOrEqual(t, got, 150*time.Millisecond)
	}
}

func TestDuration_NoJitter(t *testing.T) {
	assert.Equal(t, time.Second, Duration(time.Second, 0))
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{10, time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExponentialBackoff(100*time.Millisecond, time.Second, tt.attempt, 0))
	}
}

func TestBackoff_NextAndReset(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, 300*time.Millisecond, 0)

	assert.Equal(t, 100*time.Millisecond, b.Next())
	assert.Equal(t, 200*time.Millisecond, b.Next())
	assert.Equal(t, 300*time.Millisecond, b.Next())
	assert.Equal(t, 300*time.Millisecond, b.Next())
	assert.Equal(t, 4, b.Attempt())

	b.Reset()
	assert.Zero(t, b.Attempt())
	assert.Equal(t, 100*time.Millisecond, b.Next())
}

func TestNewBackoff_MaxBelowBase(t *testing.T) {
	b := NewBackoff(time.Second, time.Millisecond, 0)
	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, time.Second, b.Next())
}
