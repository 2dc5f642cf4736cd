package cache

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedGetSet(t *testing.T) {
	b := NewBounded[string](10)

	_, ok := b.Get("missing")
	assert.False(t, ok)

	b.Set("a", "1")
	v, ok := b.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, b.Len())
}

func TestBoundedTrimKeepsMostRecent(t *testing.T) {
	b := NewBounded[int](10)
	for i := 0; i < 11; i++ {
		b.Set(fmt.Sprintf("k%d", i), i)
	}

	// 11 > 10, so only the 8 most recent remain
	assert.Equal(t, 8, b.Len())
	for i := 0; i < 3; i++ {
		_, ok := b.Get(fmt.Sprintf("k%d", i))
		assert.False(t, ok, "k%d should have been evicted", i)
	}
	for i := 3; i < 11; i++ {
		v, ok := b.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestBoundedTinyBound(t *testing.T) {
	b := NewBounded[string](1)
	b.Set("a", "1")
	b.Set("b", "2")

	assert.Equal(t, 1, b.Len())
	_, ok := b.Get("a")
	assert.False(t, ok)
	v, ok := b.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestBoundedOverwriteKeepsPosition(t *testing.T) {
	b := NewBounded[int](2)
	b.Set("a", 1)
	b.Set("b", 2)
	b.Set("a", 3)
	b.Set("c", 4)

	// floor(2*0.8) = 1: only the newest insertion survives
	_, ok := b.Get("a")
	assert.False(t, ok)
	v, ok := b.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestBoundedDeleteFuncAndFlush(t *testing.T) {
	b := NewBounded[int](0)
	b.Set("live-Stage", 1)
	b.Set("live-Item", 2)
	b.Set("review-Stage", 3)

	b.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, "live-") })
	assert.Equal(t, 1, b.Len())

	b.Flush()
	assert.Equal(t, 0, b.Len())
}
