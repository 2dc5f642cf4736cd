package cache

import (
	"sync"

	"github.com/patrickmn/go-cache"
	"golang.org/x/exp/slices"
)

// KeepRatio is the share of the bound retained by a trim.
const KeepRatio = 0.8

type boundedItem[T any] struct {
	seq   uint64
	value T
}

// Bounded is an in-process cache holding at most max entries. When a Set
// pushes it past the bound, only the floor(max*KeepRatio) most recently added
// entries survive, and never fewer than one. Overwriting a key keeps its original position.
type Bounded[T any] struct {
	m sync.Mutex

	max int
	seq uint64

	c *cache.Cache
}

func NewBounded[T any](max int) *Bounded[T] {
	return &Bounded[T]{
		max: max,
		c:   cache.New(cache.NoExpiration, 0),
	}
}

func (b *Bounded[T]) Get(key string) (T, bool) {
	v, ok := b.c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(boundedItem[T]).value, true
}

func (b *Bounded[T]) Set(key string, value T) {
	b.m.Lock()
	defer b.m.Unlock()

	item := boundedItem[T]{value: value}
	if prev, ok := b.c.Get(key); ok {
		item.seq = prev.(boundedItem[T]).seq
	} else {
		b.seq++
		item.seq = b.seq
	}
	b.c.Set(key, item, cache.NoExpiration)

	if b.max > 0 && b.c.ItemCount() > b.max {
		b.trim()
	}
}

// trim must be called with b.m held.
func (b *Bounded[T]) trim() {
	type entry struct {
		key string
		seq uint64
	}
	items := b.c.Items()
	entries := make([]entry, 0, len(items))
	for k, v := range items {
		entries = append(entries, entry{key: k, seq: v.Object.(boundedItem[T]).seq})
	}
	slices.SortFunc(entries, func(x, y entry) bool { return x.seq < y.seq })

	// the entry just set always survives
	keep := int(float64(b.max) * KeepRatio)
	if keep < 1 {
		keep = 1
	}
	for _, e := range entries[:len(entries)-keep] {
		b.c.Delete(e.key)
	}
}

func (b *Bounded[T]) Delete(key string) {
	b.c.Delete(key)
}

// DeleteFunc removes every entry whose key satisfies pred.
func (b *Bounded[T]) DeleteFunc(pred func(key string) bool) {
	b.m.Lock()
	defer b.m.Unlock()

	for k := range b.c.Items() {
		if pred(k) {
			b.c.Delete(k)
		}
	}
}

func (b *Bounded[T]) Flush() {
	b.m.Lock()
	defer b.m.Unlock()

	b.c.Flush()
	b.seq = 0
}

func (b *Bounded[T]) Len() int {
	return b.c.ItemCount()
}
