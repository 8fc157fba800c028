package cache

import (
	"maps"
	"reflect"
	"sync"
)

// Cache is a keyed store that only records, and only reports through
// onUpdate, values that differ from what it already holds.
type Cache struct {
	data     map[string]any
	onUpdate func(key string, data any)
	mu       sync.RWMutex
}

func New(onUpdate func(key string, data any)) *Cache {
	return &Cache{
		data:     make(map[string]any),
		onUpdate: onUpdate,
	}
}

// Update stores data under key and reports whether anything changed.
func (c *Cache) Update(key string, data any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.data[key]; ok && reflect.DeepEqual(old, data) {
		return false
	}
	c.data[key] = data
	if c.onUpdate != nil {
		c.onUpdate(key, data)
	}
	return true
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.data[key]
	return v, ok
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

func (c *Cache) Dump() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return maps.Clone(c.data)
}
