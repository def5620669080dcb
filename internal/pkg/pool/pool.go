package pool

import (
	"context"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCache bigcache包装器
// 设计原则：
// 1. 底层直接使用bigcache的[]byte接口
// 2. 序列化/反序列化在Service层处理
// 3. Cache层只负责存储，无额外GC分配
type BigCache struct {
	cache *bigcache.BigCache
}

// NewBigCache 创建bigcache实例
// capacityMB: 缓存容量（MB）
// expiration: 过期时间
func NewBigCache(capacityMB int, expiration time.Duration) (*BigCache, error) {
	config := bigcache.DefaultConfig(expiration)
	config.HardMaxCacheSize = capacityMB
	config.MaxEntrySize = 512 * 1024 // 512KB max entry

	cache, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, err
	}

	return &BigCache{cache: cache}, nil
}

// Get 直接返回[]byte，由上层反序列化
func (c *BigCache) Get(key string) ([]byte, bool) {
	data, err := c.cache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set 直接存储[]byte，由上层序列化
func (c *BigCache) Set(key string, value []byte) error {
	return c.cache.Set(key, value)
}

// Remove 删除键
func (c *BigCache) Remove(key string) error {
	return c.cache.Delete(key)
}

// Flush 清空所有缓存
func (c *BigCache) Flush() error {
	return c.cache.Reset()
}

// Close 关闭缓存
func (c *BigCache) Close() error {
	return c.cache.Close()
}

// SimpleCache 有界map缓存，写满后整体淘汰
// 适合条目少、读多写少的场景（单帖DTO等）
type SimpleCache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
	cap  int
}

// NewCache 创建SimpleCache
func NewCache[K comparable, V any](capacity int) *SimpleCache[K, V] {
	if capacity <= 0 {
		capacity = 1024
	}
	return &SimpleCache[K, V]{
		data: make(map[K]V, capacity),
		cap:  capacity,
	}
}

func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *SimpleCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.data) >= c.cap {
		if _, exists := c.data[key]; !exists {
			c.data = make(map[K]V, c.cap)
		}
	}
	c.data[key] = value
}

func (c *SimpleCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

func (c *SimpleCache[K, V]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[K]V, c.cap)
}

func (c *SimpleCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
