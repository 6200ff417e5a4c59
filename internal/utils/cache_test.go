package utils

import (
	"sync"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := GetCache()
	defer c.Purge()

	c.Set("key", "value", time.Minute)
	if got := c.Get("key"); got != "value" {
		t.Errorf("expected value, got %v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := GetCache()
	defer c.Purge()

	c.Set("short", 42, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if got := c.Get("short"); got != nil {
		t.Errorf("expected expired entry to be nil, got %v", got)
	}
}

func TestCacheDelete(t *testing.T) {
	c := GetCache()
	defer c.Purge()

	c.Set("key", "value", time.Minute)
	c.Delete("key")
	if got := c.Get("key"); got != nil {
		t.Errorf("expected deleted entry to be nil, got %v", got)
	}

	// 删除不存在的 key 不应有副作用
	c.Delete("missing")
}

// 单例首次初始化可能发生在并发的请求协程里
func TestGetCacheConcurrentInit(t *testing.T) {
	instances := make([]*GlobalCache, 8)
	var wg sync.WaitGroup
	for i := range instances {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instances[i] = GetCache()
		}(i)
	}
	wg.Wait()

	for i, inst := range instances {
		if inst != instances[0] {
			t.Fatalf("instance %d differs from instance 0", i)
		}
	}
}

func TestCacheMiss(t *testing.T) {
	c := GetCache()
	defer c.Purge()

	if got := c.Get("never-set"); got != nil {
		t.Errorf("expected nil on miss, got %v", got)
	}
}
