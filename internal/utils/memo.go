package utils

// Memo 请求级去重缓存：同一次页面渲染中相同参数的查询只算一次。
// 与 GlobalCache 不同，它随请求创建、随请求丢弃，不涉及过期时间。
// 单个请求在一个 goroutine 内执行，不需要加锁。
type Memo struct {
	entries map[string]interface{}
}

// NewMemo 创建一个空的请求级缓存
func NewMemo() *Memo {
	return &Memo{entries: make(map[string]interface{})}
}

// Get 读取已记忆的结果，nil 接收者安全
func (m *Memo) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.entries[key]
	return v, ok
}

// Set 记录结果，nil 接收者安全
func (m *Memo) Set(key string, value interface{}) {
	if m == nil {
		return
	}
	m.entries[key] = value
}
