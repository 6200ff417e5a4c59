package utils

import (
	"math/rand"
)

// Shuffle 返回 items 的均匀随机排列（Fisher-Yates）。
// 不要用 sort-by-random-key 替代：那种写法在相等 key 上有偏。
func Shuffle[T any](items []T) []T {
	result := make([]T, len(items))
	copy(result, items)
	for i := len(result) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// PickRandom 从候选池中均匀抽取一个元素，空池返回 false
func PickRandom[T any](items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[rand.Intn(len(items))], true
}
