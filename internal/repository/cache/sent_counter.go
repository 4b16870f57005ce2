package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	SentCounterPrefix = "email:sent"
	// 计数只在当天有用，多留一天方便跨零点的读
	DefaultSentCounterExpiration = 48 * time.Hour
)

// SentCounter 账号每天实际发出的邮件数量
type SentCounter interface {
	// Get 批量读取 day 当天的计数，没有记录的账号返回 0
	Get(ctx context.Context, day string, accountIDs []int64) (map[int64]int, error)
	Incr(ctx context.Context, day string, accountID int64) (int, error)
}

func SentCounterKey(day string, accountID int64) string {
	return fmt.Sprintf("%s:%s:%d", SentCounterPrefix, day, accountID)
}
