package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/cache"
	"github.com/redis/go-redis/v9"
)

type SentCounter struct {
	rdb redis.Cmdable
}

func NewSentCounter(rdb redis.Cmdable) *SentCounter {
	return &SentCounter{rdb: rdb}
}

func (c *SentCounter) Get(ctx context.Context, day string, accountIDs []int64) (map[int64]int, error) {
	res := make(map[int64]int, len(accountIDs))
	if len(accountIDs) == 0 {
		return res, nil
	}
	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		keys = append(keys, cache.SentCounterKey(day, id))
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get sent counter from redis %w", err)
	}
	for i, v := range vals {
		// 不存在的 key 是 nil
		str, ok := v.(string)
		if !ok {
			res[accountIDs[i]] = 0
			continue
		}
		cnt, err := strconv.Atoi(str)
		if err != nil {
			return nil, fmt.Errorf("发送计数格式错误 key %s: %w", keys[i], err)
		}
		res[accountIDs[i]] = cnt
	}
	return res, nil
}

func (c *SentCounter) Incr(ctx context.Context, day string, accountID int64) (int, error) {
	key := cache.SentCounterKey(day, accountID)
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, cache.DefaultSentCounterExpiration)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to incr sent counter %w", err)
	}
	return int(incr.Val()), nil
}
