package lockx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

var ErrLockNotAcquired = errors.New("没有抢到分布式锁")

const (
	defaultUnlockTimeout = time.Second * 3
	checkTimeout         = time.Millisecond * 500
)

// Guard 在分布式锁的保护下执行业务，抢不到锁就直接返回，不排队
type Guard struct {
	dclient    dlock.Client
	expiration time.Duration
	// 抢锁最多等这么久
	waitTimeout time.Duration
	logger      *elog.Component
}

func NewGuard(dclient dlock.Client, expiration, waitTimeout time.Duration) *Guard {
	return &Guard{
		dclient:     dclient,
		expiration:  expiration,
		waitTimeout: waitTimeout,
		logger:      elog.DefaultLogger,
	}
}

// Do fn 的返回值原样返回。没有拿到锁时返回的错误可以用 ErrLockNotAcquired 判断
func (g *Guard) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock, err := g.dclient.NewLock(ctx, key, g.expiration)
	if err != nil {
		return fmt.Errorf("初始化分布式锁失败 key %s: %w", key, err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, g.waitTimeout)
	err = lock.Lock(lockCtx)
	cancel()
	if err != nil {
		if err = g.classify(ctx, lock, key, err); err != nil {
			return err
		}
	}

	defer func() {
		// 此时 ctx 可能已经被取消了，还是要尝试释放
		unCtx, cancel := context.WithTimeout(context.Background(), defaultUnlockTimeout)
		//nolint:contextcheck // 原始 ctx 可能已被取消，但仍需解锁
		unErr := lock.Unlock(unCtx)
		cancel()
		if unErr != nil {
			g.logger.Error("释放分布式锁失败", elog.String("key", key), elog.FieldErr(unErr))
		}
	}()
	return fn(ctx)
}

// classify 区分锁被别人持有和 Redis 本身出问题。
// 返回 nil 表示在等待超时的同时其实已经拿到了锁
func (g *Guard) classify(ctx context.Context, lock dlock.Lock, key string, lockErr error) error {
	switch {
	case errors.Is(lockErr, dlock.ErrLocked):
		return fmt.Errorf("%w key %s: %v", ErrLockNotAcquired, key, lockErr)
	case ctx.Err() != nil:
		return fmt.Errorf("抢锁被取消 key %s: %w", key, ctx.Err())
	case !errors.Is(lockErr, context.DeadlineExceeded):
		return fmt.Errorf("加锁失败 key %s: %w", key, lockErr)
	}
	// 等待超时的时候看不到最后一次加锁的结果，用一次不重试的续约确认锁的归属
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	err := lock.Refresh(checkCtx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dlock.ErrLockNotHold):
		return fmt.Errorf("%w key %s: %v", ErrLockNotAcquired, key, lockErr)
	default:
		return fmt.Errorf("加锁失败 key %s: %w", key, err)
	}
}
