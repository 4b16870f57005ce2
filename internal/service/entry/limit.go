package entry

import (
	"context"
	"fmt"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/ratelimit"
	"github.com/gotomicro/ego/core/elog"
)

// LimitedService 立即发送和重发不经过投递服务的节奏控制，
// 所以按发送账号限制手动发送的频率
type LimitedService struct {
	Service
	limiter ratelimit.Limiter
	logger  *elog.Component
}

func NewLimitedService(svc Service, limiter ratelimit.Limiter) *LimitedService {
	return &LimitedService{
		Service: svc,
		limiter: limiter,
		logger:  elog.DefaultLogger,
	}
}

func (s *LimitedService) SendNow(ctx context.Context, id int64) (domain.QueueEntry, error) {
	if err := s.check(ctx, id); err != nil {
		return domain.QueueEntry{}, err
	}
	return s.Service.SendNow(ctx, id)
}

func (s *LimitedService) Resend(ctx context.Context, id int64) (domain.QueueEntry, error) {
	if err := s.check(ctx, id); err != nil {
		return domain.QueueEntry{}, err
	}
	return s.Service.Resend(ctx, id)
}

func (s *LimitedService) check(ctx context.Context, id int64) error {
	e, err := s.Service.Get(ctx, id)
	if err != nil {
		return err
	}
	limited, err := s.limiter.Limit(ctx, fmt.Sprintf("manual_send:%d", e.AccountID))
	if err != nil {
		// Redis 不可用的时候放行
		s.logger.Warn("手动发送限流检查失败",
			elog.Int64("entryID", id),
			elog.FieldErr(err))
		return nil
	}
	if limited {
		return fmt.Errorf("%w: AccountID = %d", errs.ErrRateLimited, e.AccountID)
	}
	return nil
}
