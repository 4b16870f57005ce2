package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/lockx"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/retry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/campaign"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/queue"
	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

// Result 移除收件人的结果
type Result struct {
	Campaign domain.Campaign
	// Owner 被扣减的账号，Unmatched 时为 0
	Owner int64
	// Unmatched 收件人落在分配总数之外，分配没有变化
	Unmatched bool
}

//go:generate mockgen -source=./reconcile.go -destination=./mocks/reconcile.mock.go -package=reconcilemocks -typed Service
type Service interface {
	// RemoveRecipient 从活动里移除一个收件人（退信、退订），并扣减它所在账号的分配数量
	RemoveRecipient(ctx context.Context, campaignID int64, email string) (Result, error)
}

type service struct {
	repo     repository.CampaignRepository
	guard    *lockx.Guard
	retryCfg retry.Config
	logger   *elog.Component
}

func NewService(repo repository.CampaignRepository, dclient dlock.Client, retryCfg retry.Config) Service {
	return &service{
		repo:     repo,
		guard:    lockx.NewGuard(dclient, 30*time.Second, 3*time.Second),
		retryCfg: retryCfg,
		logger:   elog.DefaultLogger,
	}
}

func (s *service) RemoveRecipient(ctx context.Context, campaignID int64, email string) (Result, error) {
	// 退信、退订信号里的地址大小写和空白不可控
	email = domain.NormalizeEmail(email)
	if email == "" {
		return Result{}, fmt.Errorf("%w: Email 不能为空", errs.ErrInvalidParameter)
	}
	var res Result
	err := s.guard.Do(ctx, campaign.LockKey(campaignID), func(ctx context.Context) error {
		var err error
		res, err = s.removeWithRetry(ctx, campaignID, email)
		return err
	})
	if errors.Is(err, lockx.ErrLockNotAcquired) {
		return Result{}, fmt.Errorf("%w: CampaignID = %d, %w", errs.ErrCampaignVersionMismatch, campaignID, err)
	}
	if err != nil {
		return Result{}, err
	}
	if res.Unmatched {
		s.logger.Warn("移除的收件人没有分配到任何账号，分配保持不变",
			elog.Int64("campaignID", campaignID),
			elog.String("email", email),
			elog.Int("allocated", res.Campaign.Allocation.Total()),
			elog.Int("recipients", len(res.Campaign.Recipients)))
	}
	return res, nil
}

func (s *service) removeWithRetry(ctx context.Context, campaignID int64, email string) (Result, error) {
	strategy, err := retry.NewRetry(s.retryCfg)
	if err != nil {
		return Result{}, err
	}
	for {
		res, err := s.remove(ctx, campaignID, email)
		if err == nil || !errors.Is(err, errs.ErrCampaignVersionMismatch) {
			return res, err
		}
		next, ok := strategy.Next()
		if !ok {
			return Result{}, err
		}
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(next):
		}
	}
}

func (s *service) remove(ctx context.Context, campaignID int64, email string) (Result, error) {
	c, err := s.repo.GetByID(ctx, campaignID)
	if err != nil {
		return Result{}, err
	}
	if !c.HasRecipient(email) {
		return Result{}, fmt.Errorf("%w: CampaignID = %d, Email = %s", errs.ErrRecipientNotFound, campaignID, email)
	}

	// 必须在移除之前按原来的顺序回放
	owner, found := queue.Locate(c.Recipients, c.Allocation, email)

	c.Recipients = slices.DeleteFunc(slices.Clone(c.Recipients), func(r string) bool {
		return r == email
	})
	c.DeletedRecipients = append(slices.Clone(c.DeletedRecipients), email)
	if found {
		c.Allocation = decrement(c.Allocation, owner)
	}
	if err = s.repo.UpdateRecipients(ctx, c, owner); err != nil {
		return Result{}, err
	}
	c.Version++
	return Result{Campaign: c, Owner: owner, Unmatched: !found}, nil
}

// decrement 扣减一个，减到 0 的条目直接去掉
func decrement(alloc domain.Allocation, accountID int64) domain.Allocation {
	res := make(domain.Allocation, 0, len(alloc))
	for _, item := range alloc {
		if item.AccountID == accountID {
			item.Count--
		}
		res = append(res, item)
	}
	return res.Compact()
}
