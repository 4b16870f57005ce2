package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/retry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	cacheredis "github.com/chimalongy/emailsenderserverless-sub001/internal/repository/cache/redis"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/campaign"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/reconcile"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/test/ioc"
	"github.com/meoying/dlock-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReconcileTestSuite struct {
	suite.Suite
	accountRepo  repository.AccountRepository
	campaignRepo repository.CampaignRepository
	dclient      dlock.Client
	svc          reconcile.Service
}

func TestReconcileTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcileTestSuite))
}

func (s *ReconcileTestSuite) SetupTest() {
	db := ioc.InitDBAndTables(s.T())
	rdb := ioc.InitRedis(s.T())
	s.accountRepo = repository.NewAccountRepository(dao.NewAccountDAO(db), cacheredis.NewSentCounter(rdb))
	s.campaignRepo = repository.NewCampaignRepository(dao.NewCampaignDAO(db))
	s.dclient = ioc.InitDistributedLock(rdb)
	s.svc = reconcile.NewService(s.campaignRepo, s.dclient, retry.DefaultConfig())
}

// prepare 创建账号和活动，并按 counts 提交分配
func (s *ReconcileTestSuite) prepare(recipients []string, counts ...int) (domain.Campaign, []domain.Account) {
	t := s.T()
	ctx := t.Context()
	accounts := make([]domain.Account, 0, len(counts))
	alloc := make(domain.Allocation, 0, len(counts))
	for i, cnt := range counts {
		acc, err := s.accountRepo.Create(ctx, domain.Account{
			Email:      "sender" + string(rune('a'+i)) + "@example.com",
			DailyLimit: 100,
			Active:     true,
		})
		require.NoError(t, err)
		acc.Reserved = cnt
		accounts = append(accounts, acc)
		alloc = append(alloc, domain.AllocationItem{AccountID: acc.ID, Count: cnt})
	}
	c, err := s.campaignRepo.Create(ctx, domain.Campaign{
		Name:       "双十一",
		Recipients: recipients,
		Status:     domain.CampaignStatusDraft,
	})
	require.NoError(t, err)
	c.Allocation = alloc
	require.NoError(t, s.campaignRepo.CommitAllocation(ctx, c, accounts))
	c, err = s.campaignRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	return c, accounts
}

func (s *ReconcileTestSuite) reservedOf(id int64) int {
	acc, err := s.accountRepo.GetByID(s.T().Context(), id)
	require.NoError(s.T(), err)
	return acc.Reserved
}

func (s *ReconcileTestSuite) TestRemoveRecipient() {
	t := s.T()
	recipients := []string{"r1@x.com", "r2@x.com", "r3@x.com", "r4@x.com", "r5@x.com"}
	c, accounts := s.prepare(recipients, 3, 2)
	a1, a2 := accounts[0].ID, accounts[1].ID

	// r2 落在第一个账号的槽位里
	res, err := s.svc.RemoveRecipient(t.Context(), c.ID, "r2@x.com")
	require.NoError(t, err)
	assert.Equal(t, a1, res.Owner)
	assert.False(t, res.Unmatched)
	assert.Equal(t, []string{"r1@x.com", "r3@x.com", "r4@x.com", "r5@x.com"}, res.Campaign.Recipients)
	assert.Equal(t, []string{"r2@x.com"}, res.Campaign.DeletedRecipients)
	assert.Equal(t, domain.Allocation{{AccountID: a1, Count: 2}, {AccountID: a2, Count: 2}}, res.Campaign.Allocation)
	assert.Equal(t, 2, s.reservedOf(a1))
	assert.Equal(t, 2, s.reservedOf(a2))

	// 持久化之后和返回值一致
	stored, err := s.campaignRepo.GetByID(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Campaign.Recipients, stored.Recipients)
	assert.Equal(t, res.Campaign.DeletedRecipients, stored.DeletedRecipients)
	assert.Equal(t, res.Campaign.Allocation, stored.Allocation)
	assert.Equal(t, res.Campaign.Version, stored.Version)
	assert.LessOrEqual(t, stored.Allocation.Total(), len(stored.Recipients))

	// r5 属于第二个账号
	res, err = s.svc.RemoveRecipient(t.Context(), c.ID, "r5@x.com")
	require.NoError(t, err)
	assert.Equal(t, a2, res.Owner)
	assert.Equal(t, domain.Allocation{{AccountID: a1, Count: 2}, {AccountID: a2, Count: 1}}, res.Campaign.Allocation)
	assert.Equal(t, []string{"r2@x.com", "r5@x.com"}, res.Campaign.DeletedRecipients)
	assert.Equal(t, 1, s.reservedOf(a2))
}

func (s *ReconcileTestSuite) TestRemoveRecipientDropsEmptyAllocation() {
	t := s.T()
	c, accounts := s.prepare([]string{"r1@x.com", "r2@x.com", "r3@x.com"}, 2, 1)

	res, err := s.svc.RemoveRecipient(t.Context(), c.ID, "r3@x.com")
	require.NoError(t, err)
	assert.Equal(t, accounts[1].ID, res.Owner)
	assert.Equal(t, domain.Allocation{{AccountID: accounts[0].ID, Count: 2}}, res.Campaign.Allocation)
	assert.Equal(t, 0, s.reservedOf(accounts[1].ID))
}

func (s *ReconcileTestSuite) TestRemoveUnmatchedRecipient() {
	t := s.T()
	c, accounts := s.prepare([]string{"r1@x.com", "r2@x.com", "r3@x.com", "r4@x.com"}, 2)

	res, err := s.svc.RemoveRecipient(t.Context(), c.ID, "r4@x.com")
	require.NoError(t, err)
	assert.True(t, res.Unmatched)
	assert.Zero(t, res.Owner)
	assert.Equal(t, c.Allocation, res.Campaign.Allocation)
	assert.Equal(t, []string{"r1@x.com", "r2@x.com", "r3@x.com"}, res.Campaign.Recipients)
	assert.Equal(t, 2, s.reservedOf(accounts[0].ID))
}

func (s *ReconcileTestSuite) TestRemoveRecipientNormalizesEmail() {
	t := s.T()
	c, accounts := s.prepare([]string{"a@x.com", "b@x.com", "c@x.com"}, 2, 1)
	a1, a2 := accounts[0].ID, accounts[1].ID

	res, err := s.svc.RemoveRecipient(t.Context(), c.ID, "A@X.com")
	require.NoError(t, err)
	assert.Equal(t, a1, res.Owner)
	assert.Equal(t, []string{"b@x.com", "c@x.com"}, res.Campaign.Recipients)
	assert.Equal(t, []string{"a@x.com"}, res.Campaign.DeletedRecipients)

	res, err = s.svc.RemoveRecipient(t.Context(), c.ID, " b@X.com\n")
	require.NoError(t, err)
	assert.Equal(t, a1, res.Owner)
	assert.Equal(t, []string{"c@x.com"}, res.Campaign.Recipients)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, res.Campaign.DeletedRecipients)
	assert.Equal(t, domain.Allocation{{AccountID: a2, Count: 1}}, res.Campaign.Allocation)
	assert.Equal(t, 0, s.reservedOf(a1))

	_, err = s.svc.RemoveRecipient(t.Context(), c.ID, "   ")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func (s *ReconcileTestSuite) TestRemoveRecipientError() {
	t := s.T()
	c, _ := s.prepare([]string{"r1@x.com", "r2@x.com"}, 2)

	_, err := s.svc.RemoveRecipient(t.Context(), c.ID, "nobody@x.com")
	assert.ErrorIs(t, err, errs.ErrRecipientNotFound)

	_, err = s.svc.RemoveRecipient(t.Context(), c.ID+100, "r1@x.com")
	assert.ErrorIs(t, err, errs.ErrCampaignNotFound)

	// 重复移除
	_, err = s.svc.RemoveRecipient(t.Context(), c.ID, "r1@x.com")
	require.NoError(t, err)
	_, err = s.svc.RemoveRecipient(t.Context(), c.ID, "r1@x.com")
	assert.ErrorIs(t, err, errs.ErrRecipientNotFound)
}

func (s *ReconcileTestSuite) TestRemoveRecipientLocked() {
	t := s.T()
	c, _ := s.prepare([]string{"r1@x.com", "r2@x.com"}, 2)

	lock, err := s.dclient.NewLock(t.Context(), campaign.LockKey(c.ID), time.Minute)
	require.NoError(t, err)
	require.NoError(t, lock.Lock(t.Context()))
	defer func() {
		_ = lock.Unlock(context.Background())
	}()

	_, err = s.svc.RemoveRecipient(t.Context(), c.ID, "r1@x.com")
	assert.ErrorIs(t, err, errs.ErrCampaignVersionMismatch)

	stored, err := s.campaignRepo.GetByID(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Recipients, 2)
}
