package ledger_test

import (
	"testing"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	cacheredis "github.com/chimalongy/emailsenderserverless-sub001/internal/repository/cache/redis"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/ledger"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/test/ioc"
	"github.com/ego-component/egorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LedgerTestSuite struct {
	suite.Suite
	db  *egorm.Component
	svc ledger.Service
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) SetupTest() {
	s.db = ioc.InitDBAndTables(s.T())
	rdb := ioc.InitRedis(s.T())
	s.svc = ledger.NewService(repository.NewAccountRepository(dao.NewAccountDAO(s.db), cacheredis.NewSentCounter(rdb)))
}

func (s *LedgerTestSuite) create(email string, limit int, active bool) domain.Account {
	acc, err := s.svc.CreateAccount(s.T().Context(), domain.Account{
		Email:      email,
		DailyLimit: limit,
		Active:     active,
	})
	require.NoError(s.T(), err)
	return acc
}

// reserve 直接改表，模拟某一天的预占
func (s *LedgerTestSuite) reserve(id int64, n int, day string) {
	err := s.db.Model(&dao.Account{}).Where("id = ?", id).
		Updates(map[string]any{"reserved": n, "reserved_day": day}).Error
	require.NoError(s.T(), err)
}

func (s *LedgerTestSuite) TestCreateAccount() {
	t := s.T()
	acc := s.create("a@example.com", 100, true)
	assert.Positive(t, acc.ID)
	assert.Equal(t, 100, acc.AvailableCapacity())

	testCases := []struct {
		name    string
		acc     domain.Account
		wantErr error
	}{
		{name: "邮箱为空", acc: domain.Account{DailyLimit: 10}, wantErr: errs.ErrInvalidParameter},
		{name: "上限为0", acc: domain.Account{Email: "b@example.com"}, wantErr: errs.ErrInvalidParameter},
		{name: "邮箱重复", acc: domain.Account{Email: "a@example.com", DailyLimit: 10}, wantErr: errs.ErrAccountDuplicate},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.svc.CreateAccount(t.Context(), tc.acc)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err := s.svc.GetAccount(t.Context(), acc.ID+1)
	assert.ErrorIs(t, err, errs.ErrAccountNotFound)
}

func (s *LedgerTestSuite) TestListAccounts() {
	t := s.T()
	a := s.create("a@example.com", 10, true)
	b := s.create("b@example.com", 10, true)
	c := s.create("c@example.com", 10, false)

	got, err := s.svc.ListAccounts(t.Context(), 0, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	got, err = s.svc.ListAccounts(t.Context(), 2, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	_, err = s.svc.ListAccounts(t.Context(), 0, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func (s *LedgerTestSuite) TestSnapshot() {
	t := s.T()
	a := s.create("a@example.com", 10, true)
	b := s.create("b@example.com", 20, false)
	c := s.create("c@example.com", 30, true)

	// 不指定账号时只要启用的
	got, err := s.svc.Snapshot(t.Context(), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []int64{a.ID, c.ID}, []int64{got[0].ID, got[1].ID})

	// 指定账号时按顺序返回，不存在的跳过，未启用的也返回
	got, err = s.svc.Snapshot(t.Context(), []int64{c.ID, 999, b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.False(t, got[1].Active)

	require.NoError(t, s.svc.SetActive(t.Context(), b.ID, true))
	require.NoError(t, s.svc.SetActive(t.Context(), a.ID, false))
	got, err = s.svc.Snapshot(t.Context(), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{b.ID, c.ID}, []int64{got[0].ID, got[1].ID})

	err = s.svc.SetActive(t.Context(), 999, true)
	assert.ErrorIs(t, err, errs.ErrAccountNotFound)
}

func (s *LedgerTestSuite) TestCapacity() {
	t := s.T()
	today := domain.DayOf(time.Now())
	acc := s.create("a@example.com", 10, true)
	stale := s.create("b@example.com", 10, true)

	s.reserve(acc.ID, 5, today)
	// 昨天的预占已经失效
	s.reserve(stale.ID, 5, domain.DayOf(time.Now().Add(-24*time.Hour)))

	got, err := s.svc.Snapshot(t.Context(), []int64{acc.ID, stale.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, got[0].Reserved)
	assert.Equal(t, 5, got[0].AvailableCapacity())
	assert.Equal(t, 0, got[1].Reserved)
	assert.Equal(t, 10, got[1].AvailableCapacity())

	// 发出去一封，发送量加一，预占减一
	require.NoError(t, s.svc.RecordSent(t.Context(), acc.ID))
	require.NoError(t, s.svc.RecordSent(t.Context(), acc.ID))
	a, err := s.svc.GetAccount(t.Context(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, a.SentToday)
	assert.Equal(t, 3, a.Reserved)
	assert.Equal(t, 5, a.AvailableCapacity())

	require.NoError(t, s.svc.Release(t.Context(), acc.ID, 0))
	require.NoError(t, s.svc.Release(t.Context(), acc.ID, 2))
	a, err = s.svc.GetAccount(t.Context(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Reserved)

	// 最多释放到 0
	require.NoError(t, s.svc.Release(t.Context(), acc.ID, 5))
	a, err = s.svc.GetAccount(t.Context(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Reserved)
	assert.Equal(t, 8, a.AvailableCapacity())
}
