package dao_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	pkgdao "github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/dao"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/test/ioc"
	"github.com/ego-component/egorm"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DAOTestSuite struct {
	suite.Suite
	db          *egorm.Component
	accountDAO  dao.AccountDAO
	campaignDAO dao.CampaignDAO
	taskDAO     dao.TaskDAO
	entryDAO    dao.QueueEntryDAO
	today       string
}

func TestDAOTestSuite(t *testing.T) {
	suite.Run(t, new(DAOTestSuite))
}

func (s *DAOTestSuite) SetupTest() {
	s.db = ioc.InitDBAndTables(s.T())
	s.accountDAO = dao.NewAccountDAO(s.db)
	s.campaignDAO = dao.NewCampaignDAO(s.db)
	s.taskDAO = dao.NewTaskDAO(s.db)
	s.entryDAO = dao.NewQueueEntryDAO(s.db)
	s.today = time.Now().UTC().Format("2006-01-02")
}

func (s *DAOTestSuite) createAccount(email string) dao.Account {
	acc, err := s.accountDAO.Create(s.T().Context(), dao.Account{Email: email, DailyLimit: 10, Active: true})
	require.NoError(s.T(), err)
	return acc
}

func (s *DAOTestSuite) createCampaign() dao.Campaign {
	c, err := s.campaignDAO.Create(s.T().Context(), dao.Campaign{
		Name:       "测试活动",
		Recipients: pkgdao.NewJSONColumn([]string{"a@x.com", "b@x.com", "c@x.com"}),
		Allocation: pkgdao.NewJSONColumn([]dao.AllocationItem{}),
		Status:     "draft",
	})
	require.NoError(s.T(), err)
	return c
}

func (s *DAOTestSuite) TestAccountReleaseReservation() {
	t := s.T()
	acc := s.createAccount("a@x.com")
	require.NoError(t, s.db.Model(&dao.Account{}).Where("id = ?", acc.ID).
		Updates(map[string]any{"reserved": 3, "reserved_day": s.today}).Error)

	// 别的日期不处理
	require.NoError(t, s.accountDAO.ReleaseReservation(t.Context(), acc.ID, "2000-01-01", 1))
	got, err := s.accountDAO.GetByID(t.Context(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Reserved)

	require.NoError(t, s.accountDAO.ReleaseReservation(t.Context(), acc.ID, s.today, 2))
	got, err = s.accountDAO.GetByID(t.Context(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Reserved)
	assert.Equal(t, 2, got.Version)

	require.NoError(t, s.accountDAO.ReleaseReservation(t.Context(), acc.ID, s.today, 5))
	got, err = s.accountDAO.GetByID(t.Context(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Reserved)

	_, err = s.accountDAO.Create(t.Context(), dao.Account{Email: "a@x.com", DailyLimit: 1})
	assert.ErrorIs(t, err, errs.ErrAccountDuplicate)

	accs, err := s.accountDAO.FindByIDs(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, accs)
}

func (s *DAOTestSuite) TestCampaignCommitAllocation() {
	t := s.T()
	a1 := s.createAccount("a@x.com")
	a2 := s.createAccount("b@x.com")
	c := s.createCampaign()

	c.Allocation = pkgdao.NewJSONColumn([]dao.AllocationItem{{AccountID: a1.ID, Count: 2}, {AccountID: a2.ID, Count: 1}})
	err := s.campaignDAO.CommitAllocation(t.Context(), c, []dao.Reservation{
		{AccountID: a1.ID, Version: a1.Version, Reserved: 2, Day: s.today},
		{AccountID: a2.ID, Version: a2.Version, Reserved: 1, Day: s.today},
	})
	require.NoError(t, err)

	got, err := s.campaignDAO.GetByID(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, c.Allocation.Val, got.Allocation.Val)
	acc, err := s.accountDAO.GetByID(t.Context(), a1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, acc.Reserved)
	assert.Equal(t, s.today, acc.ReservedDay)

	// 活动版本过期
	err = s.campaignDAO.CommitAllocation(t.Context(), c, nil)
	assert.ErrorIs(t, err, errs.ErrAllocationConflict)

	// 账号版本过期，活动的修改也要回滚
	c.Version = got.Version
	c.Allocation = pkgdao.NewJSONColumn([]dao.AllocationItem{{AccountID: a2.ID, Count: 3}})
	err = s.campaignDAO.CommitAllocation(t.Context(), c, []dao.Reservation{
		{AccountID: a2.ID, Version: a2.Version, Reserved: 3, Day: s.today},
	})
	assert.ErrorIs(t, err, errs.ErrAllocationConflict)
	got, err = s.campaignDAO.GetByID(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Len(t, got.Allocation.Val, 2)
}

func (s *DAOTestSuite) TestCampaignUpdateRecipients() {
	t := s.T()
	a1 := s.createAccount("a@x.com")
	c := s.createCampaign()
	require.NoError(t, s.db.Model(&dao.Account{}).Where("id = ?", a1.ID).
		Updates(map[string]any{"reserved": 3, "reserved_day": s.today}).Error)

	c.Recipients = pkgdao.NewJSONColumn([]string{"a@x.com", "c@x.com"})
	c.DeletedRecipients = pkgdao.NewJSONColumn([]string{"b@x.com"})
	require.NoError(t, s.campaignDAO.UpdateRecipients(t.Context(), c, a1.ID, s.today))

	got, err := s.campaignDAO.GetByID(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "c@x.com"}, got.Recipients.Val)
	assert.Equal(t, []string{"b@x.com"}, got.DeletedRecipients.Val)
	acc, err := s.accountDAO.GetByID(t.Context(), a1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, acc.Reserved)

	// 版本过期
	err = s.campaignDAO.UpdateRecipients(t.Context(), c, a1.ID, s.today)
	assert.ErrorIs(t, err, errs.ErrCampaignVersionMismatch)
	acc, err = s.accountDAO.GetByID(t.Context(), a1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, acc.Reserved)
}

func (s *DAOTestSuite) TestCampaignStatus() {
	t := s.T()
	c1 := s.createCampaign()
	c2 := s.createCampaign()

	require.NoError(t, s.campaignDAO.CASStatus(t.Context(), c1.ID, "draft", "active"))
	err := s.campaignDAO.CASStatus(t.Context(), c1.ID, "draft", "active")
	assert.ErrorIs(t, err, errs.ErrCampaignVersionMismatch)

	active, err := s.campaignDAO.FindByStatus(t.Context(), "active", 0, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, c1.ID, active[0].ID)
	drafts, err := s.campaignDAO.FindByStatus(t.Context(), "draft", 0, 10)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, c2.ID, drafts[0].ID)
}

func (s *DAOTestSuite) newTask(id int64) dao.Task {
	return dao.Task{
		ID:          id,
		CampaignID:  1,
		Subject:     "hi",
		ScheduledAt: time.Now().Add(time.Hour).UnixMilli(),
		SendRate:    10,
		Type:        "new",
		Status:      "pending",
	}
}

func (s *DAOTestSuite) newEntry(id, taskID int64, recipient string) dao.QueueEntry {
	return dao.QueueEntry{
		ID:        id,
		TaskID:    taskID,
		AccountID: 1,
		Recipient: recipient,
		Subject:   "hi",
		Status:    "pending",
	}
}

func (s *DAOTestSuite) TestTaskCreateWithEntries() {
	t := s.T()
	_, err := s.taskDAO.CreateWithEntries(t.Context(), s.newTask(100), []dao.QueueEntry{
		s.newEntry(101, 100, "a@x.com"),
		s.newEntry(102, 100, "b@x.com"),
	})
	require.NoError(t, err)

	// 同一个任务里收件人重复，整个事务回滚
	_, err = s.taskDAO.CreateWithEntries(t.Context(), s.newTask(200), []dao.QueueEntry{
		s.newEntry(201, 200, "a@x.com"),
		s.newEntry(202, 200, "a@x.com"),
	})
	assert.ErrorIs(t, err, errs.ErrEntryDuplicate)
	_, err = s.taskDAO.GetByID(t.Context(), 200)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, s.taskDAO.UpdateStatus(t.Context(), 100, "scheduled"))
	tasks, err := s.taskDAO.ListByCampaign(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "scheduled", tasks[0].Status)

	entries, err := s.entryDAO.ListByTask(t.Context(), 100, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Version)
}

func (s *DAOTestSuite) TestQueueEntryStatus() {
	t := s.T()
	task := s.newTask(300)
	_, err := s.taskDAO.CreateWithEntries(t.Context(), task, []dao.QueueEntry{
		s.newEntry(301, 300, "a@x.com"),
		s.newEntry(302, 300, "b@x.com"),
		s.newEntry(303, 300, "c@x.com"),
	})
	require.NoError(t, err)
	c := s.createCampaign()
	require.NoError(t, s.db.Model(&dao.Task{}).Where("id = ?", 300).Update("campaign_id", c.ID).Error)

	cnt, err := s.entryDAO.BatchCASStatusByTask(t.Context(), 300, "pending", "scheduled")
	require.NoError(t, err)
	assert.Equal(t, int64(3), cnt)

	e, err := s.entryDAO.GetByID(t.Context(), 301)
	require.NoError(t, err)
	e.Status = "sent"
	e.SentAt = time.Now().UnixMilli()
	require.NoError(t, s.entryDAO.CASStatus(t.Context(), e, "scheduled"))
	// 状态已经变了
	err = s.entryDAO.CASStatus(t.Context(), e, "scheduled")
	assert.ErrorIs(t, err, errs.ErrDispatchConflict)

	e, err = s.entryDAO.GetByID(t.Context(), 301)
	require.NoError(t, err)
	assert.Equal(t, "sent", e.Status)
	assert.Equal(t, 3, e.Version)

	scheduled, err := s.entryDAO.ListByTaskAndStatus(t.Context(), 300, "scheduled")
	require.NoError(t, err)
	assert.Len(t, scheduled, 2)

	n, err := s.entryDAO.CountByCampaignAndStatus(t.Context(), c.ID, []string{"pending", "scheduled"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = s.entryDAO.CountByCampaignAndStatus(t.Context(), c.ID+1, []string{"pending", "scheduled"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

// MySQL 的唯一索引冲突错误码
func TestAccountDAO_CreateMySQLDuplicate(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "唯一索引冲突",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO `accounts`").
					WillReturnError(&mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
				mock.ExpectRollback()
			},
			wantErr: errs.ErrAccountDuplicate,
		},
		{
			name: "其他错误",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO `accounts`").
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sqlDB, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer sqlDB.Close()
			tc.mock(mock)

			db, err := gorm.Open(mysql.New(mysql.Config{
				Conn:                      sqlDB,
				SkipInitializeWithVersion: true,
			}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
			require.NoError(t, err)

			_, err = dao.NewAccountDAO(db).Create(t.Context(), dao.Account{Email: "a@x.com", DailyLimit: 1})
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NotErrorIs(t, err, errs.ErrAccountDuplicate)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
