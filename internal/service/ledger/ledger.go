package ledger

import (
	"context"
	"fmt"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	"github.com/gotomicro/ego/core/elog"
)

// Service 发送账号的额度账本
type Service interface {
	CreateAccount(ctx context.Context, acc domain.Account) (domain.Account, error)
	GetAccount(ctx context.Context, id int64) (domain.Account, error)
	ListAccounts(ctx context.Context, offset, limit int) ([]domain.Account, error)
	SetActive(ctx context.Context, id int64, active bool) error
	// Snapshot 读取最新的额度快照。ids 为空时返回所有启用的账号，否则按 ids 的顺序返回，
	// 不存在的账号直接跳过，交给调用方判断
	Snapshot(ctx context.Context, ids []int64) ([]domain.Account, error)
	// RecordSent 一封邮件发送成功，计入当天的发送量并释放一个预占额度
	RecordSent(ctx context.Context, accountID int64) error
	// Release 释放预占额度，比如收件人被移除
	Release(ctx context.Context, accountID int64, n int) error
}

type service struct {
	repo   repository.AccountRepository
	logger *elog.Component
}

func NewService(repo repository.AccountRepository) Service {
	return &service{
		repo:   repo,
		logger: elog.DefaultLogger,
	}
}

func (s *service) CreateAccount(ctx context.Context, acc domain.Account) (domain.Account, error) {
	if err := acc.Validate(); err != nil {
		return domain.Account{}, err
	}
	return s.repo.Create(ctx, acc)
}

func (s *service) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListAccounts(ctx context.Context, offset, limit int) ([]domain.Account, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset = %d, limit = %d", errs.ErrInvalidParameter, offset, limit)
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.UpdateActive(ctx, id, active)
}

func (s *service) Snapshot(ctx context.Context, ids []int64) ([]domain.Account, error) {
	if len(ids) == 0 {
		return s.repo.ListActive(ctx)
	}
	return s.repo.FindByIDs(ctx, ids)
}

func (s *service) RecordSent(ctx context.Context, accountID int64) error {
	err := s.repo.RecordSent(ctx, accountID)
	if err != nil {
		s.logger.Error("记录发送量失败",
			elog.Int64("accountID", accountID),
			elog.FieldErr(err))
	}
	return err
}

func (s *service) Release(ctx context.Context, accountID int64, n int) error {
	if n <= 0 {
		return nil
	}
	return s.repo.ReleaseReservation(ctx, accountID, n)
}
