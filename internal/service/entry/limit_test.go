package entry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/entry"
	entrymocks "github.com/chimalongy/emailsenderserverless-sub001/internal/service/entry/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type limiterFunc func(ctx context.Context, key string) (bool, error)

func (f limiterFunc) Limit(ctx context.Context, key string) (bool, error) {
	return f(ctx, key)
}

func TestLimitedService(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mock    func(ctrl *gomock.Controller) entry.Service
		limiter limiterFunc
		wantErr error
	}{
		{
			name: "放行",
			mock: func(ctrl *gomock.Controller) entry.Service {
				svc := entrymocks.NewMockService(ctrl)
				svc.EXPECT().Get(gomock.Any(), int64(1)).Return(domain.QueueEntry{ID: 1, AccountID: 7}, nil)
				svc.EXPECT().SendNow(gomock.Any(), int64(1)).Return(domain.QueueEntry{ID: 1, Status: domain.EntryStatusSent}, nil)
				return svc
			},
			limiter: func(_ context.Context, key string) (bool, error) {
				assert.Equal(t, "manual_send:7", key)
				return false, nil
			},
		},
		{
			name: "限流",
			mock: func(ctrl *gomock.Controller) entry.Service {
				svc := entrymocks.NewMockService(ctrl)
				svc.EXPECT().Get(gomock.Any(), int64(1)).Return(domain.QueueEntry{ID: 1, AccountID: 7}, nil)
				return svc
			},
			limiter: func(context.Context, string) (bool, error) {
				return true, nil
			},
			wantErr: errs.ErrRateLimited,
		},
		{
			name: "限流器出错时放行",
			mock: func(ctrl *gomock.Controller) entry.Service {
				svc := entrymocks.NewMockService(ctrl)
				svc.EXPECT().Get(gomock.Any(), int64(1)).Return(domain.QueueEntry{ID: 1, AccountID: 7}, nil)
				svc.EXPECT().SendNow(gomock.Any(), int64(1)).Return(domain.QueueEntry{ID: 1, Status: domain.EntryStatusSent}, nil)
				return svc
			},
			limiter: func(context.Context, string) (bool, error) {
				return false, errors.New("mock redis error")
			},
		},
		{
			name: "条目不存在",
			mock: func(ctrl *gomock.Controller) entry.Service {
				svc := entrymocks.NewMockService(ctrl)
				svc.EXPECT().Get(gomock.Any(), int64(1)).Return(domain.QueueEntry{}, errs.ErrEntryNotFound)
				return svc
			},
			limiter: func(context.Context, string) (bool, error) {
				t.Error("不应该检查限流")
				return false, nil
			},
			wantErr: errs.ErrEntryNotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			svc := entry.NewLimitedService(tc.mock(ctrl), tc.limiter)
			_, err := svc.SendNow(t.Context(), 1)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLimitedService_Resend(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mock := entrymocks.NewMockService(ctrl)
	mock.EXPECT().Get(gomock.Any(), int64(2)).Return(domain.QueueEntry{ID: 2, AccountID: 3}, nil)
	svc := entry.NewLimitedService(mock, limiterFunc(func(context.Context, string) (bool, error) {
		return true, nil
	}))
	_, err := svc.Resend(t.Context(), 2)
	assert.ErrorIs(t, err, errs.ErrRateLimited)
}
