package domain

import (
	"testing"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestAllocation(t *testing.T) {
	t.Parallel()

	alloc := Allocation{
		{AccountID: 1, Count: 3},
		{AccountID: 2, Count: 0},
		{AccountID: 3, Count: 5},
	}
	assert.Equal(t, 8, alloc.Total())
	assert.Equal(t, 5, alloc.CountOf(3))
	assert.Equal(t, 0, alloc.CountOf(4))
	assert.Equal(t, []int64{1, 2, 3}, alloc.AccountIDs())
	assert.Equal(t, Allocation{{AccountID: 1, Count: 3}, {AccountID: 3, Count: 5}}, alloc.Compact())
	// Compact 不修改原切片
	assert.Len(t, alloc, 3)
}

func TestCampaign_Validate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		campaign Campaign
		wantErr  error
	}{
		{
			name:     "合法",
			campaign: Campaign{Name: "spring", Recipients: []string{"a@x.com", "b@x.com"}},
		},
		{
			name:     "名称为空",
			campaign: Campaign{Recipients: []string{"a@x.com"}},
			wantErr:  errs.ErrInvalidParameter,
		},
		{
			name:     "收件人为空",
			campaign: Campaign{Name: "spring"},
			wantErr:  errs.ErrInvalidParameter,
		},
		{
			name:     "收件人重复",
			campaign: Campaign{Name: "spring", Recipients: []string{"a@x.com", "a@x.com"}},
			wantErr:  errs.ErrInvalidParameter,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tc.campaign.Validate(), tc.wantErr)
		})
	}
}

func TestCampaignStatus_CanTransitTo(t *testing.T) {
	t.Parallel()

	assert.True(t, CampaignStatusDraft.CanTransitTo(CampaignStatusActive))
	assert.True(t, CampaignStatusActive.CanTransitTo(CampaignStatusPaused))
	assert.True(t, CampaignStatusPaused.CanTransitTo(CampaignStatusActive))
	assert.True(t, CampaignStatusPaused.CanTransitTo(CampaignStatusCompleted))
	assert.False(t, CampaignStatusCompleted.CanTransitTo(CampaignStatusActive))
	assert.False(t, CampaignStatusActive.CanTransitTo(CampaignStatusDraft))
}

func TestAccount_AvailableCapacity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6, Account{DailyLimit: 10, SentToday: 4}.AvailableCapacity())
	assert.Equal(t, 3, Account{DailyLimit: 10, SentToday: 4, Reserved: 3}.AvailableCapacity())
	assert.Equal(t, 0, Account{DailyLimit: 10, SentToday: 12}.AvailableCapacity())
}

func TestTask_Validate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	valid := Task{
		CampaignID:  1,
		Subject:     "hi",
		Body:        "hello",
		ScheduledAt: now.Add(time.Hour).UnixMilli(),
		SendRate:    30,
		Type:        TaskTypeNew,
	}
	assert.NoError(t, valid.Validate(now))

	past := valid
	past.ScheduledAt = now.Add(-time.Second).UnixMilli()
	assert.ErrorIs(t, past.Validate(now), errs.ErrInvalidParameter)

	sameInstant := valid
	sameInstant.ScheduledAt = now.UnixMilli()
	assert.ErrorIs(t, sameInstant.Validate(now), errs.ErrInvalidParameter)

	noRate := valid
	noRate.SendRate = 0
	assert.ErrorIs(t, noRate.Validate(now), errs.ErrInvalidParameter)

	badType := valid
	badType.Type = "blast"
	assert.ErrorIs(t, badType.Validate(now), errs.ErrInvalidParameter)
}
