package domain

import (
	"fmt"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
)

// Account 发送账号，以及它当天的额度快照
type Account struct {
	ID         int64
	Email      string
	DailyLimit int  // 每日发送上限
	SentToday  int  // 今天（UTC）已经发送的数量，由外部维护
	Reserved   int  // 今天已经分配给营销活动但还没发出去的数量
	Active     bool // 是否启用
	Version    int
	Ctime      int64
	Utime      int64
}

// AvailableCapacity 剩余可分配额度
func (a Account) AvailableCapacity() int {
	return max(0, a.DailyLimit-a.SentToday-a.Reserved)
}

func (a Account) Validate() error {
	if a.Email == "" {
		return fmt.Errorf("%w: Email = %q", errs.ErrInvalidParameter, a.Email)
	}
	if a.DailyLimit <= 0 {
		return fmt.Errorf("%w: DailyLimit = %d", errs.ErrInvalidParameter, a.DailyLimit)
	}
	return nil
}

// DayLayout 额度按 UTC 自然日计算
const DayLayout = "2006-01-02"

// DayOf 返回 t 所在的 UTC 日期
func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}
