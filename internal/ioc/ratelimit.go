package ioc

import (
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/ratelimit"
	"github.com/gotomicro/ego/core/econf"
	"github.com/redis/go-redis/v9"
)

// InitManualSendLimiter 每个发送账号在 interval 内最多手动发送 rate 封
func InitManualSendLimiter(cmd redis.Cmdable) ratelimit.Limiter {
	type Config struct {
		Interval time.Duration `yaml:"interval"`
		Rate     int           `yaml:"rate"`
	}
	cfg := Config{Interval: time.Minute, Rate: 30}
	if econf.Get("entry.manualSendLimit") != nil {
		if err := econf.UnmarshalKey("entry.manualSendLimit", &cfg); err != nil {
			panic(err)
		}
	}
	return ratelimit.NewRedisSlidingWindowLimiter(cmd, cfg.Interval, cfg.Rate)
}
