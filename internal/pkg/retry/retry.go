package retry

import (
	"fmt"
	"time"

	"github.com/ecodeclub/ekit/retry"
)

type Config struct {
	Type               string                    `json:"type" yaml:"type"` // fixed 或 exponential
	FixedInterval      *FixedIntervalConfig      `json:"fixedInterval" yaml:"fixedInterval"`
	ExponentialBackoff *ExponentialBackoffConfig `json:"exponentialBackoff" yaml:"exponentialBackoff"`
}

type ExponentialBackoffConfig struct {
	// 初始重试间隔 单位ms
	InitialInterval int `json:"initialInterval" yaml:"initialInterval"`
	// 最大重试间隔 单位ms
	MaxInterval int `json:"maxInterval" yaml:"maxInterval"`
	// 最大重试次数
	MaxRetries int32 `json:"maxRetries" yaml:"maxRetries"`
}

type FixedIntervalConfig struct {
	MaxRetries int32 `json:"maxRetries" yaml:"maxRetries"`
	// 单位ms
	Interval int `json:"interval" yaml:"interval"`
}

// DefaultConfig 提交分配、更新收件人这类 CAS 冲突的默认重试
func DefaultConfig() Config {
	return Config{
		Type: "exponential",
		ExponentialBackoff: &ExponentialBackoffConfig{
			InitialInterval: 10,
			MaxInterval:     200,
			MaxRetries:      3,
		},
	}
}

// NewRetry 每次重试流程都要新建一个，策略对象本身带着重试次数的状态
func NewRetry(cfg Config) (retry.Strategy, error) {
	switch cfg.Type {
	case "fixed":
		if cfg.FixedInterval == nil {
			return nil, fmt.Errorf("缺少 fixedInterval 配置")
		}
		return retry.NewFixedIntervalRetryStrategy(msToDuration(cfg.FixedInterval.Interval), cfg.FixedInterval.MaxRetries)
	case "exponential":
		if cfg.ExponentialBackoff == nil {
			return nil, fmt.Errorf("缺少 exponentialBackoff 配置")
		}
		return retry.NewExponentialBackoffRetryStrategy(
			msToDuration(cfg.ExponentialBackoff.InitialInterval),
			msToDuration(cfg.ExponentialBackoff.MaxInterval),
			cfg.ExponentialBackoff.MaxRetries)
	default:
		return nil, fmt.Errorf("unknown retry type: %s", cfg.Type)
	}
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
