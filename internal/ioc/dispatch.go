package ioc

import (
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/retry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/dispatch"
	"github.com/ecodeclub/mq-api"
	"github.com/gotomicro/ego/core/econf"
)

func InitDispatchClient(q mq.MQ) dispatch.Client {
	cfg := dispatch.DefaultBreakerConfig()
	if econf.Get("dispatch.breaker") != nil {
		if err := econf.UnmarshalKey("dispatch.breaker", &cfg); err != nil {
			panic(err)
		}
	}
	client, err := dispatch.NewMQClient(q)
	if err != nil {
		panic(err)
	}
	return dispatch.NewBreakerClient(client, cfg)
}

// InitRetryConfig 提交分配和移除收件人遇到 CAS 冲突时的重试
func InitRetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	if econf.Get("allocation.commitRetry") != nil {
		if err := econf.UnmarshalKey("allocation.commitRetry", &cfg); err != nil {
			panic(err)
		}
	}
	return cfg
}
