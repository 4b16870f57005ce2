package dispatch

import (
	"context"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
)

// Client 外部投递服务。投递服务负责按 SendRate 控制节奏、真正发出邮件，
// 并通过回调事件把结果告诉我们
//
//go:generate mockgen -source=./client.go -destination=./mocks/client.mock.go -package=dispatchmocks -typed Client
type Client interface {
	// Schedule 把整个任务的队列条目按顺序交给投递服务
	Schedule(ctx context.Context, req domain.DispatchRequest) error
	// SendNow 立即发送一个条目，返回 nil 表示投递服务已经接收
	SendNow(ctx context.Context, entry domain.QueueEntry) error
}
