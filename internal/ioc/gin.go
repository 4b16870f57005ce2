package ioc

import (
	"github.com/chimalongy/emailsenderserverless-sub001/internal/web"
	"github.com/gotomicro/ego/server/egin"
)

func InitGinServer(handler *web.Handler) *egin.Component {
	server := egin.Load("server.http").Build()
	handler.PublicRoutes(server.Engine)
	return server
}
