package ioc

import (
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/ego-component/egorm"
)

func InitDB() *egorm.Component {
	db := egorm.Load("mysql").Build()
	if err := dao.InitTables(db); err != nil {
		panic(err)
	}
	return db
}
