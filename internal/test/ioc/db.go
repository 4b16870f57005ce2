package ioc

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/ego-component/egorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// InitDBAndTables 每个测试一个独立的内存 SQLite 库，表已经建好
func InitDBAndTables(t testing.TB) *egorm.Component {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取连接池失败: %v", err)
	}
	// 内存库只有一个连接时才不会出现 database is locked
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err = dao.InitTables(db); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}
