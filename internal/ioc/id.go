package ioc

import (
	"time"

	"github.com/gotomicro/ego/core/econf"
	"github.com/sony/sonyflake"
)

func InitIDGenerator() *sonyflake.Sonyflake {
	type Config struct {
		StartTime time.Time `yaml:"startTime"`
		// 多实例部署时每个实例必须不同
		MachineID uint16 `yaml:"machineId"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("idGenerator", &cfg); err != nil {
		panic(err)
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	st := sonyflake.Settings{StartTime: cfg.StartTime}
	if cfg.MachineID > 0 {
		st.MachineID = func() (uint16, error) {
			return cfg.MachineID, nil
		}
	}
	gen := sonyflake.NewSonyflake(st)
	if gen == nil {
		panic("初始化 ID 生成器失败")
	}
	return gen
}
