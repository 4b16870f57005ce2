package dao

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONColumn 把任意类型以 JSON 的形式存在一列里，实现 Value() 和 Scan()
type JSONColumn[T any] struct {
	Val   T
	Valid bool
}

func NewJSONColumn[T any](val T) JSONColumn[T] {
	return JSONColumn[T]{Val: val, Valid: true}
}

// Value 实现 driver.Valuer 接口
func (j JSONColumn[T]) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	bytes, err := json.Marshal(j.Val)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan 实现 sql.Scanner 接口
func (j *JSONColumn[T]) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		var zero T
		j.Val, j.Valid = zero, false
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("JSON 字段不支持的类型 %T", value)
	}
	if err := json.Unmarshal(raw, &j.Val); err != nil {
		return fmt.Errorf("解析 JSON 字段失败: %w", err)
	}
	j.Valid = true
	return nil
}
