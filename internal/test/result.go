package test

import (
	"encoding/json"
	"net/http/httptest"
)

// Result 和 web.Result 的 JSON 结构保持一致，测试里用来反序列化响应
type Result[T any] struct {
	Code   int      `json:"code"`
	Msg    string   `json:"msg"`
	Errors []string `json:"errors"`
	Data   T        `json:"data"`
}

type JSONResponseRecorder[T any] struct {
	*httptest.ResponseRecorder
}

func NewJSONResponseRecorder[T any]() JSONResponseRecorder[T] {
	return JSONResponseRecorder[T]{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

// MustScan 响应不是合法的 JSON 就直接 panic
func (r JSONResponseRecorder[T]) MustScan() Result[T] {
	var res Result[T]
	err := json.NewDecoder(r.Body).Decode(&res)
	if err != nil {
		panic(err)
	}
	return res
}
