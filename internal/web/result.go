package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
)

// Result 所有接口统一的返回结构，Code 为 0 表示成功
type Result[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	// Errors 校验失败时的全部原因
	Errors []string `json:"errors,omitempty"`
	Data   T        `json:"data"`
}

// wrapBody 解析 JSON 请求体之后调用 fn
func wrapBody[Req any, Resp any](fn func(ctx *gin.Context, req Req) (Resp, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req Req
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, Result[any]{
				Code: http.StatusBadRequest,
				Msg:  "请求格式错误: " + err.Error(),
			})
			return
		}
		resp, err := fn(ctx, req)
		writeResult(ctx, resp, err)
	}
}

func wrap[Resp any](fn func(ctx *gin.Context) (Resp, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		resp, err := fn(ctx)
		writeResult(ctx, resp, err)
	}
}

func writeResult[Resp any](ctx *gin.Context, resp Resp, err error) {
	if err == nil {
		ctx.JSON(http.StatusOK, Result[Resp]{Msg: "OK", Data: resp})
		return
	}
	status := statusOf(err)
	res := Result[any]{Code: status, Msg: err.Error()}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		res.Msg = "校验失败"
		for _, e := range merr.Errors {
			res.Errors = append(res.Errors, e.Error())
		}
	}
	if status == http.StatusInternalServerError {
		elog.DefaultLogger.Error("请求处理失败",
			elog.String("path", ctx.FullPath()),
			elog.FieldErr(err))
		res.Msg = "系统错误"
	}
	ctx.JSON(status, res)
}

func statusOf(err error) int {
	var merr *multierror.Error
	switch {
	case errors.As(err, &merr):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrAccountNotFound),
		errors.Is(err, errs.ErrCampaignNotFound),
		errors.Is(err, errs.ErrTaskNotFound),
		errors.Is(err, errs.ErrEntryNotFound),
		errors.Is(err, errs.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAllocationConflict),
		errors.Is(err, errs.ErrDispatchConflict),
		errors.Is(err, errs.ErrCampaignVersionMismatch),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrRecipientRemoved),
		errors.Is(err, errs.ErrAllocationFrozen),
		errors.Is(err, errs.ErrAccountDuplicate),
		errors.Is(err, errs.ErrEntryDuplicate):
		return http.StatusConflict
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrInvalidParameter),
		errors.Is(err, errs.ErrNoCapacityAvailable),
		errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, errs.ErrIncompleteAllocation),
		errors.Is(err, errs.ErrNegativeAllocation),
		errors.Is(err, errs.ErrDuplicateAllocation),
		errors.Is(err, errs.ErrAccountInactive),
		errors.Is(err, errs.ErrEmptyExpansion):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func paramID(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: ID = %q", errs.ErrInvalidParameter, ctx.Param("id"))
	}
	return id, nil
}

// page 默认取前 20 条
func page(ctx *gin.Context) (int, int, error) {
	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: offset = %q", errs.ErrInvalidParameter, ctx.Query("offset"))
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: limit = %q", errs.ErrInvalidParameter, ctx.Query("limit"))
	}
	return offset, limit, nil
}
