package JSONRPC

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Response JSONRPC 2.0响应壳，result和error互斥
type Response struct {
	Version   string        `json:"jsonrpc"`
	RequestId string        `json:"id"`
	Data      interface{}   `json:"result,omitempty"`
	Error     *JSONRPCError `json:"error,omitempty"`
}

// requestID 取ParseRPCBody阶段记下的请求id，取不到回空串
func requestID(ctx *fiber.Ctx) string {
	if v, ok := ctx.Context().UserValue(X_REQUEST_ID).(string); ok {
		return v
	}
	return ""
}

// OK 按请求id回写成功结果
func OK(ctx *fiber.Ctx, data interface{}) error {
	return ctx.JSON(Response{
		Version:   JSON_RPC_VERSION,
		RequestId: requestID(ctx),
		Data:      data,
	})
}

// Error 把错误归一成JSONRPCError回写，错误码同时带在响应头里
func Error(ctx *fiber.Ctx, err error) error {
	e := RPCError(err)
	ctx.Set(X_RETCODE, strconv.Itoa(e.Code))
	return ctx.JSON(Response{
		Version:   JSON_RPC_VERSION,
		RequestId: requestID(ctx),
		Error:     e,
	})
}
