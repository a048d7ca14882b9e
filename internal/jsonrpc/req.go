package JSONRPC

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/mitchellh/mapstructure"
)

type Request struct {
	Version   string      `json:"jsonrpc"`
	Params    interface{} `json:"params"`
	RequestId string      `json:"id"`
	Method    string      `json:"method"`
}

// ParseRPCBody 解析请求体里的params到目标结构并做字段校验
// 解析或校验失败直接panic JSONRPCError，由上层recover统一返回
func ParseRPCBody(ctx *fiber.Ctx, params interface{}) {
	req := new(Request)
	if er := ctx.BodyParser(req); er != nil {
		panic(NewParamsError(er))
	}
	ctx.Context().SetUserValue(X_REQUEST_ID, req.RequestId)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  params,
		TagName: "json",
	})
	if err != nil {
		panic(NewParamsError(err))
	}
	if er := decoder.Decode(req.Params); er != nil {
		panic(NewParamsError(er))
	}

	if er := validator.New().Struct(params); er != nil {
		panic(NewParamsError(er))
	}
}
