package JSONRPC

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonSnap = jsoniter.ConfigCompatibleWithStandardLibrary

type ErrData struct {
	Msg string `json:"msg,omitempty"`
}

type JSONRPCError struct {
	Code    int      `json:"code,omitempty"`
	Message string   `json:"message,omitempty"`
	Data    *ErrData `json:"data,omitempty"`
}

func (e JSONRPCError) Error() string {
	b, _ := jsonSnap.Marshal(&e)
	return string(b)
}

// RPCError 把任意error归一成JSONRPCError
func RPCError(e error) *JSONRPCError {
	if e == nil {
		return &JSONRPCError{Code: 303500, Message: "unknown error"}
	}
	if er, ok := e.(JSONRPCError); ok {
		return &er
	}
	if er, ok := e.(*JSONRPCError); ok {
		return er
	}
	return &JSONRPCError{Code: 303000, Message: "service error", Data: &ErrData{Msg: e.Error()}}
}

var (
	NO_DATA_ERROR = JSONRPCError{Code: 302000, Message: "no data"}
	PARAMS_ERROR  = JSONRPCError{Code: 301000, Message: "params error"}
)

func NewParamsError(er error) JSONRPCError {
	return JSONRPCError{Code: 301000, Message: "params error", Data: &ErrData{Msg: er.Error()}}
}

func NewServiceError(er error) JSONRPCError {
	return JSONRPCError{Code: 303000, Message: "service error", Data: &ErrData{Msg: er.Error()}}
}

func NewNoDataError(er error) JSONRPCError {
	return JSONRPCError{Code: 302000, Message: "no data", Data: &ErrData{Msg: er.Error()}}
}
