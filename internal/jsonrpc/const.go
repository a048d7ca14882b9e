package JSONRPC

const (
	JSON_RPC_VERSION = "2.0"
	X_REQUEST_ID     = "X-request-id"
	X_SOURCE         = "X-source"
	X_RETCODE        = "X-retcode"
)
