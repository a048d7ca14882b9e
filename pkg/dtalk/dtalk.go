package dtalk

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
)

// DTalkSendTextMsg 用配置里的机器人发送文本消息
func DTalkSendTextMsg(ctx context.Context, content string) error {
	addr := fmt.Sprintf("%s/robot/send", viper.GetString("dtalk.server"))
	token := viper.GetString("dtalk.accesstoken")
	secret := viper.GetString("dtalk.secret")

	if len(viper.GetString("dtalk.server")) == 0 || len(token) == 0 || len(secret) == 0 {
		return fmt.Errorf("param error")
	}
	return DTalkSendTextMsgApi(ctx, addr, token, secret, content)
}

// DTalkSendMarkdownMsg 用配置里的机器人发送markdown消息
func DTalkSendMarkdownMsg(ctx context.Context, title string, content string) error {
	addr := fmt.Sprintf("%s/robot/send", viper.GetString("dtalk.server"))
	token := viper.GetString("dtalk.accesstoken")
	secret := viper.GetString("dtalk.secret")

	if len(viper.GetString("dtalk.server")) == 0 || len(token) == 0 || len(secret) == 0 {
		return fmt.Errorf("param error")
	}
	return DTalkSendMarkdownMsgApi(ctx, addr, token, secret, title, content)
}
