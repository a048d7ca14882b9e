package dtalk

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

type DingTalkSendMsgResp struct {
	Errcode int    `json:"errcode"`
	Errmsg  string `json:"errmsg"`
}

type DtalkTextMsg struct {
	Content string `json:"content" validate:"required"`
}

type DtalkMarkdownMsg struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type DtalkMsg struct {
	Msgtype  string            `json:"msgtype"`
	Text     *DtalkTextMsg     `json:"text,omitempty"`
	Markdown *DtalkMarkdownMsg `json:"markdown,omitempty"`
}

// DTalkSendTextMsgApi 发送文本消息
func DTalkSendTextMsgApi(ctx context.Context, addr string, token string, secret string, text string) error {
	msg := &DtalkMsg{
		Msgtype: "text",
		Text:    &DtalkTextMsg{Content: text},
	}
	return sendRobotMsg(ctx, addr, token, secret, msg)
}

// DTalkSendMarkdownMsgApi 发送markdown消息
func DTalkSendMarkdownMsgApi(ctx context.Context, addr string, token string, secret string, title string, text string) error {
	msg := &DtalkMsg{
		Msgtype:  "markdown",
		Markdown: &DtalkMarkdownMsg{Title: title, Text: text},
	}
	return sendRobotMsg(ctx, addr, token, secret, msg)
}

func sendRobotMsg(ctx context.Context, addr string, token string, secret string, msg *DtalkMsg) error {
	timestamp := strconv.FormatInt(time.Now().UnixNano()/1e6, 10)

	result := DingTalkSendMsgResp{}
	resp, err := resty.New().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParams(map[string]string{
			"access_token": token,
			"timestamp":    timestamp,
			"sign":         getDingTalkRobotSign(timestamp, secret),
		}).
		SetBody(msg).
		SetResult(&result).
		Post(addr)
	if err != nil {
		return err
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("resp statusCode:%d", resp.StatusCode())
	}
	if result.Errcode != 0 {
		return fmt.Errorf("resp Errcode:%d,Errmsg:%s", result.Errcode, result.Errmsg)
	}
	return nil
}

// getDingTalkRobotSign 机器人加签
// 把timestamp+"\n"+密钥做HmacSHA256签名，Base64后再urlEncode
// https://developers.dingtalk.com/document/robots/customize-robot-security-settings
func getDingTalkRobotSign(timestamp, secret string) string {
	signMsg := fmt.Sprintf("%s\n%s", timestamp, secret)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signMsg))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(h.Sum(nil)))
}
