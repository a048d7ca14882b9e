package oss

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

type OssInfo struct {
	Url     string `yaml:"url"`     // OSS上传服务的URL
	Timeout int    `yaml:"timeout"` // 超时时间（秒）
}

// UploadFile 以multipart表单把本地文件上传到OSS服务
// filePath: 文件完整路径
// fileName: 上传后的文件名称
// 返回OSS服务响应内容（一般为文件ID或下载地址）
func UploadFile(filePath, fileName string, ossInfo *OssInfo) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	timeout := time.Duration(ossInfo.Timeout) * time.Second
	if ossInfo.Timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().SetTimeout(timeout)
	resp, err := client.R().
		SetFileReader("file", fileName, file).
		Post(ossInfo.Url)
	if err != nil {
		return "", fmt.Errorf("发送HTTP请求失败: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OSS服务返回错误状态: %d", resp.StatusCode())
	}

	return resp.String(), nil
}
