package config

import (
	"sync"

	"github.com/spf13/viper"
)

type APPConfig struct {
	ApplVer string `yaml:"appVer"`
	Mode    string `yaml:"mode"`
	Addr    string `yaml:"addr"`
	Prefork bool   `yaml:"prefork"`
}

func GetCfg(key string, cfg interface{}) error {
	if key == "" {
		return viper.Unmarshal(cfg)
	}
	sub := viper.Sub(key)
	if sub == nil {
		// 配置文件缺该节点时保留代码内默认值
		return nil
	}
	return sub.Unmarshal(cfg)
}

func GetCfgStr(key string) string {
	return viper.GetString(key)
}

type LogCfg struct {
	Path  string `json:"path"`
	Level string `json:"level"`
	Size  int    `json:"size"`
	Count int    `json:"count"`
}

var (
	logCfg     *LogCfg
	onceLogCfg sync.Once
)

func GetLogCfg() *LogCfg {
	onceLogCfg.Do(func() {
		logCfg = &LogCfg{
			Path:  "./logs/stock_crawler.log",
			Level: "info",
			Size:  50,
			Count: 5,
		}
		_ = GetCfg("log", logCfg)
	})
	return logCfg
}

type OssConfig struct {
	Url     string `yaml:"url"`     // OSS上传服务地址
	Timeout int    `yaml:"timeout"` // 上传超时(秒)
}

var (
	ossConfig     *OssConfig
	onceOssConfig sync.Once
)

func GetOssConfig() *OssConfig {
	onceOssConfig.Do(func() {
		ossConfig = &OssConfig{
			Timeout: 30,
		}
		_ = GetCfg("oss", ossConfig)
	})
	return ossConfig
}
