package config

import (
	"log"

	"github.com/spf13/viper"
)

func InitFromLocalFile(fileName, fileType string) {
	viper.AddConfigPath("./conf/")     // 配置文件在 conf 目录下
	viper.AddConfigPath("/data/conf")  // 生产环境路径
	viper.AddConfigPath("../conf")     // 从cmd目录启动时的备用路径
	viper.AddConfigPath("../../conf")  // 备用路径
	viper.SetConfigType(fileType)
	viper.SetConfigName(fileName)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// 没有配置文件就用代码内默认值跑
			log.Printf("未找到配置文件 %s.%s，使用内置默认配置", fileName, fileType)
			return
		}
		log.Fatalf("readInConfig err:%s", err.Error())
	}
}
