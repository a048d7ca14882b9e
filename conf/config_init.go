package config

import (
	"fmt"
	"log"
)

// InitConfig 初始化配置，支持从nacos读取，降级到本地yaml
func InitConfig(appName string) error {
	// 1. 首先尝试从本地文件初始化基础配置
	InitFromLocalFile("config", "yaml")

	// 2. 尝试初始化nacos客户端
	err := NewNacosClientInsFromEnv(appName)
	if err != nil {
		log.Printf("初始化nacos客户端失败，将使用本地配置: %v", err)
		return nil // 不返回错误，继续使用本地配置
	}

	// 3. 尝试从nacos读取各项配置
	initConfigFromNacos()

	return nil
}

// initConfigFromNacos 从nacos读取配置，如果失败则使用本地yaml配置
func initConfigFromNacos() {
	for configKey, nacosKey := range NacosKeys {
		err := GetViperCfgFromNacos(nacosKey, configKey, "yaml")
		if err != nil {
			log.Printf("从nacos读取%s配置失败，使用本地配置: %v", configKey, err)
		} else {
			log.Printf("成功从nacos读取%s配置", configKey)
		}
	}
}

// PrintConfigSummary 打印配置摘要信息
func PrintConfigSummary() {
	fmt.Println("=== 配置摘要 ===")

	// 行情库配置摘要
	dbCfg := GetStockDBConfig()
	if dbCfg.Driver == "sqlite" {
		fmt.Printf("行情库: sqlite (%s)\n", dbCfg.Path)
	} else {
		fmt.Printf("行情库: %s (%s:%d/%s)\n", dbCfg.Driver, dbCfg.Host, dbCfg.Port, dbCfg.Schema)
	}

	// 抓取配置摘要
	crawler := GetCrawlerConfig()
	fmt.Printf("批量抓取: 并发=%d, 批次冷却=%d秒, 详情超时=%d秒, 新闻超时=%d秒\n",
		crawler.WorkerNum, crawler.BatchCooldownSec, crawler.DetailTimeoutSec, crawler.NewsTimeoutSec)
	fmt.Printf("排除前缀: %v\n", crawler.ExcludedPrefixes)

	// 文件导出配置摘要
	exportCfg := GetExportConfig()
	fmt.Printf("文件导出: 路径=%s, 保留天数=%d\n", exportCfg.Path, exportCfg.RetentionDays)

	fmt.Println("===============")
}

// ValidateConfig 验证配置的有效性
func ValidateConfig() error {
	// 验证行情库配置
	dbCfg := GetStockDBConfig()
	switch dbCfg.Driver {
	case "sqlite":
		if dbCfg.Path == "" {
			return fmt.Errorf("sqlite行情库路径不能为空")
		}
	case "mysql":
		if dbCfg.Host == "" || dbCfg.Schema == "" {
			return fmt.Errorf("mysql行情库配置无效")
		}
	default:
		return fmt.Errorf("不支持的行情库驱动: %s", dbCfg.Driver)
	}

	// 验证抓取配置
	crawler := GetCrawlerConfig()
	if crawler.WorkerNum <= 0 {
		return fmt.Errorf("抓取并发数必须大于0")
	}
	if crawler.BatchCooldownSec < 0 {
		return fmt.Errorf("批次冷却时间不能为负")
	}
	if crawler.DetailTimeoutSec <= 0 || crawler.NewsTimeoutSec <= 0 {
		return fmt.Errorf("子进程超时时间必须大于0")
	}
	if crawler.PythonBin == "" || crawler.AShareScript == "" || crawler.HKShareScript == "" {
		return fmt.Errorf("详情抓取脚本配置无效")
	}

	// 验证文件导出配置
	exportCfg := GetExportConfig()
	if exportCfg.Path == "" {
		return fmt.Errorf("文件导出配置无效")
	}

	return nil
}
