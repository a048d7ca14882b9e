package config

import (
	"sync"
)

// StockDBConfig 行情库配置，默认本地sqlite，支持切mysql
type StockDBConfig struct {
	Driver          string `yaml:"driver"`          // sqlite / mysql
	Path            string `yaml:"path"`            // sqlite库文件路径
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Schema          string `yaml:"schema"`
	MaxIdleConn     int    `yaml:"maxIdleConn"`
	MaxOpenConn     int    `yaml:"maxOpenConn"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"`
}

// CrawlerConfig 批量抓取配置
type CrawlerConfig struct {
	WorkerNum         int      `yaml:"workerNum"`         // 并发抓取进程数，也是单批大小
	BatchCooldownSec  int      `yaml:"batchCooldownSec"`  // 批次间冷却时间(秒)
	DetailTimeoutSec  int      `yaml:"detailTimeoutSec"`  // 单只股票财务详情子进程超时(秒)
	NewsTimeoutSec    int      `yaml:"newsTimeoutSec"`    // 新闻子进程超时(秒)
	RankingTimeoutSec int      `yaml:"rankingTimeoutSec"` // 排行接口HTTP超时(秒)
	ExcludedPrefixes  []string `yaml:"excludedPrefixes"`  // 跳过不抓的代码前缀
	PythonBin         string   `yaml:"pythonBin"`         // python解释器
	AShareScript      string   `yaml:"aShareScript"`      // A股详情抓取脚本
	HKShareScript     string   `yaml:"hkShareScript"`     // 港股详情抓取脚本
	NewsScript        string   `yaml:"newsScript"`        // 新闻抓取脚本
}

// FiberConfig Fiber服务器配置
type FiberConfig struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"readTimeout"`
	WriteTimeout int `yaml:"writeTimeout"`
	IdleTimeout  int `yaml:"idleTimeout"`
}

// ExportConfig 文件导出配置
type ExportConfig struct {
	Path          string `yaml:"path"`
	URLPrefix     string `yaml:"urlPrefix"`
	RetentionDays int    `yaml:"retentionDays"`
}

var (
	stockDBConfig     *StockDBConfig
	onceStockDBConfig sync.Once

	crawlerConfig     *CrawlerConfig
	onceCrawlerConfig sync.Once

	fiberConfig     *FiberConfig
	onceFiberConfig sync.Once

	exportConfig     *ExportConfig
	onceExportConfig sync.Once
)

// GetStockDBConfig 获取行情库配置
func GetStockDBConfig() *StockDBConfig {
	onceStockDBConfig.Do(func() {
		stockDBConfig = &StockDBConfig{
			Driver:          "sqlite",
			Path:            "./db/stock_data.db",
			Host:            "localhost",
			Port:            3306,
			User:            "root",
			Password:        "password",
			Schema:          "stock_data_db",
			MaxIdleConn:     5,
			MaxOpenConn:     20,
			ConnMaxLifetime: 300,
		}
		_ = GetCfg("stockDB", stockDBConfig)
	})
	return stockDBConfig
}

// GetCrawlerConfig 获取批量抓取配置
func GetCrawlerConfig() *CrawlerConfig {
	onceCrawlerConfig.Do(func() {
		crawlerConfig = &CrawlerConfig{
			WorkerNum:         3,
			BatchCooldownSec:  60,
			DetailTimeoutSec:  90,
			NewsTimeoutSec:    60,
			RankingTimeoutSec: 10,
			ExcludedPrefixes:  []string{"688"},
			PythonBin:         "python3",
			AShareScript:      "fetchers/stock_details_fetcher.py",
			HKShareScript:     "fetchers/hk_details_fetcher.py",
			NewsScript:        "fetchers/news_fetcher.py",
		}
		_ = GetCfg("crawler", crawlerConfig)
	})
	return crawlerConfig
}

// GetFiberConfig 获取Fiber服务器配置
func GetFiberConfig() *FiberConfig {
	onceFiberConfig.Do(func() {
		fiberConfig = &FiberConfig{
			Port:         8080,
			ReadTimeout:  10,
			WriteTimeout: 30,
			IdleTimeout:  120,
		}
		_ = GetCfg("fiber", fiberConfig)
	})
	return fiberConfig
}

// GetExportConfig 获取文件导出配置
func GetExportConfig() *ExportConfig {
	onceExportConfig.Do(func() {
		exportConfig = &ExportConfig{
			Path:          "./export/stock_data",
			URLPrefix:     "http://localhost:8081/download",
			RetentionDays: 7,
		}
		_ = GetCfg("export", exportConfig)
	})
	return exportConfig
}
