package main

import (
	"fmt"
	"log"
	"testing"

	config "wealth-stock-data-service/conf"
)

func TestMain(t *testing.T) {
	fmt.Println("=== 简化配置测试 ===")

	// 1. 初始化配置
	config.InitFromLocalFile("config", "yaml")
	fmt.Println("✓ 配置初始化完成")

	// 2. 验证配置
	err := config.ValidateConfig()
	if err != nil {
		log.Fatalf("配置验证失败: %v", err)
	}
	fmt.Println("✓ 配置验证通过")

	// 3. 打印配置摘要
	config.PrintConfigSummary()

	// 4. 测试各项配置
	testConfigurations(t)

	fmt.Println("=== 配置测试完成 ===")
}

// TestConfigDetails 测试配置详细信息
func TestConfigDetails(t *testing.T) {
	// 初始化配置
	config.InitFromLocalFile("config", "yaml")

	// 测试各项配置
	testConfigurations(t)
}

func testConfigurations(t *testing.T) {
	fmt.Println("\n=== 详细配置信息 ===")

	// 测试行情库配置
	fmt.Println("\n1. 行情库配置:")
	dbCfg := config.GetStockDBConfig()

	// 验证配置值
	if dbCfg.Driver == "" {
		t.Error("行情库驱动不能为空")
	}
	if dbCfg.Driver == "sqlite" && dbCfg.Path == "" {
		t.Error("sqlite行情库路径不能为空")
	}

	fmt.Printf("   - 驱动: %s\n", dbCfg.Driver)
	fmt.Printf("   - sqlite路径: %s\n", dbCfg.Path)
	fmt.Printf("   - mysql地址: %s:%d/%s\n", dbCfg.Host, dbCfg.Port, dbCfg.Schema)
	fmt.Printf("   - 最大空闲连接: %d\n", dbCfg.MaxIdleConn)
	fmt.Printf("   - 最大打开连接: %d\n", dbCfg.MaxOpenConn)

	// 测试批量抓取配置
	fmt.Println("\n2. 批量抓取配置:")
	crawler := config.GetCrawlerConfig()

	// 验证配置值
	if crawler.WorkerNum <= 0 {
		t.Error("抓取并发数必须大于0")
	}
	if crawler.DetailTimeoutSec <= 0 {
		t.Error("详情子进程超时时间必须大于0")
	}
	if crawler.NewsTimeoutSec <= 0 {
		t.Error("新闻子进程超时时间必须大于0")
	}
	if crawler.PythonBin == "" {
		t.Error("python解释器不能为空")
	}

	fmt.Printf("   - 并发抓取数: %d\n", crawler.WorkerNum)
	fmt.Printf("   - 批次冷却: %d秒\n", crawler.BatchCooldownSec)
	fmt.Printf("   - 详情超时: %d秒\n", crawler.DetailTimeoutSec)
	fmt.Printf("   - 新闻超时: %d秒\n", crawler.NewsTimeoutSec)
	fmt.Printf("   - 排行接口超时: %d秒\n", crawler.RankingTimeoutSec)
	fmt.Printf("   - 排除前缀: %v\n", crawler.ExcludedPrefixes)
	fmt.Printf("   - A股详情脚本: %s\n", crawler.AShareScript)
	fmt.Printf("   - 港股详情脚本: %s\n", crawler.HKShareScript)
	fmt.Printf("   - 新闻脚本: %s\n", crawler.NewsScript)

	// 测试Fiber服务器配置
	fmt.Println("\n3. Fiber服务器配置:")
	fiberCfg := config.GetFiberConfig()

	// 验证配置值
	if fiberCfg.Port <= 0 {
		t.Error("服务端口必须大于0")
	}

	fmt.Printf("   - 端口: %d\n", fiberCfg.Port)
	fmt.Printf("   - 读超时: %d秒\n", fiberCfg.ReadTimeout)
	fmt.Printf("   - 写超时: %d秒\n", fiberCfg.WriteTimeout)
	fmt.Printf("   - 空闲超时: %d秒\n", fiberCfg.IdleTimeout)

	// 测试文件导出配置
	fmt.Println("\n4. 文件导出配置:")
	exportConfig := config.GetExportConfig()

	// 验证配置值
	if exportConfig.Path == "" {
		t.Error("文件导出路径不能为空")
	}
	if exportConfig.RetentionDays <= 0 {
		t.Error("文件保留天数必须大于0")
	}

	fmt.Printf("   - 导出路径: %s\n", exportConfig.Path)
	fmt.Printf("   - URL前缀: %s\n", exportConfig.URLPrefix)
	fmt.Printf("   - 文件保留天数: %d\n", exportConfig.RetentionDays)

	t.Log("所有配置测试通过")
}
