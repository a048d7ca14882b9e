package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	config "wealth-stock-data-service/conf"
	"wealth-stock-data-service/fetcher"
	"wealth-stock-data-service/internal/dataSource"
	"wealth-stock-data-service/pkg/dtalk"
	logger "wealth-stock-data-service/pkg/log"
	"wealth-stock-data-service/service"
)

const appName = "wealth-stock-data-service"

// 批量抓取入口：刷新股票目录，差集查出缺数据的股票，分批抓取入库
func main() {
	fmt.Println("--- 开始执行批量抓取任务 ---")

	// 1. 初始化配置
	if err := config.InitConfig(appName); err != nil {
		fmt.Fprintf(os.Stderr, "初始化配置失败: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "配置校验失败: %v\n", err)
		os.Exit(1)
	}
	config.PrintConfigSummary()

	// 2. 初始化日志
	logCfg := config.GetLogCfg()
	logger.SetLog(logCfg.Path, logCfg.Level)
	logger.SetLogMaxSize(logCfg.Size * 1024 * 1024)
	logger.SetLogMaxFileNum(logCfg.Count)

	// 3. 打开行情库并建表
	conn, err := dataSource.GetStockDBConn()
	if err != nil {
		fmt.Fprintf(os.Stderr, "连接行情库失败: %v\n", err)
		os.Exit(1)
	}
	if err := dataSource.EnsureTables(conn); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	crawlerCfg := config.GetCrawlerConfig()

	// 4. 刷新股票目录
	rankingCli := fetcher.NewRankingClient(time.Duration(crawlerCfg.RankingTimeoutSec) * time.Second)
	catalog := service.NewCatalogService(conn, rankingCli)
	catalog.UpdateStockList(ctx)

	// 5. 差集查询出还没有财务数据的股票
	pending, err := catalog.PendingStocks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// 6. 分批抓取
	crawler := service.NewCrawlService(conn, crawlerCfg)
	tally := crawler.Run(ctx, pending)

	// 7. 钉钉播报执行结果
	notifyTally(ctx, tally)

	fmt.Println("\n--- 批量抓取任务执行完毕 ---")
}

// notifyTally 抓取结果播报到钉钉群，未配置机器人时跳过
func notifyTally(ctx context.Context, tally service.CrawlTally) {
	if config.GetCfgStr("dtalk.server") == "" {
		return
	}

	runID := uuid.New().String()[:8]
	text := fmt.Sprintf("### 股票数据批量抓取完成\n- 任务ID: %s\n- 处理总数: %d\n- 成功: %d\n- 跳过: %d\n- 失败: %d",
		runID, tally.Total(), tally.Success, tally.Skipped, tally.Failed)

	if err := dtalk.DTalkSendMarkdownMsg(ctx, "批量抓取结果", text); err != nil {
		logger.Error("发送钉钉通知失败: %v", err)
	}
}
