package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	config "wealth-stock-data-service/conf"
	"wealth-stock-data-service/internal/dataSource"
	logger "wealth-stock-data-service/pkg/log"
	"wealth-stock-data-service/router"
	"wealth-stock-data-service/service"
)

const appName = "wealth-stock-data-service"

// 查询服务入口：对外提供实时详情、快照、新闻、排行和导出接口
func main() {
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
		log.Fatalf("连接行情库失败: %v", err)
	}
	if err := dataSource.EnsureTables(conn); err != nil {
		log.Fatalf("%v", err)
	}

	// 4. 组装HTTP服务
	fiberCfg := config.GetFiberConfig()
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  time.Duration(fiberCfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(fiberCfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(fiberCfg.IdleTimeout) * time.Second,
	})

	queryService := service.NewStockQueryService(conn, config.GetCrawlerConfig())
	handler := router.NewStockQueryHandler(queryService)
	handler.RegisterRoutes(app)

	// 5. 每日定时导出，导出目录同时挂成静态下载路径
	exportCfg := config.GetExportConfig()
	exporter := service.NewScheduledExportService(conn)
	exporter.StartDailyExport(exportCfg.Path)
	app.Static("/download", exportCfg.Path)

	// 6. 启动监听
	errCh := make(chan error, 1)
	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", fiberCfg.Port)); err != nil {
			errCh <- err
		}
	}()
	log.Printf("%s 已启动，监听端口 %d", appName, fiberCfg.Port)

	// 7. 等待退出信号，优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Println("收到退出信号，准备关闭服务...")
	case err := <-errCh:
		log.Fatalf("HTTP服务异常退出: %v", err)
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("关闭HTTP服务失败: %v", err)
	}
	log.Println("服务已退出")
}
