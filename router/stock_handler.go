package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	JSONRPC "wealth-stock-data-service/internal/jsonrpc"
	"wealth-stock-data-service/service"
)

// StockDetailParam 实时详情查询参数
type StockDetailParam struct {
	StockCode  string `json:"stockCode" query:"stockCode" validate:"required"`
	MarketName string `json:"marketName" query:"marketName" validate:"required"`
}

// StockSnapshotParam 快照查询参数
type StockSnapshotParam struct {
	StockCode string `json:"stockCode" query:"stockCode" validate:"required"`
}

// StockNewsParam 新闻查询参数
type StockNewsParam struct {
	StockCode string `json:"stockCode" query:"stockCode" validate:"required"`
	Limit     int    `json:"limit" query:"limit"`
}

// MarketRankingParam 排行查询参数
type MarketRankingParam struct {
	MarketName string `json:"marketName" query:"marketName" validate:"required"`
}

// StockQueryHandler 股票查询处理器
type StockQueryHandler struct {
	queryService *service.StockQueryService
}

// NewStockQueryHandler 创建股票查询处理器
func NewStockQueryHandler(queryService *service.StockQueryService) *StockQueryHandler {
	return &StockQueryHandler{
		queryService: queryService,
	}
}

// RegisterRoutes 注册路由
func (h *StockQueryHandler) RegisterRoutes(app *fiber.App) {
	queryGroup := app.Group("/v1/api/stock/query")

	// 健康检查接口
	queryGroup.Get("/ping", h.Ping)
	// 实时聚合详情
	queryGroup.Get("/detail", h.GetStockDetail)
	queryGroup.Post("/detail", h.GetStockDetailRPC)
	// 最近一次入库的财务快照
	queryGroup.Get("/snapshot", h.GetLatestSnapshot)
	// 已入库的新闻
	queryGroup.Get("/news", h.ListStockNews)
	// 市场排行
	queryGroup.Get("/ranking", h.GetMarketRanking)
	// 导出财务快照
	queryGroup.Get("/export/snapshots", h.ExportSnapshots)
	// 导出新闻
	queryGroup.Get("/export/news", h.ExportNews)
}

// GetStockDetail 实时抓取单只股票的财务详情和新闻
func (h *StockQueryHandler) GetStockDetail(c *fiber.Ctx) error {
	var param StockDetailParam
	if err := c.QueryParser(&param); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "参数错误: " + err.Error(),
		})
	}

	// 参数验证
	if param.StockCode == "" || param.MarketName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "股票代码和市场名称不能为空",
		})
	}

	// 创建超时上下文，详情和新闻两个子进程串行跑要留足时间
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := h.queryService.GetIntegratedStockDetails(ctx, param.StockCode, param.MarketName)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": 200,
		"msg":  "查询成功",
		"data": result,
	})
}

// GetStockDetailRPC 实时聚合详情的JSONRPC入口
func (h *StockQueryHandler) GetStockDetailRPC(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = JSONRPC.Error(c, e)
			} else {
				err = JSONRPC.Error(c, fmt.Errorf("%v", r))
			}
		}
	}()

	var param StockDetailParam
	JSONRPC.ParseRPCBody(c, &param)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := h.queryService.GetIntegratedStockDetails(ctx, param.StockCode, param.MarketName)
	return JSONRPC.OK(c, result)
}

// GetLatestSnapshot 查询最近一次入库的财务快照
func (h *StockQueryHandler) GetLatestSnapshot(c *fiber.Ctx) error {
	var param StockSnapshotParam
	if err := c.QueryParser(&param); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "参数错误: " + err.Error(),
		})
	}

	// 参数验证
	if param.StockCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "股票代码不能为空",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := h.queryService.LatestSnapshot(ctx, param.StockCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"code": 404,
				"msg":  "未找到该股票的财务数据",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code": 500,
			"msg":  "查询失败: " + err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": 200,
		"msg":  "查询成功",
		"data": snapshot,
	})
}

// ListStockNews 查询已入库的新闻
func (h *StockQueryHandler) ListStockNews(c *fiber.Ctx) error {
	var param StockNewsParam
	if err := c.QueryParser(&param); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "参数错误: " + err.Error(),
		})
	}

	// 参数验证
	if param.StockCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "股票代码不能为空",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := h.queryService.ListStockNews(ctx, param.StockCode, param.Limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code": 500,
			"msg":  "查询失败: " + err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": 200,
		"msg":  "查询成功",
		"data": items,
	})
}

// GetMarketRanking 实时拉取某市场的排行数据
func (h *StockQueryHandler) GetMarketRanking(c *fiber.Ctx) error {
	var param MarketRankingParam
	if err := c.QueryParser(&param); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "参数错误: " + err.Error(),
		})
	}

	// 参数验证
	if param.MarketName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "市场名称不能为空",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	table, err := h.queryService.GetMarketRanking(ctx, param.MarketName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code": 500,
			"msg":  "获取排行数据失败: " + err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": 200,
		"msg":  "查询成功",
		"data": table,
	})
}

// ExportSnapshots 按日期范围导出财务快照
func (h *StockQueryHandler) ExportSnapshots(c *fiber.Ctx) error {
	var param service.DateRangeParam
	if err := c.QueryParser(&param); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "参数错误: " + err.Error(),
		})
	}

	// 参数验证
	if param.StartDate == "" || param.EndDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "开始日期和结束日期不能为空",
		})
	}

	// 创建超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	// 导出数据
	result, err := h.queryService.ExportSnapshots(ctx, param)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code": 500,
			"msg":  "导出失败: " + err.Error(),
		})
	}

	// 返回下载链接
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": 200,
		"msg":  "导出成功",
		"data": result,
	})
}

// ExportNews 按发布日期范围导出新闻
func (h *StockQueryHandler) ExportNews(c *fiber.Ctx) error {
	var param service.DateRangeParam
	if err := c.QueryParser(&param); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "参数错误: " + err.Error(),
		})
	}

	// 参数验证
	if param.StartDate == "" || param.EndDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code": 400,
			"msg":  "开始日期和结束日期不能为空",
		})
	}

	// 创建超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	// 导出数据
	result, err := h.queryService.ExportNews(ctx, param)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code": 500,
			"msg":  "导出失败: " + err.Error(),
		})
	}

	// 返回下载链接
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": 200,
		"msg":  "导出成功",
		"data": result,
	})
}

// Ping 健康检查接口
func (h *StockQueryHandler) Ping(c *fiber.Ctx) error {
	// 返回成功响应
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": 200,
		"msg":  "健康检查成功",
		"data": fiber.Map{
			"service": "wealth-stock-data-service",
			"status":  "running",
			"time":    time.Now().Format("2006-01-02 15:04:05"),
		},
	})
}
