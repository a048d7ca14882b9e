package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wealth-stock-data-service/fetcher"
	"wealth-stock-data-service/model"
)

// CatalogService 股票目录维护，负责目录刷新和断点续传的差集查询
type CatalogService struct {
	db      *gorm.DB
	ranking *fetcher.RankingClient
}

// NewCatalogService 创建股票目录服务
func NewCatalogService(db *gorm.DB, ranking *fetcher.RankingClient) *CatalogService {
	return &CatalogService{
		db:      db,
		ranking: ranking,
	}
}

// UpdateStockList 刷新所有市场的股票目录
// 已有代码忽略不更新，单个市场拉取失败只跳过该市场
// 返回各市场新增数和总新增数
func (s *CatalogService) UpdateStockList(ctx context.Context) (map[string]int, int) {
	fmt.Println("开始更新股票列表...")

	perMarket := make(map[string]int, len(fetcher.MarketOptions))
	totalInserted := 0

	for i := range fetcher.MarketOptions {
		opt := &fetcher.MarketOptions[i]
		fmt.Printf("正在获取 '%s' 的股票列表...\n", opt.Name)

		table, err := s.ranking.FetchRanking(ctx, opt)
		if err != nil || table.Empty() {
			if err != nil {
				fmt.Printf("未能获取到 '%s' 的数据，跳过。(%v)\n", opt.Name, err)
			} else {
				fmt.Printf("未能获取到 '%s' 的数据，跳过。\n", opt.Name)
			}
			continue
		}

		if opt.MarketType == "" {
			fmt.Printf("警告: '%s' 没有定义市场类型，跳过。\n", opt.Name)
			continue
		}

		inserted := 0
		for _, row := range table.Rows {
			stockCode := row["代码"]
			stockName := row["名称"]
			if stockCode == "" || stockName == "" {
				continue
			}

			stock := model.Stock{
				StockCode:  stockCode,
				StockName:  stockName,
				MarketType: opt.MarketType,
			}
			result := s.db.WithContext(ctx).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&stock)
			if result.Error != nil {
				fmt.Printf("数据库插入错误 (代码: %s): %v\n", stockCode, result.Error)
				continue
			}
			if result.RowsAffected > 0 {
				inserted++
			}
		}

		perMarket[opt.Name] = inserted
		totalInserted += inserted
		fmt.Printf("'%s' 处理完成。新增 %d 只股票到数据库。\n", opt.Name, inserted)
	}

	fmt.Printf("\n股票列表更新完成。总共新增 %d 只股票。\n", totalInserted)
	return perMarket, totalInserted
}

// PendingStocks 断点续传差集：还没有任何财务快照的股票
// 以financial_data里是否有记录为准，没有任务状态表
func (s *CatalogService) PendingStocks(ctx context.Context) ([]model.StockBrief, error) {
	var pending []model.StockBrief
	err := s.db.WithContext(ctx).
		Table("stocks s").
		Select("s.stock_code, s.market_type").
		Joins("LEFT JOIN financial_data fd ON s.stock_code = fd.stock_code").
		Where("fd.stock_code IS NULL").
		Scan(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("查询待抓取股票失败: %w", err)
	}
	return pending, nil
}
