package model

import (
	"time"
)

// 市场类型，决定详情抓取走A股脚本还是港股脚本
const (
	MarketTypeAShare  = "A-Share"
	MarketTypeHKShare = "HK-Share"
)

// Stock 股票目录表，目录刷新时写入，已存在的代码忽略
type Stock struct {
	StockCode   string    `gorm:"column:stock_code;primaryKey" json:"stockCode"`                              // 股票代码
	StockName   string    `gorm:"column:stock_name;not null" json:"stockName"`                                // 股票名称
	MarketType  string    `gorm:"column:market_type;not null" json:"marketType"`                              // 市场类型(A-Share/HK-Share)
	LastUpdated time.Time `gorm:"column:last_updated;not null;default:CURRENT_TIMESTAMP" json:"lastUpdated"` // 首次入库时间
}

// TableName 设置表名
func (Stock) TableName() string {
	return "stocks"
}

// FinancialData 财务详情快照表，复合主键(stock_code, last_updated)，只追加不更新
type FinancialData struct {
	StockCode   string    `gorm:"column:stock_code;primaryKey" json:"stockCode"`    // 股票代码
	LastUpdated time.Time `gorm:"column:last_updated;primaryKey" json:"lastUpdated"` // 抓取时间
	RawData     string    `gorm:"column:raw_data;type:text" json:"rawData"`          // 原始财务数据JSON
}

// TableName 设置表名
func (FinancialData) TableName() string {
	return "financial_data"
}

// News 公司资讯表，url作主键去重，重复抓取同一条新闻不会重复入库
type News struct {
	URL         string    `gorm:"column:url;primaryKey" json:"url"`                                           // 新闻链接
	StockCode   string    `gorm:"column:stock_code;index" json:"stockCode"`                                   // 股票代码
	Title       string    `gorm:"column:title;not null" json:"title"`                                         // 新闻标题
	PublishTime time.Time `gorm:"column:publish_time;index" json:"publishTime"`                               // 发布时间
	CrawledTime time.Time `gorm:"column:crawled_time;not null;default:CURRENT_TIMESTAMP" json:"crawledTime"` // 抓取时间
}

// TableName 设置表名
func (News) TableName() string {
	return "news"
}

// StockBrief 待抓取股票，来自stocks左连financial_data的差集查询
type StockBrief struct {
	StockCode  string `gorm:"column:stock_code" json:"stockCode"`   // 股票代码
	MarketType string `gorm:"column:market_type" json:"marketType"` // 市场类型
}
