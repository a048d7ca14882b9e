package fetcher

import (
	"context"
	"time"

	config "wealth-stock-data-service/conf"
	"wealth-stock-data-service/model"
)

// DetailFetcher 财务详情抓取器
// 每次调用都是一个独立子进程，失败只影响当前这只股票
type DetailFetcher interface {
	FetchDetails(ctx context.Context, stockCode string) DetailResult
}

// ScriptDetailFetcher 子进程脚本实现，脚本按市场类型区分
type ScriptDetailFetcher struct {
	bin        string
	script     string
	marketName string
	timeout    time.Duration
}

func (f *ScriptDetailFetcher) FetchDetails(ctx context.Context, stockCode string) DetailResult {
	return runDetailScript(ctx, f.bin, f.script, stockCode, f.marketName, f.timeout)
}

// NewDetailFetcher 按市场类型构造详情抓取器，批量抓取用
// A股走A股脚本，其余一律按港股脚本处理
func NewDetailFetcher(cfg *config.CrawlerConfig, marketType string) DetailFetcher {
	script := cfg.HKShareScript
	if marketType == model.MarketTypeAShare {
		script = cfg.AShareScript
	}
	return &ScriptDetailFetcher{
		bin:        cfg.PythonBin,
		script:     script,
		marketName: MarketNameForType(marketType),
		timeout:    time.Duration(cfg.DetailTimeoutSec) * time.Second,
	}
}

// NewDetailFetcherForMarket 按市场配置构造详情抓取器，交互查询用
func NewDetailFetcherForMarket(cfg *config.CrawlerConfig, opt *MarketOption) DetailFetcher {
	script := cfg.HKShareScript
	if opt.MarketType == model.MarketTypeAShare {
		script = cfg.AShareScript
	}
	return &ScriptDetailFetcher{
		bin:        cfg.PythonBin,
		script:     script,
		marketName: opt.Name,
		timeout:    time.Duration(cfg.DetailTimeoutSec) * time.Second,
	}
}
