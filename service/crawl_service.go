package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	config "wealth-stock-data-service/conf"
	"wealth-stock-data-service/fetcher"
	"wealth-stock-data-service/model"
	logger "wealth-stock-data-service/pkg/log"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// 单只股票抓取单元的三种结局
const (
	outcomeSuccess = "success"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// CrawlTally 一次批量抓取的结果统计
type CrawlTally struct {
	Success int `json:"success"` // 财务快照入库或新闻有新入库
	Skipped int `json:"skipped"` // 命中排除前缀
	Failed  int `json:"failed"`  // 两边都没存进任何东西
}

// Total 处理总数
func (t CrawlTally) Total() int {
	return t.Success + t.Skipped + t.Failed
}

func (t *CrawlTally) add(outcome string) {
	switch outcome {
	case outcomeSuccess:
		t.Success++
	case outcomeSkipped:
		t.Skipped++
	default:
		t.Failed++
	}
}

type unitResult struct {
	code    string
	outcome string
}

// CrawlService 批量抓取调度：分批并发、批间冷却、断点续传
type CrawlService struct {
	db          *gorm.DB
	cfg         *config.CrawlerConfig
	newsFetcher fetcher.NewsFetcher
	// 按市场类型取详情抓取器，测试时换成桩
	detailFetcherFor func(marketType string) fetcher.DetailFetcher
	// 批间冷却，测试时换掉避免真等
	pause func(ctx context.Context, d time.Duration)
}

// NewCrawlService 创建批量抓取服务
func NewCrawlService(db *gorm.DB, cfg *config.CrawlerConfig) *CrawlService {
	return &CrawlService{
		db:          db,
		cfg:         cfg,
		newsFetcher: fetcher.NewNewsFetcher(cfg),
		detailFetcherFor: func(marketType string) fetcher.DetailFetcher {
			return fetcher.NewDetailFetcher(cfg, marketType)
		},
		pause: sleepWithContext,
	}
}

// Run 把待抓取列表按并发数切成连续批次逐批处理
// 批内并发跑满后整体排空，批与批之间冷却，最后一批之后不冷却
// 单只股票失败不会中断整个任务
func (s *CrawlService) Run(ctx context.Context, pending []model.StockBrief) CrawlTally {
	tally := CrawlTally{}
	if len(pending) == 0 {
		fmt.Println("数据库中没有待抓取的股票，请先刷新股票目录")
		return tally
	}

	batchSize := s.cfg.WorkerNum
	if batchSize <= 0 {
		batchSize = 1
	}
	batches := chunkStocks(pending, batchSize)
	total := len(pending)

	fmt.Printf("准备开始为 %d 只股票抓取详细信息...\n", total)
	fmt.Printf("将分 %d 批处理，每批最多 %d 只股票，批次间间隔%d秒。\n",
		len(batches), batchSize, s.cfg.BatchCooldownSec)

	done := 0
	for i, batch := range batches {
		results := make(chan unitResult, len(batch))
		var wg sync.WaitGroup
		for _, stock := range batch {
			wg.Add(1)
			go func(st model.StockBrief) {
				defer wg.Done()
				results <- unitResult{code: st.StockCode, outcome: s.processStock(ctx, st)}
			}(stock)
		}
		go func() {
			wg.Wait()
			close(results)
		}()

		// 完成一只报一只，不依赖批内顺序
		for r := range results {
			tally.add(r.outcome)
			done++
			fmt.Printf("抓取进度 [%d/%d] %s -> %s\n", done, total, r.code, r.outcome)
		}

		if i < len(batches)-1 {
			fmt.Printf("\n第 %d/%d 批处理完成，休息%d秒...\n", i+1, len(batches), s.cfg.BatchCooldownSec)
			s.pause(ctx, time.Duration(s.cfg.BatchCooldownSec)*time.Second)
		}
	}

	fmt.Printf("\n详细信息抓取完成。成功: %d, 跳过: %d, 失败: %d\n",
		tally.Success, tally.Skipped, tally.Failed)
	return tally
}

// processStock 单只股票的完整抓取单元
// 详情和新闻各自独立抓取入库，panic只折损自己这一只
func (s *CrawlService) processStock(ctx context.Context, stock model.StockBrief) (outcome string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("抓取单元异常 (代码: %s): %v", stock.StockCode, r)
			outcome = outcomeFailed
		}
	}()

	for _, prefix := range s.cfg.ExcludedPrefixes {
		if prefix != "" && strings.HasPrefix(stock.StockCode, prefix) {
			return outcomeSkipped
		}
	}

	// 1. 抓财务详情，失败拿到的是兜底表加错误信息
	detail := s.detailFetcherFor(stock.MarketType).FetchDetails(ctx, stock.StockCode)
	if !detail.OK() {
		fmt.Fprintf(os.Stderr, "抓取详情失败 (代码: %s): %s\n", stock.StockCode, detail.Err)
	}

	// 2. 抓新闻，不受详情成败影响
	newsItems, newsErr := s.newsFetcher.FetchNews(ctx, stock.StockCode)
	if newsErr != nil {
		fmt.Fprintf(os.Stderr, "抓取新闻失败 (代码: %s): %v\n", stock.StockCode, newsErr)
	}

	// 3. 数据入库
	detailsSaved := s.saveSnapshot(ctx, stock.StockCode, detail)
	newsSaved := s.saveNews(ctx, stock.StockCode, newsItems)

	if detailsSaved || newsSaved {
		return outcomeSuccess
	}
	return outcomeFailed
}

// saveSnapshot 详情成功时追加一条财务快照，失败返回false不中断
func (s *CrawlService) saveSnapshot(ctx context.Context, stockCode string, detail fetcher.DetailResult) bool {
	if !detail.OK() || len(detail.Raw) == 0 {
		return false
	}

	rawJSON, err := jsonIter.MarshalToString(detail.Raw)
	if err != nil {
		logger.Error("序列化财务数据失败 (代码: %s): %v", stockCode, err)
		return false
	}

	snapshot := model.FinancialData{
		StockCode:   stockCode,
		LastUpdated: time.Now(),
		RawData:     rawJSON,
	}
	if err := s.db.WithContext(ctx).Create(&snapshot).Error; err != nil {
		fmt.Fprintf(os.Stderr, "财务数据入库失败 (代码: %s): %v\n", stockCode, err)
		return false
	}
	return true
}

// saveNews 逐条insert-or-ignore，只有真插进去新行才算成功
func (s *CrawlService) saveNews(ctx context.Context, stockCode string, items []fetcher.NewsItem) bool {
	inserted := 0
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		news := model.News{
			URL:         item.URL,
			StockCode:   stockCode,
			Title:       item.Title,
			PublishTime: time.Unix(item.PublishTime, 0),
			CrawledTime: time.Now(),
		}
		result := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&news)
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "新闻入库失败 (URL: %s): %v\n", item.URL, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			inserted++
		}
	}
	return inserted > 0
}

// chunkStocks 连续切批，最后一批可能不满
func chunkStocks(stocks []model.StockBrief, size int) [][]model.StockBrief {
	var batches [][]model.StockBrief
	for start := 0; start < len(stocks); start += size {
		end := start + size
		if end > len(stocks) {
			end = len(stocks)
		}
		batches = append(batches, stocks[start:end])
	}
	return batches
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
