package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	config "wealth-stock-data-service/conf"
	"wealth-stock-data-service/fetcher"
	"wealth-stock-data-service/model"
	logger "wealth-stock-data-service/pkg/log"
	"wealth-stock-data-service/pkg/oss"
)

// 常量定义
const (
	// 时间格式
	DateFormat     = "20060102"
	DateTimeFormat = "2006-01-02 15:04:05"

	// 限制条件
	DefaultNewsLimit = 50
	MaxNewsLimit     = 200

	// 文件名前缀
	SnapshotExportPrefix = "stock_snapshots"
	NewsExportPrefix     = "stock_news"
)

// StockQueryService 股票数据查询服务
type StockQueryService struct {
	db      *gorm.DB
	cfg     *config.CrawlerConfig
	ranking *fetcher.RankingClient
	news    fetcher.NewsFetcher
}

// NewStockQueryService 创建股票数据查询服务
func NewStockQueryService(db *gorm.DB, cfg *config.CrawlerConfig) *StockQueryService {
	return &StockQueryService{
		db:      db,
		cfg:     cfg,
		ranking: fetcher.NewRankingClient(time.Duration(cfg.RankingTimeoutSec) * time.Second),
		news:    fetcher.NewNewsFetcher(cfg),
	}
}

// IntegratedStockDetails 单只股票财务详情与新闻的聚合结果
type IntegratedStockDetails struct {
	FinancialData *fetcher.SplitTable    `json:"financialData"`
	RawData       map[string]interface{} `json:"rawData"`
	ErrorMsg      string                 `json:"errorMsg,omitempty"`
	News          []fetcher.NewsItem     `json:"news"`
	DetailsURL    string                 `json:"detailsUrl,omitempty"`
}

// GetIntegratedStockDetails 实时抓取单只股票的财务详情和新闻并聚合
// 两路各自独立，任何一路失败都以兜底数据加错误信息呈现，不影响另一路
func (s *StockQueryService) GetIntegratedStockDetails(ctx context.Context, stockCode, marketName string) *IntegratedStockDetails {
	result := &IntegratedStockDetails{News: make([]fetcher.NewsItem, 0)}

	// 1. 市场名不认识就不起子进程，直接给兜底数据
	opt := fetcher.FindMarketOption(marketName)
	if opt == nil {
		result.FinancialData, result.RawData = fetcher.FallbackFinancialData()
		result.ErrorMsg = fmt.Sprintf("未知的市场类型: %s", marketName)
		return result
	}

	// 2. 财务详情，失败时结果里已带兜底表和错误信息
	detail := fetcher.NewDetailFetcherForMarket(s.cfg, opt).FetchDetails(ctx, stockCode)
	result.FinancialData = detail.Table
	result.RawData = detail.Raw
	result.ErrorMsg = detail.Err
	result.DetailsURL = extractDetailsURL(detail.Raw)

	// 3. 新闻独立抓取，错误不覆盖详情侧的错误信息
	newsItems, err := s.news.FetchNews(ctx, stockCode)
	if err != nil {
		logger.Error("获取新闻失败 (代码: %s): %v", stockCode, err)
		if result.ErrorMsg == "" {
			result.ErrorMsg = err.Error()
		}
	}
	if len(newsItems) > 0 {
		result.News = newsItems
	}

	return result
}

// extractDetailsURL A股原始数据的comparison_data里带详情页url，港股没有
func extractDetailsURL(raw map[string]interface{}) string {
	if raw == nil {
		return ""
	}
	if comp, ok := raw["comparison_data"].(map[string]interface{}); ok {
		if u, ok := comp["url"].(string); ok && u != "" {
			return u
		}
	}
	if u, ok := raw["url"].(string); ok {
		return u
	}
	return ""
}

// LatestSnapshot 查询某只股票最近一次入库的财务快照
// 无记录时透传gorm.ErrRecordNotFound，由调用方决定响应码
func (s *StockQueryService) LatestSnapshot(ctx context.Context, stockCode string) (*model.FinancialData, error) {
	var snapshot model.FinancialData
	err := s.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("last_updated DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ListStockNews 查询某只股票已入库的新闻，按发布时间倒序
func (s *StockQueryService) ListStockNews(ctx context.Context, stockCode string, limit int) ([]model.News, error) {
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	if limit > MaxNewsLimit {
		limit = MaxNewsLimit
	}
	items := make([]model.News, 0, limit)
	err := s.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("publish_time DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询新闻失败: %w", err)
	}
	return items, nil
}

// GetMarketRanking 实时拉取某市场的排行数据
func (s *StockQueryService) GetMarketRanking(ctx context.Context, marketName string) (*fetcher.RankingTable, error) {
	opt := fetcher.FindMarketOption(marketName)
	if opt == nil {
		return nil, fmt.Errorf("未知的市场类型: %s", marketName)
	}
	return s.ranking.FetchRanking(ctx, opt)
}

// 基础查询参数
type BaseQueryParam struct {
	StockCode string `json:"stockCode" form:"stockCode"` // 股票代码，为空则导出所有
}

// 日期范围参数 - 用于导出
type DateRangeParam struct {
	BaseQueryParam
	StartDate string `json:"startDate" form:"startDate" binding:"required"` // 格式: YYYYMMDD
	EndDate   string `json:"endDate" form:"endDate" binding:"required"`     // 格式: YYYYMMDD
}

// 导出结果返回参数
type ExportResult struct {
	URL string `json:"url"` // 导出文件的OSS访问链接
}

// ExportSnapshots 按日期范围导出财务快照 - 使用流式处理
func (s *StockQueryService) ExportSnapshots(ctx context.Context, param DateRangeParam) (*ExportResult, error) {
	// 1. 解析日期区间
	start, endExclusive, err := parseDateRange(param)
	if err != nil {
		return nil, err
	}

	// 2. 创建Excel文件
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "财务数据快照"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return &ExportResult{}, fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"股票代码", "股票名称", "所属行业", "抓取时间", "详情页链接"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2 // 从第2行开始
	processedCount := 0
	skippedCount := 0

	// 3. 游标流式读取，避免大区间撑爆内存
	query := s.db.WithContext(ctx).Model(&model.FinancialData{}).
		Where("last_updated >= ? AND last_updated < ?", start, endExclusive)
	if param.StockCode != "" {
		query = query.Where("stock_code = ?", param.StockCode)
	}

	rows, err := query.Rows()
	if err != nil {
		return nil, fmt.Errorf("查询财务数据失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("导出被取消: %w", ctx.Err())
		default:
		}

		var snapshot model.FinancialData
		if err := s.db.ScanRows(rows, &snapshot); err != nil {
			logger.Error("扫描数据行失败: %v", err)
			skippedCount++
			continue
		}

		if err := s.writeSnapshotToExcel(f, sheetName, &snapshot, &rowIndex); err != nil {
			logger.Error("写入Excel失败 (代码: %s): %v", snapshot.StockCode, err)
			skippedCount++
			continue
		}
		processedCount++
	}

	logger.Info("财务快照导出完成: 处理 %d 条记录，跳过 %d 条记录", processedCount, skippedCount)

	// 4. 设置列宽
	for i := 0; i < len(headers); i++ {
		colName := string(rune('A' + i))
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	// 5. 保存到临时目录
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("%s_%s-%s_%s.xlsx",
		SnapshotExportPrefix, param.StartDate, param.EndDate, uuid.New().String()[:8]))
	if err := f.SaveAs(filename); err != nil {
		return &ExportResult{}, fmt.Errorf("保存Excel文件失败: %w", err)
	}

	// 6. 上传OSS并清理本地文件
	url, err := s.uploadAndRemove(filename)
	if err != nil {
		return &ExportResult{}, err
	}

	return &ExportResult{URL: url}, nil
}

// ExportNews 按发布日期范围导出新闻 - 使用流式处理
func (s *StockQueryService) ExportNews(ctx context.Context, param DateRangeParam) (*ExportResult, error) {
	// 1. 解析日期区间
	start, endExclusive, err := parseDateRange(param)
	if err != nil {
		return nil, err
	}

	// 2. 创建Excel文件
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "公司资讯"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return &ExportResult{}, fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"股票代码", "新闻标题", "新闻链接", "发布时间", "抓取时间"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2 // 从第2行开始
	processedCount := 0

	// 3. 游标流式读取
	query := s.db.WithContext(ctx).Model(&model.News{}).
		Where("publish_time >= ? AND publish_time < ?", start, endExclusive)
	if param.StockCode != "" {
		query = query.Where("stock_code = ?", param.StockCode)
	}

	rows, err := query.Rows()
	if err != nil {
		return nil, fmt.Errorf("查询新闻失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("导出被取消: %w", ctx.Err())
		default:
		}

		var item model.News
		if err := s.db.ScanRows(rows, &item); err != nil {
			logger.Error("扫描数据行失败: %v", err)
			continue
		}

		s.writeNewsToExcel(f, sheetName, &item, &rowIndex)
		processedCount++
	}

	logger.Info("新闻导出完成: 处理 %d 条记录", processedCount)

	// 4. 设置列宽
	for i := 0; i < len(headers); i++ {
		colName := string(rune('A' + i))
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	// 5. 保存到临时目录
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("%s_%s-%s_%s.xlsx",
		NewsExportPrefix, param.StartDate, param.EndDate, uuid.New().String()[:8]))
	if err := f.SaveAs(filename); err != nil {
		return &ExportResult{}, fmt.Errorf("保存Excel文件失败: %w", err)
	}

	// 6. 上传OSS并清理本地文件
	url, err := s.uploadAndRemove(filename)
	if err != nil {
		return &ExportResult{}, err
	}

	return &ExportResult{URL: url}, nil
}

// writeSnapshotToExcel 解析快照原始JSON后写入一行
func (s *StockQueryService) writeSnapshotToExcel(f *excelize.File, sheetName string, snapshot *model.FinancialData, rowIndex *int) error {
	var raw map[string]interface{}
	if err := jsonIter.UnmarshalFromString(snapshot.RawData, &raw); err != nil {
		return fmt.Errorf("解析财务数据失败: %w", err)
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", *rowIndex), snapshot.StockCode)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", *rowIndex), stringField(raw, "stock_name"))
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", *rowIndex), stringField(raw, "industry_name"))
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", *rowIndex), snapshot.LastUpdated.Format(DateTimeFormat))
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", *rowIndex), extractDetailsURL(raw))

	*rowIndex++
	return nil
}

// writeNewsToExcel 将单条新闻写入一行
func (s *StockQueryService) writeNewsToExcel(f *excelize.File, sheetName string, item *model.News, rowIndex *int) {
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", *rowIndex), item.StockCode)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", *rowIndex), item.Title)
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", *rowIndex), item.URL)
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", *rowIndex), item.PublishTime.Format(DateTimeFormat))
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", *rowIndex), item.CrawledTime.Format(DateTimeFormat))
	*rowIndex++
}

// uploadAndRemove 导出文件上传OSS后清理本地临时文件
func (s *StockQueryService) uploadAndRemove(filename string) (string, error) {
	ossCfg := config.GetOssConfig()
	url, err := oss.UploadFile(filename, filepath.Base(filename), &oss.OssInfo{
		Url:     ossCfg.Url,
		Timeout: ossCfg.Timeout,
	})
	if err != nil {
		return "", fmt.Errorf("上传文件到OSS失败: %w", err)
	}

	if err := os.Remove(filename); err != nil {
		logger.Error("删除本地文件失败: %s, error: %v", filename, err)
	} else {
		logger.Info("成功删除本地文件: %s", filename)
	}
	return url, nil
}

// parseDateRange 解析YYYYMMDD日期区间，返回闭区间起点和开区间终点
func parseDateRange(param DateRangeParam) (time.Time, time.Time, error) {
	start, err := time.Parse(DateFormat, param.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("开始日期格式错误: %w", err)
	}
	end, err := time.Parse(DateFormat, param.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("结束日期格式错误: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("结束日期不能早于开始日期")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func stringField(raw map[string]interface{}, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}
