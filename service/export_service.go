package service

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	config "wealth-stock-data-service/conf"
	"wealth-stock-data-service/model"
)

// ScheduledExportService 财务快照定时导出服务
type ScheduledExportService struct {
	db *gorm.DB
}

// NewScheduledExportService 创建财务快照定时导出服务
func NewScheduledExportService(db *gorm.DB) *ScheduledExportService {
	return &ScheduledExportService{db: db}
}

// StartDailyExport 启动每日导出任务，零点导出前一天的快照
func (s *ScheduledExportService) StartDailyExport(exportDir string) {
	// 确保导出目录存在
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		log.Fatalf("创建导出目录失败: %v", err)
	}

	// 计算下一个零点
	now := time.Now()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	initialDelay := nextMidnight.Sub(now)

	log.Printf("财务快照导出服务已启动，将在 %s 后开始首次导出", initialDelay)

	// 启动定时任务
	go func() {
		// 等待到下一个零点
		time.Sleep(initialDelay)

		// 每天执行一次导出
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			day := time.Now().AddDate(0, 0, -1)
			filename := filepath.Join(exportDir, fmt.Sprintf("stock_snapshots_%s.xlsx", day.Format(DateFormat)))

			if err := s.ExportDayToExcel(filename, day); err != nil {
				log.Printf("导出Excel失败: %v", err)
			} else {
				log.Printf("成功导出Excel文件: %s", filename)
			}

			s.cleanupOldExports(exportDir)

			<-ticker.C // 等待下一个零点
		}
	}()
}

// ExportDayToExcel 导出指定日期的财务快照到Excel文件
func (s *ScheduledExportService) ExportDayToExcel(filename string, day time.Time) error {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	// 查询当天入库的财务快照
	var snapshots []model.FinancialData
	if err := s.db.
		Where("last_updated >= ? AND last_updated < ?", dayStart, dayEnd).
		Find(&snapshots).Error; err != nil {
		return fmt.Errorf("查询财务快照失败: %w", err)
	}

	// 创建新的Excel文件
	f := excelize.NewFile()
	defer f.Close()

	// 设置工作表名称
	sheetName := "财务数据快照"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetActiveSheet(index)

	// 设置表头
	headers := []string{"股票代码", "股票名称", "所属行业", "抓取时间", "详情页链接"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	// 填充数据
	rowIndex := 2 // 从第2行开始（第1行是表头）

	for _, snapshot := range snapshots {
		var raw map[string]interface{}
		if err := jsonIter.UnmarshalFromString(snapshot.RawData, &raw); err != nil {
			log.Printf("解析财务数据失败 (代码=%s): %v", snapshot.StockCode, err)
			continue
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), snapshot.StockCode)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), stringField(raw, "stock_name"))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), stringField(raw, "industry_name"))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), snapshot.LastUpdated.Format(DateTimeFormat))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), extractDetailsURL(raw))
		rowIndex++
	}

	// 设置列宽
	for i := 0; i < len(headers); i++ {
		colName := string(rune('A' + i))
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	// 保存文件
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}

	return nil
}

// cleanupOldExports 删除超过保留天数的历史导出文件
func (s *ScheduledExportService) cleanupOldExports(exportDir string) {
	retention := config.GetExportConfig().RetentionDays
	if retention <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retention)

	entries, err := os.ReadDir(exportDir)
	if err != nil {
		log.Printf("读取导出目录失败: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xlsx") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(exportDir, entry.Name())); err != nil {
				log.Printf("删除过期导出文件失败: %s, error: %v", entry.Name(), err)
			} else {
				log.Printf("已删除过期导出文件: %s", entry.Name())
			}
		}
	}
}
