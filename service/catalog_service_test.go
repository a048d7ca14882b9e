package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"wealth-stock-data-service/fetcher"
	"wealth-stock-data-service/model"
	"wealth-stock-data-service/service"
)

func TestCatalogService_UpdateStockList(t *testing.T) {
	// 1. 设置模拟数据库
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建模拟数据库失败: %v", err)
	}
	defer db.Close()

	// 2. 设置GORM连接
	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("打开GORM连接失败: %v", err)
	}

	// 3. 模拟排行接口，返回两只A股
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "f12,f14", r.URL.Query().Get("fields"), "应该按配置请求字段")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rc":0,"data":{"total":2,"diff":[{"f12":"600000","f14":"浦发银行"},{"f12":"600519","f14":"贵州茅台"}]}}`))
	}))
	defer ts.Close()

	// 4. 替换市场配置指向测试服务器
	saved := fetcher.MarketOptions
	defer func() { fetcher.MarketOptions = saved }()
	fetcher.MarketOptions = []fetcher.MarketOption{
		{
			Name:        "测试A股",
			MarketType:  model.MarketTypeAShare,
			URL:         ts.URL,
			FS:          "m:0 t:6",
			Fields:      []string{"f12", "f14"},
			Labels:      map[string]string{"f12": "代码", "f14": "名称"},
			ColumnOrder: []string{"代码", "名称"},
		},
	}

	// 5. 设置数据库期望：第一只新增，第二只已存在被忽略
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `stocks`").
		WithArgs("600000", "浦发银行", model.MarketTypeAShare).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `stocks`").
		WithArgs("600519", "贵州茅台", model.MarketTypeAShare).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// 6. 执行目录刷新
	catalogService := service.NewCatalogService(gormDB, fetcher.NewRankingClient(5*time.Second))
	perMarket, total := catalogService.UpdateStockList(context.Background())

	// 7. 验证结果：重复代码不计入新增
	assert.Equal(t, 1, total, "总新增数应该只统计真正插入的行")
	assert.Equal(t, 1, perMarket["测试A股"], "测试A股应该新增1只")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("有未满足的期望: %s", err)
	}
}

func TestCatalogService_UpdateStockList_FetchFailure(t *testing.T) {
	// 1. 设置模拟数据库
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建模拟数据库失败: %v", err)
	}
	defer db.Close()

	// 2. 设置GORM连接
	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("打开GORM连接失败: %v", err)
	}

	// 3. 排行接口返回500，该市场应该被整体跳过
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	saved := fetcher.MarketOptions
	defer func() { fetcher.MarketOptions = saved }()
	fetcher.MarketOptions = []fetcher.MarketOption{
		{
			Name:        "测试A股",
			MarketType:  model.MarketTypeAShare,
			URL:         ts.URL,
			Fields:      []string{"f12", "f14"},
			Labels:      map[string]string{"f12": "代码", "f14": "名称"},
			ColumnOrder: []string{"代码", "名称"},
		},
	}

	// 4. 执行目录刷新，不应该有任何数据库操作
	catalogService := service.NewCatalogService(gormDB, fetcher.NewRankingClient(5*time.Second))
	perMarket, total := catalogService.UpdateStockList(context.Background())

	assert.Equal(t, 0, total, "拉取失败的市场不应该有新增")
	assert.NotContains(t, perMarket, "测试A股", "跳过的市场不应该出现在统计里")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("有未满足的期望: %s", err)
	}
}

func TestCatalogService_UpdateStockList_SkipsBlankRows(t *testing.T) {
	// 1. 设置模拟数据库
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建模拟数据库失败: %v", err)
	}
	defer db.Close()

	// 2. 设置GORM连接
	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("打开GORM连接失败: %v", err)
	}

	// 3. 排行接口返回一行缺名称的数据和一行正常数据
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"total":2,"diff":[{"f12":"600000","f14":""},{"f12":"00700","f14":"腾讯控股"}]}}`))
	}))
	defer ts.Close()

	saved := fetcher.MarketOptions
	defer func() { fetcher.MarketOptions = saved }()
	fetcher.MarketOptions = []fetcher.MarketOption{
		{
			Name:        "测试港股",
			MarketType:  model.MarketTypeHKShare,
			URL:         ts.URL,
			Fields:      []string{"f12", "f14"},
			Labels:      map[string]string{"f12": "代码", "f14": "名称"},
			ColumnOrder: []string{"代码", "名称"},
		},
	}

	// 4. 只期望正常的那一行入库
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `stocks`").
		WithArgs("00700", "腾讯控股", model.MarketTypeHKShare).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	catalogService := service.NewCatalogService(gormDB, fetcher.NewRankingClient(5*time.Second))
	_, total := catalogService.UpdateStockList(context.Background())

	assert.Equal(t, 1, total, "缺代码或名称的行应该被跳过")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("有未满足的期望: %s", err)
	}
}

func TestCatalogService_PendingStocks(t *testing.T) {
	// 1. 设置模拟数据库
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建模拟数据库失败: %v", err)
	}
	defer db.Close()

	// 2. 设置GORM连接
	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("打开GORM连接失败: %v", err)
	}

	// 3. 设置差集查询期望：返回两只还没有财务快照的股票
	rows := sqlmock.NewRows([]string{"stock_code", "market_type"}).
		AddRow("600000", model.MarketTypeAShare).
		AddRow("00700", model.MarketTypeHKShare)
	mock.ExpectQuery("SELECT s.stock_code, s.market_type FROM stocks s LEFT JOIN financial_data fd").
		WillReturnRows(rows)

	// 4. 执行查询
	catalogService := service.NewCatalogService(gormDB, fetcher.NewRankingClient(5*time.Second))
	pending, err := catalogService.PendingStocks(context.Background())

	// 5. 验证结果
	assert.NoError(t, err, "差集查询应该成功")
	assert.Len(t, pending, 2, "应该返回2只待抓取股票")
	assert.Equal(t, "600000", pending[0].StockCode)
	assert.Equal(t, model.MarketTypeAShare, pending[0].MarketType)
	assert.Equal(t, "00700", pending[1].StockCode)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("有未满足的期望: %s", err)
	}
}
