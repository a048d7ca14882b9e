package dataSource

import (
	"fmt"
	"strconv"
	"sync"

	"gorm.io/gorm"

	config "wealth-stock-data-service/conf"
	"wealth-stock-data-service/model"
	"wealth-stock-data-service/pkg/db"
)

var (
	mu       sync.Mutex
	stockConn *gorm.DB
)

// GetStockDBConn 按配置打开行情库连接池，默认sqlite，进程内复用
func GetStockDBConn() (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if stockConn != nil {
		return stockConn, nil
	}

	cfg := config.GetStockDBConfig()
	pool := &db.DBPoolConfig{
		MaxIdleConn:     cfg.MaxIdleConn,
		MaxOpenConn:     cfg.MaxOpenConn,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.Driver {
	case "mysql":
		conn, err = db.InitMysqlConnPool(&db.MysqlCfg{
			User:     cfg.User,
			Password: cfg.Password,
			Host:     cfg.Host,
			Port:     strconv.Itoa(cfg.Port),
			Schema:   cfg.Schema,
		}, pool)
	case "sqlite", "":
		conn, err = db.InitSqliteConnPool(&db.SqliteCfg{Path: cfg.Path}, pool)
	default:
		return nil, fmt.Errorf("不支持的行情库驱动: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("打开行情库失败: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("行情库连接检测失败: %w", err)
	}

	stockConn = conn
	return stockConn, nil
}

// EnsureTables 建表，已存在则跳过
func EnsureTables(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&model.Stock{}, &model.FinancialData{}, &model.News{}); err != nil {
		return fmt.Errorf("初始化数据库表失败: %w", err)
	}
	return nil
}

func IsDBNoData(err error) bool {
	if err != nil && err.Error() == gorm.ErrRecordNotFound.Error() {
		return true
	}
	return false
}
