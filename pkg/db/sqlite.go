package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// 纯Go的sqlite驱动，免cgo，注册为"sqlite"
	_ "modernc.org/sqlite"
)

type SqliteCfg struct {
	Path string `json:"path"`
}

// InitSqliteConnPool 打开本地sqlite库，目录不存在则先创建
func InitSqliteConnPool(cfg *SqliteCfg, pool *DBPoolConfig) (*gorm.DB, error) {
	dir := filepath.Dir(cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败 %s: %w", dir, err)
		}
	}
	connPool, err := gorm.Open(
		sqlite.New(sqlite.Config{
			DriverName: "sqlite",
			DSN:        cfg.Path,
		}),
		&gorm.Config{QueryFields: true})
	if err != nil {
		return nil, err
	}
	if pool != nil {
		if err := applyPoolConfig(connPool, pool); err != nil {
			return nil, err
		}
	}
	return connPool, nil
}
