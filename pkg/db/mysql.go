package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type MysqlCfg struct {
	User     string `json:"user"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Schema   string `json:"schema"`
}

type DBPoolConfig struct {
	MaxIdleConn     int `json:"maxIdleConn"`
	MaxOpenConn     int `json:"maxOpenConn"`
	ConnMaxLifetime int `json:"connMaxLifetime"`
}

func InitMysqlConnPool(cfg *MysqlCfg, pool *DBPoolConfig) (*gorm.DB, error) {
	dbURI := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8&parseTime=true&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Schema)
	connPool, err := gorm.Open(
		mysql.New(mysql.Config{
			DSN:                       dbURI,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
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

func applyPoolConfig(conn *gorm.DB, pool *DBPoolConfig) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("获取底层连接池失败: %w", err)
	}
	if pool.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConn)
	}
	if pool.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConn)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	}
	return nil
}
