package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	pkgNacos "wealth-stock-data-service/pkg/nacos"
)

var (
	ins *pkgNacos.NacosCli
)

const (
	KMS_ACCESS_KEY  = "KMS_ACCESS_KEY"
	kMS_SECRET_KEY  = "KMS_SECRET_KEY"
	NACOS_URL       = "NACOS_URL"
	NACOS_PORT      = "NACOS_PORT"
	NACOS_REGION_ID = "NACOS_REGION_ID"
	NACOS_CACHE_DIR = "NACOS_CACHE_DIR"

	DEF_NACOS_PORT = 8848
)

var NacosKeys = map[string]string{
	// 行情库配置
	"stockDB": "cipher-sqlite-stockdata-rw@@mkt@@mkt",

	// 抓取任务配置
	"crawler": "stock-crawler-config@@mkt@@mkt",

	// 导出与OSS配置
	"export": "stock-export-config@@mkt@@mkt",
	"oss":    "stock-oss-config@@mkt@@mkt",
}

func GetViperCfgFromNacos(key, localKey, cfgType string) error {
	b, err := GetConfigFromNacos(key)
	if err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigType(cfgType)
	err = v.ReadConfig(bytes.NewBufferString(b))
	if err != nil {
		return err
	}
	if localKey == "" {
		return viper.MergeConfigMap(v.AllSettings())
	}
	return viper.MergeConfigMap(map[string]interface{}{localKey: v.AllSettings()})
}

func NewNacosClientInsFromEnv(app string) error {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("cant read env file! for develop better read form env file")
	}
	var port int32 = DEF_NACOS_PORT //default nacos port
	url := os.Getenv(NACOS_URL)
	if url == "" {
		return errors.New("cant get env var NACOS_URL ")
	}
	p := os.Getenv(NACOS_PORT)
	if p != "" {
		nacosPort, er := strconv.Atoi(p)
		if er != nil {
			return er
		}
		port = int32(nacosPort)
	}

	dir := os.Getenv(NACOS_CACHE_DIR)
	if dir == "" {
		dir = "/data/logs"
	}
	fmt.Println("nacos:", url)
	ins = pkgNacos.NewNacosOpts(
		pkgNacos.WithAddr(os.Getenv(NACOS_URL)),
		pkgNacos.WithPort(port),
		pkgNacos.WithCacheDir(dir),
		pkgNacos.WithLogLevel("warn"),
		pkgNacos.WithLogDir(dir+"/"+app),
		pkgNacos.WithKmsAK(os.Getenv(KMS_ACCESS_KEY)),
		pkgNacos.WithKmsSK(os.Getenv(kMS_SECRET_KEY)),
		pkgNacos.WithRegionId(os.Getenv(NACOS_REGION_ID)),
	)
	return nil
}

func CloseNacosConns() {
	for _, v := range ins.NacosCliMap {
		v.CloseClient()
	}
}

// get config string  so you can Unmarshal yourself !
func GetConfigFromNacos(key string) (string, error) {
	return GetConfigFromNacosSep(key, "@@")
}

func GetConfigFromNacosSep(key, sep string) (string, error) {
	arr := strings.Split(key, sep)
	return ins.GetCfgFromNacos(arr[0], arr[1], arr[2])
}
