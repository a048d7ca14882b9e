// Package pkgNacos Nacos配置中心客户端封装，按命名空间复用连接
package pkgNacos

import (
	"fmt"
	"sync"

	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/clients/config_client"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
)

// NacosCli 管理多命名空间的nacos配置客户端
type NacosCli struct {
	NacosCliMap map[string]config_client.IConfigClient // 命名空间 -> 客户端
	CacheLogDir string
	LogDir      string
	LogLvl      string
	lock        sync.Mutex
	addr        string
	port        int32
	accessKey   string // KMS AK，解密加密配置用
	secretKey   string // KMS SK
	region      string
}

type NacosCliOption func(*NacosCli)

func NewNacosOpts(opts ...NacosCliOption) *NacosCli {
	c := &NacosCli{
		NacosCliMap: make(map[string]config_client.IConfigClient),
		LogLvl:      "warn",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithCacheDir(cacheLogDir string) NacosCliOption {
	return func(c *NacosCli) { c.CacheLogDir = cacheLogDir }
}

func WithLogDir(dir string) NacosCliOption {
	return func(c *NacosCli) { c.LogDir = dir }
}

func WithLogLevel(lvl string) NacosCliOption {
	return func(c *NacosCli) { c.LogLvl = lvl }
}

func WithAddr(addr string) NacosCliOption {
	return func(c *NacosCli) { c.addr = addr }
}

func WithPort(port int32) NacosCliOption {
	return func(c *NacosCli) { c.port = port }
}

func WithRegionId(region string) NacosCliOption {
	return func(c *NacosCli) { c.region = region }
}

func WithKmsAK(ak string) NacosCliOption {
	return func(c *NacosCli) { c.accessKey = ak }
}

func WithKmsSK(sk string) NacosCliOption {
	return func(c *NacosCli) { c.secretKey = sk }
}

// getNacosCli 取命名空间对应的客户端，没有则新建并缓存
func (c *NacosCli) getNacosCli(ns string) (config_client.IConfigClient, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if cli, ok := c.NacosCliMap[ns]; ok {
		return cli, nil
	}

	cc := *constant.NewClientConfig(
		constant.WithTimeoutMs(5000),
		constant.WithNamespaceId(ns),
		constant.WithOpenKMS(true),
		constant.WithRegionId(c.region),
		constant.WithSecretKey(c.secretKey),
		constant.WithAccessKey(c.accessKey),
		constant.WithNotLoadCacheAtStart(true),
		constant.WithLogDir(c.LogDir),
		constant.WithCacheDir(c.CacheLogDir),
		constant.WithLogLevel(c.LogLvl),
	)
	sc := []constant.ServerConfig{
		{
			IpAddr: c.addr,
			Port:   uint64(c.port),
		},
	}

	nacosCli, err := clients.NewConfigClient(
		vo.NacosClientParam{
			ClientConfig:  &cc,
			ServerConfigs: sc,
		},
	)
	if err != nil {
		fmt.Println("init nacos client error:", err)
		return nil, err
	}

	c.NacosCliMap[ns] = nacosCli
	return nacosCli, nil
}

// GetCfgFromNacos 拉取指定dataId/group/namespace的配置内容
func (c *NacosCli) GetCfgFromNacos(id, group, ns string) (string, error) {
	cli, err := c.getNacosCli(ns)
	if err != nil {
		return "", err
	}
	return cli.GetConfig(vo.ConfigParam{
		Group:  group,
		DataId: id,
	})
}
