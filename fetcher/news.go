package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	config "wealth-stock-data-service/conf"
)

// NewsItem 一条公司资讯，publishTime为unix秒
type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishTime int64  `json:"publishTime"`
}

// NewsFetcher 资讯抓取器，详情抓取失败不影响它
type NewsFetcher interface {
	FetchNews(ctx context.Context, stockCode string) ([]NewsItem, error)
}

// ScriptNewsFetcher 子进程脚本实现
type ScriptNewsFetcher struct {
	bin     string
	script  string
	timeout time.Duration
}

func NewNewsFetcher(cfg *config.CrawlerConfig) NewsFetcher {
	return &ScriptNewsFetcher{
		bin:     cfg.PythonBin,
		script:  cfg.NewsScript,
		timeout: time.Duration(cfg.NewsTimeoutSec) * time.Second,
	}
}

// FetchNews 拉取一只股票的最新资讯列表
// 子进程stdout约定为纯JSON数组，失败时返回空列表和错误
func (f *ScriptNewsFetcher) FetchNews(ctx context.Context, stockCode string) ([]NewsItem, error) {
	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.bin, f.script, stockCode)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, errors.New("获取新闻数据超时")
	}
	if runErr != nil {
		var execErr *exec.Error
		if errors.As(runErr, &execErr) {
			return nil, fmt.Errorf("处理新闻子进程时出错: %v", runErr)
		}
		return nil, fmt.Errorf("获取新闻子进程执行失败: %s", decodeSubprocessOutput(stderr.Bytes()))
	}

	var items []NewsItem
	if err := jsonIter.Unmarshal(stdout.Bytes(), &items); err != nil {
		return nil, fmt.Errorf("处理新闻子进程时出错: %v", err)
	}
	return items, nil
}
