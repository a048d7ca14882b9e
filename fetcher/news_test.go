package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScriptNewsFetcher_Success(t *testing.T) {
	// 新闻脚本stdout约定为纯JSON数组
	script := writeScript(t, "news.sh", `#!/bin/sh
cat <<'EOF'
[{"title":"三季度业绩公告","url":"https://example.com/news/1","publishTime":1724054400},{"title":"重大资产重组进展","url":"https://example.com/news/2","publishTime":1724140800}]
EOF
`)

	f := &ScriptNewsFetcher{bin: "/bin/sh", script: script, timeout: 10 * time.Second}
	items, err := f.FetchNews(context.Background(), "600000")

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "三季度业绩公告", items[0].Title)
	assert.Equal(t, "https://example.com/news/1", items[0].URL)
	assert.Equal(t, int64(1724054400), items[0].PublishTime)
}

func TestScriptNewsFetcher_EmptyList(t *testing.T) {
	script := writeScript(t, "empty_news.sh", "#!/bin/sh\necho '[]'\n")

	f := &ScriptNewsFetcher{bin: "/bin/sh", script: script, timeout: 10 * time.Second}
	items, err := f.FetchNews(context.Background(), "600000")

	assert.NoError(t, err)
	assert.Empty(t, items, "没有新闻时返回空列表不算错误")
}

func TestScriptNewsFetcher_Timeout(t *testing.T) {
	script := writeScript(t, "slow_news.sh", "#!/bin/sh\nsleep 5\n")

	f := &ScriptNewsFetcher{bin: "/bin/sh", script: script, timeout: 100 * time.Millisecond}
	_, err := f.FetchNews(context.Background(), "600000")

	assert.EqualError(t, err, "获取新闻数据超时")
}

func TestScriptNewsFetcher_MissingBinary(t *testing.T) {
	// 解释器本身不存在，按启动失败处理
	f := &ScriptNewsFetcher{bin: "no-such-python-interpreter-9f2c", script: "news.py", timeout: 10 * time.Second}
	_, err := f.FetchNews(context.Background(), "600000")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "处理新闻子进程时出错")
}

func TestScriptNewsFetcher_ScriptFailure(t *testing.T) {
	// 脚本非零退出，stderr应该透传进错误信息
	script := writeScript(t, "fail_news.sh", "#!/bin/sh\nprintf '东方财富接口调用失败' >&2\nexit 1\n")

	f := &ScriptNewsFetcher{bin: "/bin/sh", script: script, timeout: 10 * time.Second}
	_, err := f.FetchNews(context.Background(), "600000")

	assert.EqualError(t, err, "获取新闻子进程执行失败: 东方财富接口调用失败")
}

func TestScriptNewsFetcher_InvalidJSON(t *testing.T) {
	script := writeScript(t, "bad_news.sh", "#!/bin/sh\necho 'not a json array'\n")

	f := &ScriptNewsFetcher{bin: "/bin/sh", script: script, timeout: 10 * time.Second}
	_, err := f.FetchNews(context.Background(), "600000")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "处理新闻子进程时出错")
}
