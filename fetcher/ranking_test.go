package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wealth-stock-data-service/model"
)

func TestRankingClient_FetchRanking_JSONP(t *testing.T) {
	// 1. 模拟A股clist接口：JSONP包装，diff是数组
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "f12,f14,f2,f3,f5,f6", query.Get("fields"), "fields应该按配置顺序拼接")
		assert.Equal(t, "m:0 t:6", query.Get("fs"))
		assert.Equal(t, "1", query.Get("pn"), "固定参数应该透传")

		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write([]byte(`jQuery112405034891155096131_1589169999999({"rc":0,"data":{"total":2,"diff":[{"f12":"600000","f14":"浦发银行","f2":10.52,"f5":123456,"f6":1234567890},{"f12":"600519","f14":"贵州茅台","f2":null,"f5":"-","f6":"-"}]}});`))
	}))
	defer ts.Close()

	opt := &MarketOption{
		Name:        "测试A股",
		MarketType:  model.MarketTypeAShare,
		URL:         ts.URL,
		JSONP:       true,
		Params:      map[string]string{"pn": "1"},
		FS:          "m:0 t:6",
		Fields:      []string{"f12", "f14", "f2", "f3", "f5", "f6"},
		Labels:      map[string]string{"f12": "代码", "f14": "名称", "f2": "最新价", "f3": "涨跌幅", "f5": "成交量(手)", "f6": "成交额"},
		ColumnOrder: []string{"代码", "名称", "最新价", "涨跌幅", "成交量(万手)", "成交额(亿)"},
	}

	// 2. 执行拉取
	table, err := NewRankingClient(5*time.Second).FetchRanking(context.Background(), opt)

	// 3. 验证归一化结果
	assert.NoError(t, err)
	assert.Equal(t, "测试A股", table.MarketName)
	assert.Equal(t, model.MarketTypeAShare, table.MarketType)
	assert.Len(t, table.Rows, 2)

	// 正常行：数值转字符串，成交量/成交额按万/亿换算保留两位
	first := table.Rows[0]
	assert.Equal(t, "600000", first["代码"])
	assert.Equal(t, "浦发银行", first["名称"])
	assert.Equal(t, "10.52", first["最新价"])
	assert.Equal(t, "-", first["涨跌幅"], "响应里缺的字段应该补-")
	assert.Equal(t, "12.35", first["成交量(万手)"])
	assert.Equal(t, "12.35", first["成交额(亿)"])

	// 停牌行：null和"-"都原样透传为占位
	second := table.Rows[1]
	assert.Equal(t, "-", second["最新价"])
	assert.Equal(t, "-", second["成交量(万手)"])
	assert.Equal(t, "-", second["成交额(亿)"])

	// 展示列按配置顺序
	assert.Equal(t, opt.ColumnOrder, table.Columns)
}

func TestRankingClient_FetchRanking_KeyedDiff(t *testing.T) {
	// 港股接口np=2时diff是行号做键的对象，需要按数值顺序还原
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"total":3,"diff":{"10":{"f12":"02318","f14":"中国平安"},"2":{"f12":"00941","f14":"中国移动"},"1":{"f12":"00700","f14":"腾讯控股"}}}}`))
	}))
	defer ts.Close()

	opt := &MarketOption{
		Name:        "测试港股",
		MarketType:  model.MarketTypeHKShare,
		URL:         ts.URL,
		Fields:      []string{"f12", "f14"},
		Labels:      map[string]string{"f12": "代码", "f14": "名称"},
		ColumnOrder: []string{"代码", "名称"},
	}

	table, err := NewRankingClient(5*time.Second).FetchRanking(context.Background(), opt)

	assert.NoError(t, err)
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, "00700", table.Rows[0]["代码"], "行号1应该排第一")
	assert.Equal(t, "00941", table.Rows[1]["代码"])
	assert.Equal(t, "02318", table.Rows[2]["代码"], "行号10应该按数值排在2之后")
}

func TestRankingClient_FetchRanking_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	opt := &MarketOption{Name: "测试A股", URL: ts.URL, Fields: []string{"f12"}}
	_, err := NewRankingClient(5*time.Second).FetchRanking(context.Background(), opt)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "状态码 500")
}

func TestRankingClient_FetchRanking_InvalidJSONP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not a jsonp response`))
	}))
	defer ts.Close()

	opt := &MarketOption{Name: "测试A股", URL: ts.URL, JSONP: true, Fields: []string{"f12"}}
	_, err := NewRankingClient(5*time.Second).FetchRanking(context.Background(), opt)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JSONP格式无效")
}

func TestRankingClient_FetchRanking_EmptyDiff(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"total":0,"diff":[]}}`))
	}))
	defer ts.Close()

	opt := &MarketOption{Name: "测试A股", URL: ts.URL, Fields: []string{"f12"}, Labels: map[string]string{"f12": "代码"}}
	table, err := NewRankingClient(5*time.Second).FetchRanking(context.Background(), opt)

	assert.NoError(t, err, "接口正常但没有数据不算错误")
	assert.True(t, table.Empty())
}

func TestRankingClient_FetchRanking_NullData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer ts.Close()

	opt := &MarketOption{Name: "测试A股", URL: ts.URL, Fields: []string{"f12"}}
	table, err := NewRankingClient(5*time.Second).FetchRanking(context.Background(), opt)

	assert.NoError(t, err)
	assert.True(t, table.Empty())
}

func TestRankingTable_Empty(t *testing.T) {
	var nilTable *RankingTable
	assert.True(t, nilTable.Empty())
	assert.True(t, (&RankingTable{}).Empty())
	assert.False(t, (&RankingTable{Rows: []map[string]string{{"代码": "600000"}}}).Empty())
}
