package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// RankingTable 某市场排行数据的归一化结果，列名已换算为展示口径
type RankingTable struct {
	MarketName string              `json:"marketName"`
	MarketType string              `json:"marketType"`
	Columns    []string            `json:"columns"`
	Rows       []map[string]string `json:"rows"`
}

// Empty 无行数据
func (t *RankingTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// clist接口响应外壳，diff两种形态延迟解析
type clistEnvelope struct {
	Data *struct {
		Total int             `json:"total"`
		Diff  json.RawMessage `json:"diff"`
	} `json:"data"`
}

// RankingClient 东财clist排行接口客户端
type RankingClient struct {
	cli *resty.Client
}

func NewRankingClient(timeout time.Duration) *RankingClient {
	cli := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36").
		SetHeader("Referer", "https://quote.eastmoney.com/")
	return &RankingClient{cli: cli}
}

// FetchRanking 拉取一个市场的排行数据并按配置归一化
// 接口异常或响应不可解析时返回error，目录刷新对该市场跳过
func (c *RankingClient) FetchRanking(ctx context.Context, opt *MarketOption) (*RankingTable, error) {
	params := map[string]string{
		"fs":     opt.FS,
		"fields": strings.Join(opt.Fields, ","),
	}
	for k, v := range opt.Params {
		params[k] = v
	}

	resp, err := c.cli.R().SetContext(ctx).SetQueryParams(params).Get(opt.URL)
	if err != nil {
		return nil, fmt.Errorf("请求 %s 排行数据失败: %w", opt.Name, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("请求 %s 排行数据失败: 状态码 %d", opt.Name, resp.StatusCode())
	}

	body := resp.String()
	if opt.JSONP {
		start := strings.Index(body, "(")
		end := strings.LastIndex(body, ")")
		if start == -1 || end == -1 || start >= end {
			return nil, fmt.Errorf("%s 返回的JSONP格式无效", opt.Name)
		}
		body = body[start+1 : end]
	}

	var envelope clistEnvelope
	if err := jsonIter.UnmarshalFromString(body, &envelope); err != nil {
		return nil, fmt.Errorf("解析 %s 排行数据失败: %w", opt.Name, err)
	}

	table := &RankingTable{
		MarketName: opt.Name,
		MarketType: opt.MarketType,
	}
	if envelope.Data == nil || len(envelope.Data.Diff) == 0 {
		return table, nil
	}

	rawRows, err := parseDiff(envelope.Data.Diff)
	if err != nil {
		return nil, fmt.Errorf("解析 %s 排行数据失败: %w", opt.Name, err)
	}

	table.Rows = make([]map[string]string, 0, len(rawRows))
	for _, raw := range rawRows {
		table.Rows = append(table.Rows, normalizeRow(opt, raw))
	}
	table.Columns = presentColumns(opt, table.Rows)
	return table, nil
}

// parseDiff 兼容diff的两种形态：np=1时是数组，np=2时是行号做键的对象
func parseDiff(raw json.RawMessage) ([]map[string]interface{}, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var rows []map[string]interface{}
		if err := jsonIter.UnmarshalFromString(trimmed, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}

	var keyed map[string]map[string]interface{}
	if err := jsonIter.UnmarshalFromString(trimmed, &keyed); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	// 键是行号，按数值排序还原接口给出的顺序
	sort.Slice(keys, func(i, j int) bool {
		a, erra := strconv.Atoi(keys[i])
		b, errb := strconv.Atoi(keys[j])
		if erra != nil || errb != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	rows := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, keyed[k])
	}
	return rows, nil
}

// normalizeRow 字段码转中文列名并做单位换算
func normalizeRow(opt *MarketOption, raw map[string]interface{}) map[string]string {
	row := make(map[string]string, len(opt.Fields))
	for _, field := range opt.Fields {
		label := opt.Labels[field]
		value, ok := raw[field]
		if !ok {
			row[label] = "-"
			continue
		}
		converted := false
		for _, conv := range unitConversions {
			if label != conv.From {
				continue
			}
			converted = true
			if num, isNum := asFloat(value); isNum {
				scaled := math.Round(num/conv.Div*100) / 100
				row[conv.To] = strconv.FormatFloat(scaled, 'f', -1, 64)
			} else {
				row[conv.To] = "-"
			}
			break
		}
		if !converted {
			row[label] = displayValue(value)
		}
	}
	return row
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// displayValue 数值转字符串，停牌等非数值占位原样透传
func displayValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// presentColumns 按配置顺序保留实际出现的列
func presentColumns(opt *MarketOption, rows []map[string]string) []string {
	if len(rows) == 0 {
		return nil
	}
	columns := make([]string, 0, len(opt.ColumnOrder))
	for _, col := range opt.ColumnOrder {
		if _, ok := rows[0][col]; ok {
			columns = append(columns, col)
		}
	}
	return columns
}
