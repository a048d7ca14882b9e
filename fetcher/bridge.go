package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// SplitTable pandas split方向序列化的二维表
type SplitTable struct {
	Columns []string        `json:"columns"`
	Index   []interface{}   `json:"index"`
	Data    [][]interface{} `json:"data"`
}

// DetailResult 一次财务详情抓取的归一化结果
// 任何失败模式都转成兜底表加非空错误信息，调用方不需要再防异常
type DetailResult struct {
	Table *SplitTable            // 财务指标表，失败时为N/A兜底表
	Raw   map[string]interface{} // 原始payload
	Err   string                 // 错误描述，成功为空串
}

// OK 详情抓取成功
func (r DetailResult) OK() bool {
	return r.Err == ""
}

// 子进程stdout承诺的JSON对象
type bridgeEnvelope struct {
	Dataframe *string                `json:"dataframe"`
	RawData   map[string]interface{} `json:"raw_data"`
	Error     *string                `json:"error"`
}

// FallbackFinancialData 失败兜底：一行N/A指标表和占位raw
func FallbackFinancialData() (*SplitTable, map[string]interface{}) {
	table := &SplitTable{
		Columns: []string{"指标", "总市值", "净资产", "净利润", "市盈率(动)", "市净率", "毛利率", "ROE"},
		Index:   []interface{}{float64(0)},
		Data: [][]interface{}{
			{"N/A", "N/A", "N/A", "N/A", "N/A", "N/A", "N/A", "N/A"},
		},
	}
	raw := map[string]interface{}{
		"stock_name":      "N/A",
		"industry_name":   "N/A",
		"comparison_data": map[string]interface{}{},
	}
	return table, raw
}

func fallbackResult(errMsg string) DetailResult {
	table, raw := FallbackFinancialData()
	return DetailResult{Table: table, Raw: raw, Err: errMsg}
}

// runDetailScript 启动一次详情抓取子进程并解析stdout里的JSON
// marketName只用于错误文案；超时由timeout硬限制
func runDetailScript(ctx context.Context, bin, script, stockCode, marketName string, timeout time.Duration) DetailResult {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, script, stockCode)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fallbackResult(fmt.Sprintf("获取 %s 财务数据超时", marketName))
	}

	stdoutStr := decodeSubprocessOutput(stdout.Bytes())
	stderrStr := decodeSubprocessOutput(stderr.Bytes())

	// 退出码非零且stdout为空：子进程没跑起来或直接崩了
	if runErr != nil && stdoutStr == "" {
		errMsg := fmt.Sprintf("子进程 %s 执行失败或无返回。", script)
		if stderrStr != "" {
			errMsg += fmt.Sprintf(" 错误信息: %s", stderrStr)
		}
		return fallbackResult(errMsg)
	}

	jsonStr, found := extractJSONObject(stdoutStr)
	if !found {
		return fallbackResult(fmt.Sprintf("无法从子进程输出中提取有效的JSON数据。原始输出: %s...", truncateRunes(stdoutStr, 200)))
	}

	var envelope bridgeEnvelope
	if err := jsonIter.UnmarshalFromString(jsonStr, &envelope); err != nil {
		return fallbackResult(fmt.Sprintf("处理 %s 财务数据子进程时出错: %v", marketName, err))
	}

	var table *SplitTable
	if envelope.Dataframe != nil && *envelope.Dataframe != "" {
		table = new(SplitTable)
		if err := jsonIter.UnmarshalFromString(*envelope.Dataframe, table); err != nil {
			return fallbackResult(fmt.Sprintf("处理 %s 财务数据子进程时出错: %v", marketName, err))
		}
	}

	raw := envelope.RawData
	if raw == nil {
		raw = map[string]interface{}{}
	}
	errMsg := ""
	if envelope.Error != nil {
		errMsg = *envelope.Error
	}

	// 表为空但脚本没报错，补一条说明；表为空时连raw一起换成兜底
	if table == nil && errMsg == "" {
		errMsg = fmt.Sprintf("从 %s 未能获取 %s 的有效数据。", script, stockCode)
	}
	if table == nil {
		table, raw = FallbackFinancialData()
	}

	return DetailResult{Table: table, Raw: raw, Err: errMsg}
}

// decodeSubprocessOutput 先按UTF-8读，非法时回退GBK有损解码
func decodeSubprocessOutput(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}

// extractJSONObject 取首个最外层配平的大括号片段
// 子进程可能在JSON前后混入调试日志，这里只认第一个完整对象
func extractJSONObject(s string) (string, bool) {
	level := 0
	start := -1
	for i, ch := range s {
		switch ch {
		case '{':
			if level == 0 {
				start = i
			}
			level++
		case '}':
			if level > 0 {
				level--
				if level == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
