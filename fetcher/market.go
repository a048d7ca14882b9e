package fetcher

import (
	"wealth-stock-data-service/model"
)

// MarketOption 单个市场的排行接口请求配置
type MarketOption struct {
	Name        string            // 市场中文名
	MarketType  string            // 市场类型，决定详情抓取走哪个脚本
	URL         string            // clist接口地址
	JSONP       bool              // A股接口返回JSONP，需剥掉回调包装
	Params      map[string]string // 固定请求参数，fs和fields单独拼
	FS          string            // 市场筛选串
	Fields      []string          // 请求字段及顺序
	Labels      map[string]string // 字段码 -> 中文列名
	ColumnOrder []string          // 归一化后的展示列顺序
}

// MarketOptions 支持的市场，目录刷新按此顺序全量跑
var MarketOptions = []MarketOption{
	{
		Name:       "沪深京A股",
		MarketType: model.MarketTypeAShare,
		URL:        "http://push2.eastmoney.com/api/qt/clist/get",
		JSONP:      true,
		Params: map[string]string{
			"cb":    "jQuery112405034891155096131_1589169999999",
			"pn":    "1",
			"pz":    "500",
			"np":    "1",
			"ut":    "bd1d9ddb040897001ac3b38159e2164a",
			"fltt":  "2",
			"invt":  "2",
			"wbp2u": "||0|0|0|web",
			"fid":   "f3",
			"po":    "0",
		},
		FS: "m:0 t:6,m:0 t:80,m:1 t:2,m:1 t:23",
		Fields: []string{
			"f12", "f14", "f2", "f3", "f4", "f5", "f6", "f7",
			"f8", "f15", "f16", "f17", "f18", "f10", "f9", "f23",
		},
		Labels: map[string]string{
			"f12": "代码", "f14": "名称", "f2": "最新价", "f3": "涨跌幅", "f4": "涨跌额",
			"f5": "成交量(手)", "f6": "成交额", "f7": "振幅", "f8": "换手率", "f15": "最高",
			"f16": "最低", "f17": "今开", "f18": "昨收", "f10": "量比", "f9": "市盈率(动态)", "f23": "市净率",
		},
		ColumnOrder: []string{
			"代码", "名称", "最新价", "涨跌幅", "涨跌额",
			"市盈率(动态)", "市净率", "量比",
			"成交量(万手)", "成交额(亿)", "换手率", "振幅",
			"最高", "最低", "今开", "昨收",
		},
	},
	{
		Name:       "知名港股",
		MarketType: model.MarketTypeHKShare,
		URL:        "https://69.push2.eastmoney.com/api/qt/clist/get",
		JSONP:      false,
		Params: map[string]string{
			"pn":    "1",
			"pz":    "50000",
			"po":    "1",
			"np":    "2",
			"ut":    "bd1d9ddb04089700cf9c27f6f7426281",
			"fltt":  "2",
			"invt":  "2",
			"dect":  "1",
			"wbp2u": "|0|0|0|web",
			"fid":   "f3",
		},
		FS: "b:DLMK0106",
		Fields: []string{
			"f12", "f14", "f2", "f3", "f4", "f5", "f6", "f15", "f16", "f17", "f18",
		},
		Labels: map[string]string{
			"f12": "代码", "f14": "名称", "f2": "最新价", "f3": "涨跌幅", "f4": "涨跌额",
			"f5": "成交量(股)", "f6": "成交额(港元)", "f15": "最高", "f16": "最低",
			"f17": "今开", "f18": "昨收",
		},
		ColumnOrder: []string{
			"代码", "名称", "最新价", "涨跌额", "涨跌幅",
			"今开", "最高", "最低", "昨收",
			"成交量(万股)", "成交额(亿港元)",
		},
	},
}

// 成交量/成交额的单位换算，换算后替换原列名
var unitConversions = []struct {
	From string
	To   string
	Div  float64
}{
	{"成交量(手)", "成交量(万手)", 1e4},
	{"成交额", "成交额(亿)", 1e8},
	{"成交量(股)", "成交量(万股)", 1e4},
	{"成交额(港元)", "成交额(亿港元)", 1e8},
}

// FindMarketOption 按市场中文名找配置，找不到返回nil
func FindMarketOption(name string) *MarketOption {
	for i := range MarketOptions {
		if MarketOptions[i].Name == name {
			return &MarketOptions[i]
		}
	}
	return nil
}

// MarketNameForType 市场类型对应的展示名，错误文案用
func MarketNameForType(marketType string) string {
	for i := range MarketOptions {
		if MarketOptions[i].MarketType == marketType {
			return MarketOptions[i].Name
		}
	}
	return marketType
}
