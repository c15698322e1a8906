package metrics

import "strings"

// Metric 為財務指標名稱，沿用資料來源的欄位鍵。
type Metric string

const (
	MetricPER                  Metric = "PER"
	MetricPBR                  Metric = "PBR"
	MetricROE                  Metric = "ROE"
	MetricDPS                  Metric = "DPS"
	MetricMarketCap            Metric = "시가총액"
	MetricControllingEquity    Metric = "지배주주지분"
	MetricControllingNetIncome Metric = "지배주주순이익"
)

// RatioMetrics 為尋寶篩選必備的三個比率。
var RatioMetrics = []Metric{MetricPER, MetricPBR, MetricROE}

// CompanyMetrics 為公司紀錄上會出現的全部指標。
var CompanyMetrics = []Metric{
	MetricPER,
	MetricPBR,
	MetricROE,
	MetricDPS,
	MetricMarketCap,
	MetricControllingEquity,
	MetricControllingNetIncome,
}

var metricAliases = map[string]Metric{
	"per":                    MetricPER,
	"pbr":                    MetricPBR,
	"roe":                    MetricROE,
	"dps":                    MetricDPS,
	"market_cap":             MetricMarketCap,
	"marketcap":              MetricMarketCap,
	"equity":                 MetricControllingEquity,
	"controlling_equity":     MetricControllingEquity,
	"net_income":             MetricControllingNetIncome,
	"controlling_net_income": MetricControllingNetIncome,
}

// ParseMetric 解析查詢參數中的指標名稱，支援英文別名與原始韓文鍵。
func ParseMetric(s string) (Metric, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if m, ok := metricAliases[strings.ToLower(s)]; ok {
		return m, true
	}
	for _, m := range CompanyMetrics {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}
