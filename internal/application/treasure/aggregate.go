package treasure

import (
	"sort"

	"kospi-treasure/internal/domain/metrics"
)

// BuildIndustryAggregates 以成員公司的年度數值平均推導產業資料，
// 用於只有公司資料、缺少產業檔案的情境。
func BuildIndustryAggregates(e *Engine, records []metrics.CompanyRecord, metricList []metrics.Metric) map[string]metrics.IndustryAggregate {
	groups := make(map[string][]metrics.CompanyRecord)
	for _, r := range records {
		name := metrics.NormalizeIndustry(r.Industry)
		if name == "" {
			continue
		}
		groups[name] = append(groups[name], r)
	}

	out := make(map[string]metrics.IndustryAggregate, len(groups))
	for name, members := range groups {
		agg := metrics.IndustryAggregate{
			Name:    name,
			Metrics: make(map[metrics.Metric]metrics.Series, len(metricList)),
			Stats:   make(map[metrics.Metric]metrics.Stat, len(metricList)),
		}
		for _, r := range members {
			agg.Companies = append(agg.Companies, r.Name)
		}
		sort.Strings(agg.Companies)

		for _, m := range metricList {
			agg.Metrics[m] = yearlyMean(e.years, members, m)
			agg.Stats[m] = MemberStats(e, members, m)
		}
		out[name] = agg
	}
	return out
}

func yearlyMean(years []string, members []metrics.CompanyRecord, m metrics.Metric) metrics.Series {
	s := make(metrics.Series, len(years))
	for _, y := range years {
		var sum float64
		n := 0
		for _, r := range members {
			if v, ok := r.Series(m).Value(y); ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			s[y] = nil
			continue
		}
		avg := sum / float64(n)
		s[y] = &avg
	}
	return s
}

// MemberStats 計算成員公司三年平均的平均/最高/最低；沒有資料的公司略過。
func MemberStats(e *Engine, members []metrics.CompanyRecord, m metrics.Metric) metrics.Stat {
	var (
		sum      float64
		n        int
		min, max float64
	)
	for _, r := range members {
		v, ok := e.Average(r.Series(m))
		if !ok {
			continue
		}
		if n == 0 || v < min {
			min = v
		}
		if n == 0 || v > max {
			max = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return metrics.Stat{}
	}
	avg := sum / float64(n)
	return metrics.Stat{Avg: &avg, Max: &max, Min: &min}
}
