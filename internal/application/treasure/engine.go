package treasure

import (
	"cmp"
	"slices"
	"sort"
	"strings"

	"kospi-treasure/internal/domain/metrics"
)

const defaultThreshold = 5.0

// DefaultThresholds 為各指標判定「差距大」的門檻，未列出者使用 defaultThreshold。
var DefaultThresholds = map[metrics.Metric]float64{
	metrics.MetricPBR: 0.5,
	metrics.MetricROE: 7,
}

// Engine 提供三年平均、有效性判斷、區間篩選、排序與產業比較等純函式。
// 所有方法不修改輸入、無共享可變狀態，可併發呼叫。
type Engine struct {
	years            []string
	thresholds       map[metrics.Metric]float64
	defaultThreshold float64
	zeroAsMissing    bool
}

// Option 調整 Engine 設定。
type Option func(*Engine)

// WithYears 指定平均所使用的年度視窗。
func WithYears(years []string) Option {
	return func(e *Engine) {
		if len(years) > 0 {
			e.years = append([]string(nil), years...)
		}
	}
}

// WithThreshold 覆寫單一指標的比較門檻。
func WithThreshold(m metrics.Metric, v float64) Option {
	return func(e *Engine) {
		if v > 0 {
			e.thresholds[m] = v
		}
	}
}

// WithZeroAsMissing 設定平均為 0 時是否視為缺資料（來源資料以 0 代表無資料）。
func WithZeroAsMissing(on bool) Option {
	return func(e *Engine) {
		e.zeroAsMissing = on
	}
}

// NewEngine 建立計算引擎，預設使用 2022~2024 與 PBR 0.5 / ROE 7 / 其他 5 的門檻。
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		years:            append([]string(nil), metrics.DefaultYears...),
		thresholds:       make(map[metrics.Metric]float64, len(DefaultThresholds)),
		defaultThreshold: defaultThreshold,
		zeroAsMissing:    true,
	}
	for m, v := range DefaultThresholds {
		e.thresholds[m] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Years 回傳年度視窗的副本。
func (e *Engine) Years() []string {
	return append([]string(nil), e.years...)
}

// Threshold 回傳指標的比較門檻。
func (e *Engine) Threshold(m metrics.Metric) float64 {
	if v, ok := e.thresholds[m]; ok {
		return v
	}
	return e.defaultThreshold
}

// Average 計算序列在年度視窗內的平均；沒有任何數值時回傳 false。
func (e *Engine) Average(s metrics.Series) (float64, bool) {
	return s.Average(e.years)
}

// RatioAverages 計算 PER/PBR/ROE 三個比率的平均。
func (e *Engine) RatioAverages(r metrics.CompanyRecord) map[metrics.Metric]*float64 {
	out := make(map[metrics.Metric]*float64, len(metrics.RatioMetrics))
	for _, m := range metrics.RatioMetrics {
		if v, ok := e.Average(r.Series(m)); ok {
			val := v
			out[m] = &val
		} else {
			out[m] = nil
		}
	}
	return out
}

// IsValid 三個比率的平均皆存在且（預設）不為 0 才算有效。
// 0 在上游被當成「無資料」，因此真正為 0 的比率也會被排除。
func (e *Engine) IsValid(r metrics.CompanyRecord) bool {
	for _, m := range metrics.RatioMetrics {
		avg, ok := e.Average(r.Series(m))
		if !ok {
			return false
		}
		if e.zeroAsMissing && avg == 0 {
			return false
		}
	}
	return true
}

// Filter 依產業與三個比率的閉區間篩選，保留原始相對順序並回傳新切片。
func (e *Engine) Filter(records []metrics.CompanyRecord, spec metrics.FilterSpec) []metrics.CompanyRecord {
	allIndustries := metrics.IsAllIndustries(spec.Industry)
	industry := metrics.NormalizeIndustry(spec.Industry)

	out := make([]metrics.CompanyRecord, 0, len(records))
	for _, r := range records {
		if !allIndustries && metrics.NormalizeIndustry(r.Industry) != industry {
			continue
		}
		if !e.IsValid(r) {
			continue
		}
		if !e.inRanges(r, spec) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (e *Engine) inRanges(r metrics.CompanyRecord, spec metrics.FilterSpec) bool {
	for _, m := range metrics.RatioMetrics {
		rng, _ := spec.RangeFor(m)
		avg, ok := e.Average(r.Series(m))
		if !ok || !rng.Contains(avg) {
			return false
		}
	}
	return true
}

// SortBy 依指定指標的三年平均排序並回傳新切片；同值維持原順序。
// 無法計算平均的紀錄不論方向一律排在最後。
func (e *Engine) SortBy(records []metrics.CompanyRecord, field metrics.Metric, dir metrics.Direction) []metrics.CompanyRecord {
	type keyed struct {
		rec metrics.CompanyRecord
		key float64
		ok  bool
	}
	items := make([]keyed, len(records))
	for i, r := range records {
		k, ok := e.Average(r.Series(field))
		items[i] = keyed{rec: r, key: k, ok: ok}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case !a.ok && !b.ok:
			return 0
		case !a.ok:
			return 1
		case !b.ok:
			return -1
		}
		if dir == metrics.Desc {
			return cmp.Compare(b.key, a.key)
		}
		return cmp.Compare(a.key, b.key)
	})

	out := make([]metrics.CompanyRecord, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

// Compare 比較公司與產業平均；任一方無資料時回傳資料不足的結果而非錯誤。
func (e *Engine) Compare(metric metrics.Metric, company string, companySeries, industrySeries metrics.Series) metrics.Verdict {
	companyAvg, ok := e.Average(companySeries)
	if !ok {
		return metrics.InsufficientVerdict(metric, company)
	}
	industryAvg, ok := e.Average(industrySeries)
	if !ok {
		return metrics.InsufficientVerdict(metric, company)
	}

	diff := companyAvg - industryAvg
	direction := metrics.Below
	if diff > 0 {
		direction = metrics.Above
	}
	if diff < 0 {
		diff = -diff
	}

	threshold := e.Threshold(metric)
	gap := metrics.GapWide
	if diff < threshold {
		gap = metrics.GapNarrow
	}

	return metrics.Verdict{
		Metric:      metric,
		Company:     company,
		CompanyAvg:  companyAvg,
		IndustryAvg: industryAvg,
		Diff:        diff,
		Threshold:   threshold,
		Direction:   direction,
		Gap:         gap,
	}
}

// Industries 回傳去重、排序後的產業名稱。
func Industries(records []metrics.CompanyRecord) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0)
	for _, r := range records {
		name := metrics.NormalizeIndustry(r.Industry)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasAnyRatio 清理步驟：PER、PBR、ROE 至少各有一個數值才保留。
func HasAnyRatio(r metrics.CompanyRecord) bool {
	for _, m := range metrics.RatioMetrics {
		if !r.Series(m).HasAny() {
			return false
		}
	}
	return true
}

// FindByName 依名稱尋找紀錄，忽略前後空白與大小寫。
func FindByName(records []metrics.CompanyRecord, name string) (metrics.CompanyRecord, bool) {
	name = strings.TrimSpace(name)
	for _, r := range records {
		if strings.EqualFold(strings.TrimSpace(r.Name), name) {
			return r, true
		}
	}
	return metrics.CompanyRecord{}, false
}
