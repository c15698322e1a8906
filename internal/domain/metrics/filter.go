package metrics

import "strings"

const (
	// AllIndustries 表示不限產業。
	AllIndustries = "all"
	// allIndustriesKo 為前端下拉選單使用的同義值。
	allIndustriesKo = "전체"
)

// IsAllIndustries 判斷產業條件是否為「全部」。
func IsAllIndustries(industry string) bool {
	industry = strings.TrimSpace(industry)
	return industry == "" || strings.EqualFold(industry, AllIndustries) || industry == allIndustriesKo
}

// Range 為閉區間 [Min, Max]。
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains 兩端皆包含。
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterSpec 為尋寶畫面的篩選條件。
type FilterSpec struct {
	Industry string `json:"industry"`
	PER      Range  `json:"per_range"`
	PBR      Range  `json:"pbr_range"`
	ROE      Range  `json:"roe_range"`
}

// DefaultFilterSpec 與前端預設滑桿一致。
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		Industry: AllIndustries,
		PER:      Range{Min: 0, Max: 50},
		PBR:      Range{Min: 0, Max: 3},
		ROE:      Range{Min: 0, Max: 30},
	}
}

// RangeFor 依指標取得對應區間。
func (f FilterSpec) RangeFor(m Metric) (Range, bool) {
	switch m {
	case MetricPER:
		return f.PER, true
	case MetricPBR:
		return f.PBR, true
	case MetricROE:
		return f.ROE, true
	default:
		return Range{}, false
	}
}

// Direction 為排序方向。
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection 未知值一律視為遞增。
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortSpec 指定排序指標與方向。
type SortSpec struct {
	Field     Metric    `json:"field"`
	Direction Direction `json:"direction"`
}
