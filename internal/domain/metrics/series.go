package metrics

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultYears 為三年平均所使用的固定年度視窗。
var DefaultYears = []string{"2022", "2023", "2024"}

// Series 為「年度 → 數值」的對應；nil 代表缺值或非數值。
// 年度不需連續，也不保證齊全。
type Series map[string]*float64

// Value 取得指定年度的數值，缺值、非數值或非有限數時回傳 false。
func (s Series) Value(year string) (float64, bool) {
	v, ok := s[year]
	if !ok || v == nil {
		return 0, false
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// Average 計算指定年度中有數值者的算術平均；皆無數值時回傳 false，不會捏造 0。
func (s Series) Average(years []string) (float64, bool) {
	var sum float64
	n := 0
	for _, y := range years {
		v, ok := s.Value(y)
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// HasAny 檢查序列中是否至少有一筆數值（不限年度）。
func (s Series) HasAny() bool {
	for y := range s {
		if _, ok := s.Value(y); ok {
			return true
		}
	}
	return false
}

// Years 回傳已排序的年度清單。
func (s Series) Years() []string {
	out := make([]string, 0, len(s))
	for y := range s {
		out = append(out, y)
	}
	sort.Strings(out)
	return out
}

// Clone 深拷貝，避免呼叫端與儲存層共用指標。
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	for y, v := range s {
		if v == nil {
			out[y] = nil
			continue
		}
		val := *v
		out[y] = &val
	}
	return out
}

// UnmarshalJSON 容忍上游不一致的資料：
// 非物件整體視為空序列，數字以外的值（null、字串、布林…）一律視為缺值。
func (s *Series) UnmarshalJSON(data []byte) error {
	out := Series{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = out
		return nil
	}
	for year, msg := range raw {
		out[year] = decodeNumber(msg)
	}
	*s = out
	return nil
}

// ParseNumber 解析單一 JSON 值，只有有限數字會回傳非 nil。
func ParseNumber(msg json.RawMessage) *float64 {
	return decodeNumber(msg)
}

func decodeNumber(msg json.RawMessage) *float64 {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	num, ok := v.(json.Number)
	if !ok {
		return nil
	}
	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// SeriesOf 以純數值 map 建立序列，方便 seed 與測試。
func SeriesOf(values map[string]float64) Series {
	out := make(Series, len(values))
	for y, v := range values {
		val := v
		out[y] = &val
	}
	return out
}

// Float 取址輔助。
func Float(v float64) *float64 { return &v }

// Round2 四捨五入到小數點後兩位，僅供顯示使用；比較與排序一律使用原值。
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundPtr 對可選值做 Round2。
func RoundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}

// MergeYears 合併多個序列的年度並排序，供圖表對齊使用。
func MergeYears(series ...Series) []string {
	var out []string
	for _, s := range series {
		for y := range s {
			if !slices.Contains(out, y) {
				out = append(out, y)
			}
		}
	}
	sort.Strings(out)
	return out
}
