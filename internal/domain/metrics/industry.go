package metrics

import "strings"

// Stat 為產業層級預先計算的統計值，欄位皆為可選。
type Stat struct {
	Avg *float64 `json:"평균,omitempty"`
	Max *float64 `json:"최고,omitempty"`
	Min *float64 `json:"최저,omitempty"`
}

// IndustryAggregate 為產業內跨公司的年度平均與統計。
type IndustryAggregate struct {
	Name      string            `json:"name"`
	Metrics   map[Metric]Series `json:"metrics"`
	Companies []string          `json:"companies"`
	Stats     map[Metric]Stat   `json:"stats,omitempty"`
}

// Series 取得指定指標的產業平均序列。
func (a IndustryAggregate) Series(m Metric) Series {
	if a.Metrics == nil {
		return nil
	}
	return a.Metrics[m]
}

// HasCompany 檢查公司是否屬於此產業。
func (a IndustryAggregate) HasCompany(name string) bool {
	for _, c := range a.Companies {
		if c == name {
			return true
		}
	}
	return false
}

// Clone 深拷貝產業資料。
func (a IndustryAggregate) Clone() IndustryAggregate {
	out := IndustryAggregate{Name: a.Name}
	if a.Metrics != nil {
		out.Metrics = make(map[Metric]Series, len(a.Metrics))
		for m, s := range a.Metrics {
			out.Metrics[m] = s.Clone()
		}
	}
	if a.Companies != nil {
		out.Companies = append([]string(nil), a.Companies...)
	}
	if a.Stats != nil {
		out.Stats = make(map[Metric]Stat, len(a.Stats))
		for m, st := range a.Stats {
			out.Stats[m] = Stat{Avg: clonePtr(st.Avg), Max: clonePtr(st.Max), Min: clonePtr(st.Min)}
		}
	}
	return out
}

// NormalizeIndustry 去除前後空白，產業名比對皆以此為準。
func NormalizeIndustry(name string) string {
	return strings.TrimSpace(name)
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	val := *v
	return &val
}
