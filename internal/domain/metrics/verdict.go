package metrics

// GapDirection 表示公司相對產業平均的位置。
type GapDirection string

const (
	Above GapDirection = "above"
	Below GapDirection = "below"
)

// GapClass 表示差距大小分類。
type GapClass string

const (
	GapNarrow GapClass = "narrow difference"
	GapWide   GapClass = "wide gap"
)

// Verdict 為公司與產業平均比較的結構化結果；文字呈現交由上層。
// Insufficient 為 true 時其餘數值欄位無意義。
type Verdict struct {
	Metric       Metric       `json:"metric"`
	Company      string       `json:"company"`
	CompanyAvg   float64      `json:"company_avg"`
	IndustryAvg  float64      `json:"industry_avg"`
	Diff         float64      `json:"diff"`
	Threshold    float64      `json:"threshold"`
	Direction    GapDirection `json:"direction,omitempty"`
	Gap          GapClass     `json:"gap_class,omitempty"`
	Insufficient bool         `json:"insufficient"`
}

// InsufficientVerdict 建立資料不足的結果。
func InsufficientVerdict(metric Metric, company string) Verdict {
	return Verdict{Metric: metric, Company: company, Insufficient: true}
}
