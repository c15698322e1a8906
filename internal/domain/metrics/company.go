package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	keyCompanyName = "기업명"
	keyIndustry    = "업종명"
	keyIndicators  = "지표"

	// UnknownName 為原始資料缺少名稱時的預設值。
	UnknownName = "알 수 없음"
)

// CompanyRecord 為單一公司的年度指標紀錄，取得後即視為不可變。
type CompanyRecord struct {
	Name     string
	Industry string
	Metrics  map[Metric]Series
}

// Series 取得指定指標的序列；不存在時回傳空序列，不會 panic。
func (r CompanyRecord) Series(m Metric) Series {
	if r.Metrics == nil {
		return nil
	}
	return r.Metrics[m]
}

// Validate 基礎必填檢查，供載入資料時使用。
func (r CompanyRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("company name is required")
	}
	return nil
}

// Clone 深拷貝紀錄。
func (r CompanyRecord) Clone() CompanyRecord {
	out := CompanyRecord{Name: r.Name, Industry: r.Industry}
	if r.Metrics != nil {
		out.Metrics = make(map[Metric]Series, len(r.Metrics))
		for m, s := range r.Metrics {
			out.Metrics[m] = s.Clone()
		}
	}
	return out
}

// MarshalJSON 輸出與前端一致的扁平結構：{기업명, 업종명, PER: {...}, ...}。
func (r CompanyRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Metrics)+2)
	out[keyCompanyName] = r.Name
	out[keyIndustry] = r.Industry
	for m, s := range r.Metrics {
		if s == nil {
			s = Series{}
		}
		out[string(m)] = s
	}
	return json.Marshal(out)
}

// UnmarshalJSON 解析扁平結構；名稱欄位非字串時視為空值，
// 其餘欄位只要是物件就當作指標序列。
func (r *CompanyRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("company record must be an object: %w", err)
	}
	rec := CompanyRecord{Metrics: make(map[Metric]Series)}
	for key, msg := range raw {
		switch key {
		case keyCompanyName:
			rec.Name = decodeString(msg)
		case keyIndustry:
			rec.Industry = decodeString(msg)
		default:
			if !isObject(msg) {
				continue
			}
			var s Series
			_ = s.UnmarshalJSON(msg)
			rec.Metrics[Metric(key)] = s
		}
	}
	*r = rec
	return nil
}

// RawCompanyDoc 為儲存層原始文件：指標以「2024/12_PER」形式攤平在 지표 之下。
type RawCompanyDoc struct {
	Name       string                     `json:"기업명"`
	Industry   string                     `json:"업종명"`
	StockCode  string                     `json:"종목코드,omitempty"`
	Indicators map[string]json.RawMessage `json:"지표"`
}

// IndicatorKey 組出原始文件的指標鍵，例如 2024/12_PER。
func IndicatorKey(year string, m Metric) string {
	return year + "/12_" + string(m)
}

// ToRecord 將原始文件投影成尋寶用紀錄，只取 years 內的年度。
func (d RawCompanyDoc) ToRecord(years []string, metrics []Metric) CompanyRecord {
	name := d.Name
	if name == "" {
		name = UnknownName
	}
	industry := d.Industry
	if industry == "" {
		industry = UnknownName
	}
	rec := CompanyRecord{
		Name:     name,
		Industry: industry,
		Metrics:  make(map[Metric]Series, len(metrics)),
	}
	for _, m := range metrics {
		s := make(Series, len(years))
		for _, y := range years {
			msg, ok := d.Indicators[IndicatorKey(y, m)]
			if !ok {
				s[y] = nil
				continue
			}
			s[y] = decodeNumber(msg)
		}
		rec.Metrics[m] = s
	}
	return rec
}

// IsRawDoc 判斷 JSON 物件是否為原始文件格式（帶 지표 欄位）。
func IsRawDoc(msg json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(msg, &probe); err != nil {
		return false
	}
	_, ok := probe[keyIndicators]
	return ok
}

func decodeString(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func isObject(msg json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(msg))
	return strings.HasPrefix(trimmed, "{")
}
