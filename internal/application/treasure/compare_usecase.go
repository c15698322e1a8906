package treasure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kospi-treasure/internal/domain/metrics"
)

// CompareUseCase 提供公司對產業、公司對公司以及產業概覽。
type CompareUseCase struct {
	companies  CompanyRepository
	industries IndustryRepository
	engine     *Engine
}

func NewCompareUseCase(companies CompanyRepository, industries IndustryRepository, engine *Engine) *CompareUseCase {
	if engine == nil {
		engine = NewEngine()
	}
	return &CompareUseCase{companies: companies, industries: industries, engine: engine}
}

// CompanyComparison 為公司相對所屬產業的比較結果。
type CompanyComparison struct {
	Company  metrics.CompanyRecord
	Industry string
	Verdicts []metrics.Verdict
	// 供圖表使用的年度對齊資料
	Chart map[metrics.Metric][]ChartPoint
}

// ChartPoint 為單一年度的公司值與產業平均值。
type ChartPoint struct {
	Year     string   `json:"year"`
	Company  *float64 `json:"company"`
	Industry *float64 `json:"industry"`
}

// CompanyVsIndustry 對 PER/PBR/ROE 分別產生比較結果。
// 找不到產業資料時，產業序列視為空，結果為資料不足。
func (u *CompareUseCase) CompanyVsIndustry(ctx context.Context, name string) (CompanyComparison, error) {
	var out CompanyComparison
	rec, err := u.companies.FindCompany(ctx, strings.TrimSpace(name))
	if err != nil {
		return out, err
	}

	industry, err := u.industries.FindIndustry(ctx, rec.Industry)
	if err != nil && !isNotFound(err) {
		return out, fmt.Errorf("find industry %s: %w", rec.Industry, err)
	}

	out.Company = rec
	out.Industry = rec.Industry
	out.Chart = make(map[metrics.Metric][]ChartPoint, len(metrics.RatioMetrics))
	for _, m := range metrics.RatioMetrics {
		cs := rec.Series(m)
		is := industry.Series(m)
		out.Verdicts = append(out.Verdicts, u.engine.Compare(m, rec.Name, cs, is))
		out.Chart[m] = chartPoints(u.engine.years, cs, is)
	}
	return out, nil
}

func chartPoints(years []string, company, industry metrics.Series) []ChartPoint {
	out := make([]ChartPoint, 0, len(years))
	for _, y := range years {
		p := ChartPoint{Year: y}
		if v, ok := company.Value(y); ok {
			p.Company = metrics.RoundPtr(&v)
		}
		if v, ok := industry.Value(y); ok {
			p.Industry = metrics.RoundPtr(&v)
		}
		out = append(out, p)
	}
	return out
}

// MetricOverview 為產業單一指標的概覽。
type MetricOverview struct {
	Metric   metrics.Metric `json:"metric"`
	Series   metrics.Series `json:"series"`
	Average  *float64       `json:"average"`
	Stat     metrics.Stat   `json:"stat"`
	Computed bool           `json:"computed"`
}

// IndustryOverview 為產業頁面資料。
type IndustryOverview struct {
	Name      string
	Companies []string
	Metrics   []MetricOverview
}

var overviewMetrics = []metrics.Metric{metrics.MetricPER, metrics.MetricPBR, metrics.MetricROE, metrics.MetricDPS}

// IndustryOverview 彙整產業四個指標；缺少預先計算的統計值時由成員公司推算。
func (u *CompareUseCase) IndustryOverview(ctx context.Context, name string) (IndustryOverview, error) {
	var out IndustryOverview
	agg, err := u.industries.FindIndustry(ctx, metrics.NormalizeIndustry(name))
	if err != nil {
		return out, err
	}

	var members []metrics.CompanyRecord
	loadMembers := func() error {
		if members != nil {
			return nil
		}
		all, err := u.companies.ListCompanies(ctx)
		if err != nil {
			return fmt.Errorf("list companies: %w", err)
		}
		members = make([]metrics.CompanyRecord, 0)
		for _, r := range all {
			if metrics.NormalizeIndustry(r.Industry) == agg.Name || agg.HasCompany(r.Name) {
				members = append(members, r)
			}
		}
		return nil
	}

	out.Name = agg.Name
	out.Companies = append([]string(nil), agg.Companies...)
	for _, m := range overviewMetrics {
		mo := MetricOverview{Metric: m, Series: agg.Series(m)}
		if v, ok := u.engine.Average(mo.Series); ok {
			mo.Average = metrics.RoundPtr(&v)
		}
		if st, ok := agg.Stats[m]; ok && st.Avg != nil {
			mo.Stat = st
		} else {
			if err := loadMembers(); err != nil {
				return out, err
			}
			mo.Stat = MemberStats(u.engine, members, m)
			mo.Computed = true
		}
		mo.Stat = metrics.Stat{Avg: metrics.RoundPtr(mo.Stat.Avg), Max: metrics.RoundPtr(mo.Stat.Max), Min: metrics.RoundPtr(mo.Stat.Min)}
		out.Metrics = append(out.Metrics, mo)
	}
	return out, nil
}

// SideBySide 為兩家公司在同一指標上的比較。
type SideBySide struct {
	Metric      metrics.Metric `json:"metric"`
	Left        string         `json:"left"`
	Right       string         `json:"right"`
	LeftAvg     *float64       `json:"left_avg"`
	RightAvg    *float64       `json:"right_avg"`
	IndustryAvg *float64       `json:"industry_avg"`
}

// CompanyVsCompany 比較產業內兩家公司；right 可為空，僅顯示左側。
// industry 非空時兩家公司都必須屬於該產業。
func (u *CompareUseCase) CompanyVsCompany(ctx context.Context, industry, left, right string, metric metrics.Metric) (SideBySide, error) {
	out := SideBySide{Metric: metric, Left: left, Right: right}

	var agg *metrics.IndustryAggregate
	if name := metrics.NormalizeIndustry(industry); name != "" {
		found, err := u.industries.FindIndustry(ctx, name)
		if err != nil {
			return out, err
		}
		agg = &found
		if v, ok := u.engine.Average(found.Series(metric)); ok {
			out.IndustryAvg = metrics.RoundPtr(&v)
		}
	}

	for _, side := range []struct {
		name string
		dst  **float64
	}{{left, &out.LeftAvg}, {right, &out.RightAvg}} {
		if strings.TrimSpace(side.name) == "" {
			continue
		}
		rec, err := u.companies.FindCompany(ctx, side.name)
		if err != nil {
			return out, err
		}
		if agg != nil && !agg.HasCompany(rec.Name) && metrics.NormalizeIndustry(rec.Industry) != agg.Name {
			return out, fmt.Errorf("%s not in %s: %w", rec.Name, agg.Name, ErrCompanyNotFound)
		}
		if v, ok := u.engine.Average(rec.Series(metric)); ok {
			*side.dst = metrics.RoundPtr(&v)
		}
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrIndustryNotFound) || errors.Is(err, ErrCompanyNotFound)
}
