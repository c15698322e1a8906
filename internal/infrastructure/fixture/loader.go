package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"kospi-treasure/internal/application/treasure"
	"kospi-treasure/internal/domain/metrics"

	"golang.org/x/sync/errgroup"
)

// Sink 接收載入結果，記憶體與 Postgres 儲存層皆實作此介面。
type Sink interface {
	ReplaceCompanies(ctx context.Context, records []metrics.CompanyRecord) error
	ReplaceIndustries(ctx context.Context, aggs []metrics.IndustryAggregate) error
}

// Loader 從 JSON 檔載入公司與產業資料。
type Loader struct {
	companiesPath  string
	industriesPath string
	engine         *treasure.Engine
}

// NewLoader industriesPath 可為空，此時由公司資料推導產業平均。
func NewLoader(companiesPath, industriesPath string, engine *treasure.Engine) *Loader {
	if engine == nil {
		engine = treasure.NewEngine()
	}
	return &Loader{companiesPath: companiesPath, industriesPath: industriesPath, engine: engine}
}

// Result 為一次載入的內容與統計。
type Result struct {
	Companies  []metrics.CompanyRecord
	Industries []metrics.IndustryAggregate
	// Derived 表示產業資料由公司資料推導而來。
	Derived bool
	Skipped int
}

// Load 並行讀取兩個檔案；任一檔案格式錯誤即失敗，個別壞掉的元素只略過。
func (l *Loader) Load(ctx context.Context) (Result, error) {
	var (
		res        Result
		haveIndust bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if l.companiesPath == "" {
			return nil
		}
		data, err := readFile(gctx, l.companiesPath)
		if err != nil {
			return fmt.Errorf("read company fixture: %w", err)
		}
		records, skipped, err := ParseCompanies(data, l.engine.Years())
		if err != nil {
			return fmt.Errorf("parse company fixture %s: %w", l.companiesPath, err)
		}
		res.Companies, res.Skipped = records, skipped
		return nil
	})
	g.Go(func() error {
		if l.industriesPath == "" {
			return nil
		}
		data, err := readFile(gctx, l.industriesPath)
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("[Fixture] industry fixture missing path=%s, deriving from companies", l.industriesPath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read industry fixture: %w", err)
		}
		aggs, err := ParseIndustries(data)
		if err != nil {
			return fmt.Errorf("parse industry fixture %s: %w", l.industriesPath, err)
		}
		res.Industries, haveIndust = aggs, true
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if !haveIndust && len(res.Companies) > 0 {
		derived := treasure.BuildIndustryAggregates(l.engine, res.Companies, metrics.CompanyMetrics)
		res.Industries = make([]metrics.IndustryAggregate, 0, len(derived))
		for _, agg := range derived {
			res.Industries = append(res.Industries, agg)
		}
		sort.Slice(res.Industries, func(i, j int) bool { return res.Industries[i].Name < res.Industries[j].Name })
		res.Derived = true
	}
	return res, nil
}

// LoadInto 載入後寫入 sink。
func (l *Loader) LoadInto(ctx context.Context, sink Sink) (Result, error) {
	res, err := l.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := sink.ReplaceCompanies(ctx, res.Companies); err != nil {
		return Result{}, fmt.Errorf("store companies: %w", err)
	}
	if err := sink.ReplaceIndustries(ctx, res.Industries); err != nil {
		return Result{}, fmt.Errorf("store industries: %w", err)
	}
	log.Printf("[Fixture] loaded companies=%d industries=%d derived=%t skipped=%d",
		len(res.Companies), len(res.Industries), res.Derived, res.Skipped)
	return res, nil
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// ParseCompanies 解析公司資料陣列，逐筆判斷是原始文件（帶 지표）還是尋寶格式。
// 非物件或缺名稱的元素略過並計數。
func ParseCompanies(data []byte, years []string) ([]metrics.CompanyRecord, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, fmt.Errorf("company fixture must be a JSON array: %w", err)
	}

	out := make([]metrics.CompanyRecord, 0, len(items))
	skipped := 0
	for i, msg := range items {
		rec, err := parseCompany(msg, years)
		if err != nil {
			log.Printf("[Fixture] skip company index=%d err=%v", i, err)
			skipped++
			continue
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

func parseCompany(msg json.RawMessage, years []string) (metrics.CompanyRecord, error) {
	if metrics.IsRawDoc(msg) {
		var doc metrics.RawCompanyDoc
		if err := json.Unmarshal(msg, &doc); err != nil {
			return metrics.CompanyRecord{}, err
		}
		return doc.ToRecord(years, metrics.CompanyMetrics), nil
	}
	var rec metrics.CompanyRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		return metrics.CompanyRecord{}, err
	}
	if err := rec.Validate(); err != nil {
		return metrics.CompanyRecord{}, err
	}
	return rec, nil
}

// 產業檔中指標物件可同時帶年度數值與預先計算的統計值。
var statKeys = map[string]func(*metrics.Stat, *float64){
	"평균": func(s *metrics.Stat, v *float64) { s.Avg = v },
	"최고": func(s *metrics.Stat, v *float64) { s.Max = v },
	"최저": func(s *metrics.Stat, v *float64) { s.Min = v },
}

type industryDoc struct {
	Metrics   map[string]map[string]json.RawMessage `json:"metrics"`
	Companies []string                              `json:"companies"`
}

// ParseIndustries 解析以產業名為鍵的物件：{產業: {metrics: {PER: {2022: ..., 평균: ...}}, companies: [...]}}。
func ParseIndustries(data []byte) ([]metrics.IndustryAggregate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("industry fixture must be a JSON object: %w", err)
	}

	out := make([]metrics.IndustryAggregate, 0, len(raw))
	for name, msg := range raw {
		name = metrics.NormalizeIndustry(name)
		if name == "" {
			continue
		}
		var doc industryDoc
		if err := json.Unmarshal(msg, &doc); err != nil {
			log.Printf("[Fixture] skip industry name=%s err=%v", name, err)
			continue
		}
		out = append(out, toAggregate(name, doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func toAggregate(name string, doc industryDoc) metrics.IndustryAggregate {
	agg := metrics.IndustryAggregate{
		Name:      name,
		Metrics:   make(map[metrics.Metric]metrics.Series, len(doc.Metrics)),
		Companies: make([]string, 0, len(doc.Companies)),
		Stats:     make(map[metrics.Metric]metrics.Stat),
	}
	for _, c := range doc.Companies {
		if c = strings.TrimSpace(c); c != "" {
			agg.Companies = append(agg.Companies, c)
		}
	}
	for key, fields := range doc.Metrics {
		m := metrics.Metric(key)
		if parsed, ok := metrics.ParseMetric(key); ok {
			m = parsed
		}
		series := metrics.Series{}
		var stat metrics.Stat
		hasStat := false
		for field, v := range fields {
			val := metrics.ParseNumber(v)
			if set, ok := statKeys[field]; ok {
				set(&stat, val)
				hasStat = hasStat || val != nil
				continue
			}
			series[field] = val
		}
		agg.Metrics[m] = series
		if hasStat {
			agg.Stats[m] = stat
		}
	}
	return agg
}
