package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"kospi-treasure/internal/application/treasure"
	"kospi-treasure/internal/domain/metrics"
)

// Repo 提供 Postgres 資料存取，實作公司與產業的讀寫。
type Repo struct {
	db *sql.DB
}

// NewRepo 建立 Postgres 資料存取實例。
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ListCompanies 依載入順序回傳全部公司與其年度指標。
func (r *Repo) ListCompanies(ctx context.Context) ([]metrics.CompanyRecord, error) {
	const q = `
SELECT c.name, c.industry, m.metric, m.year, m.value
FROM companies c
LEFT JOIN company_metrics m ON m.company_name = c.name
ORDER BY c.position, c.name, m.metric, m.year;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCompanies(rows)
}

// FindCompany 名稱比對忽略大小寫與前後空白。
func (r *Repo) FindCompany(ctx context.Context, name string) (metrics.CompanyRecord, error) {
	const q = `
SELECT c.name, c.industry, m.metric, m.year, m.value
FROM companies c
LEFT JOIN company_metrics m ON m.company_name = c.name
WHERE lower(c.name) = lower($1)
ORDER BY m.metric, m.year;
`
	rows, err := r.db.QueryContext(ctx, q, strings.TrimSpace(name))
	if err != nil {
		return metrics.CompanyRecord{}, err
	}
	defer rows.Close()
	out, err := scanCompanies(rows)
	if err != nil {
		return metrics.CompanyRecord{}, err
	}
	if len(out) == 0 {
		return metrics.CompanyRecord{}, fmt.Errorf("%s: %w", name, treasure.ErrCompanyNotFound)
	}
	return out[0], nil
}

// CompanyNames 回傳排序後的公司名稱。
func (r *Repo) CompanyNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM companies ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func scanCompanies(rows *sql.Rows) ([]metrics.CompanyRecord, error) {
	var out []metrics.CompanyRecord
	index := make(map[string]int)
	for rows.Next() {
		var (
			name, industry string
			metric, year   sql.NullString
			value          sql.NullFloat64
		)
		if err := rows.Scan(&name, &industry, &metric, &year, &value); err != nil {
			return nil, err
		}
		idx, ok := index[name]
		if !ok {
			idx = len(out)
			index[name] = idx
			out = append(out, metrics.CompanyRecord{Name: name, Industry: industry, Metrics: map[metrics.Metric]metrics.Series{}})
		}
		if !metric.Valid || !year.Valid {
			continue
		}
		setPoint(out[idx].Metrics, metrics.Metric(metric.String), year.String, value)
	}
	return out, rows.Err()
}

func setPoint(dst map[metrics.Metric]metrics.Series, m metrics.Metric, year string, value sql.NullFloat64) {
	s, ok := dst[m]
	if !ok {
		s = metrics.Series{}
		dst[m] = s
	}
	if value.Valid {
		s[year] = metrics.Float(value.Float64)
	} else {
		s[year] = nil
	}
}

// UpsertCompany 寫入或更新單一公司，並以新資料覆蓋其全部年度指標。
func (r *Repo) UpsertCompany(ctx context.Context, rec metrics.CompanyRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
INSERT INTO companies (name, industry, position)
VALUES ($1, $2, COALESCE((SELECT MAX(position) + 1 FROM companies), 0))
ON CONFLICT (name)
DO UPDATE SET industry = EXCLUDED.industry, updated_at = NOW();
`
	if _, err := tx.ExecContext(ctx, q, rec.Name, rec.Industry); err != nil {
		return fmt.Errorf("upsert company %s: %w", rec.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM company_metrics WHERE company_name = $1;`, rec.Name); err != nil {
		return fmt.Errorf("clear metrics %s: %w", rec.Name, err)
	}
	if err := insertCompanyMetrics(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceCompanies 在單一交易中清空並重建公司資料，保留輸入順序。
func (r *Repo) ReplaceCompanies(ctx context.Context, records []metrics.CompanyRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM company_metrics;`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM companies;`); err != nil {
		return err
	}

	const q = `
INSERT INTO companies (name, industry, position)
VALUES ($1, $2, $3)
ON CONFLICT (name)
DO UPDATE SET industry = EXCLUDED.industry, position = EXCLUDED.position, updated_at = NOW();
`
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, q, rec.Name, rec.Industry, i); err != nil {
			return fmt.Errorf("insert company %s: %w", rec.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM company_metrics WHERE company_name = $1;`, rec.Name); err != nil {
			return err
		}
		if err := insertCompanyMetrics(ctx, tx, rec); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertCompanyMetrics(ctx context.Context, ex execer, rec metrics.CompanyRecord) error {
	const q = `
INSERT INTO company_metrics (company_name, metric, year, value)
VALUES ($1, $2, $3, $4);
`
	for _, m := range sortedMetrics(rec.Metrics) {
		s := rec.Metrics[m]
		for _, y := range s.Years() {
			if _, err := ex.ExecContext(ctx, q, rec.Name, string(m), y, s[y]); err != nil {
				return fmt.Errorf("insert metric %s/%s/%s: %w", rec.Name, m, y, err)
			}
		}
	}
	return nil
}

func sortedMetrics(in map[metrics.Metric]metrics.Series) []metrics.Metric {
	out := make([]metrics.Metric, 0, len(in))
	for m := range in {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ListIndustries 依名稱排序回傳全部產業。
func (r *Repo) ListIndustries(ctx context.Context) ([]metrics.IndustryAggregate, error) {
	return r.loadIndustries(ctx, "")
}

func (r *Repo) FindIndustry(ctx context.Context, name string) (metrics.IndustryAggregate, error) {
	name = metrics.NormalizeIndustry(name)
	out, err := r.loadIndustries(ctx, name)
	if err != nil {
		return metrics.IndustryAggregate{}, err
	}
	if len(out) == 0 {
		return metrics.IndustryAggregate{}, fmt.Errorf("%s: %w", name, treasure.ErrIndustryNotFound)
	}
	return out[0], nil
}

// loadIndustries name 為空時載入全部。
func (r *Repo) loadIndustries(ctx context.Context, name string) ([]metrics.IndustryAggregate, error) {
	filter, args := "", []any{}
	if name != "" {
		filter, args = "WHERE %s = $1", []any{name}
	}
	where := func(col string) string {
		if filter == "" {
			return ""
		}
		return fmt.Sprintf(filter, col)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM industries %s ORDER BY name;`, where("name")), args...)
	if err != nil {
		return nil, err
	}
	var out []metrics.IndustryAggregate
	index := make(map[string]int)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, err
		}
		index[n] = len(out)
		out = append(out, metrics.IndustryAggregate{
			Name:    n,
			Metrics: map[metrics.Metric]metrics.Series{},
			Stats:   map[metrics.Metric]metrics.Stat{},
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	if err := r.loadIndustryMetrics(ctx, where("industry_name"), args, out, index); err != nil {
		return nil, err
	}
	if err := r.loadIndustryCompanies(ctx, where("industry_name"), args, out, index); err != nil {
		return nil, err
	}
	if err := r.loadIndustryStats(ctx, where("industry_name"), args, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) loadIndustryMetrics(ctx context.Context, where string, args []any, out []metrics.IndustryAggregate, index map[string]int) error {
	q := fmt.Sprintf(`SELECT industry_name, metric, year, value FROM industry_metrics %s ORDER BY industry_name, metric, year;`, where)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			industry, metric, year string
			value                  sql.NullFloat64
		)
		if err := rows.Scan(&industry, &metric, &year, &value); err != nil {
			return err
		}
		if idx, ok := index[industry]; ok {
			setPoint(out[idx].Metrics, metrics.Metric(metric), year, value)
		}
	}
	return rows.Err()
}

func (r *Repo) loadIndustryCompanies(ctx context.Context, where string, args []any, out []metrics.IndustryAggregate, index map[string]int) error {
	q := fmt.Sprintf(`SELECT industry_name, company_name FROM industry_companies %s ORDER BY industry_name, position;`, where)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var industry, company string
		if err := rows.Scan(&industry, &company); err != nil {
			return err
		}
		if idx, ok := index[industry]; ok {
			out[idx].Companies = append(out[idx].Companies, company)
		}
	}
	return rows.Err()
}

func (r *Repo) loadIndustryStats(ctx context.Context, where string, args []any, out []metrics.IndustryAggregate, index map[string]int) error {
	q := fmt.Sprintf(`SELECT industry_name, metric, avg_value, max_value, min_value FROM industry_stats %s;`, where)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			industry, metric string
			avg, max, min    sql.NullFloat64
		)
		if err := rows.Scan(&industry, &metric, &avg, &max, &min); err != nil {
			return err
		}
		if idx, ok := index[industry]; ok {
			out[idx].Stats[metrics.Metric(metric)] = metrics.Stat{Avg: nullPtr(avg), Max: nullPtr(max), Min: nullPtr(min)}
		}
	}
	return rows.Err()
}

func nullPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return metrics.Float(v.Float64)
}

// UpsertIndustry 寫入或更新單一產業及其序列、成員與統計值。
func (r *Repo) UpsertIndustry(ctx context.Context, agg metrics.IndustryAggregate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := upsertIndustryTx(ctx, tx, agg); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceIndustries 在單一交易中清空並重建產業資料。
func (r *Repo) ReplaceIndustries(ctx context.Context, aggs []metrics.IndustryAggregate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"industry_stats", "industry_companies", "industry_metrics", "industries"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s;", table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for _, agg := range aggs {
		if err := upsertIndustryTx(ctx, tx, agg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertIndustryTx(ctx context.Context, tx *sql.Tx, agg metrics.IndustryAggregate) error {
	name := metrics.NormalizeIndustry(agg.Name)
	if name == "" {
		return errors.New("industry name is required")
	}

	const upsert = `
INSERT INTO industries (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET updated_at = NOW();
`
	if _, err := tx.ExecContext(ctx, upsert, name); err != nil {
		return fmt.Errorf("upsert industry %s: %w", name, err)
	}
	for _, table := range []string{"industry_metrics", "industry_companies", "industry_stats"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE industry_name = $1;", table), name); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, name, err)
		}
	}

	for _, m := range sortedMetrics(agg.Metrics) {
		s := agg.Metrics[m]
		for _, y := range s.Years() {
			if _, err := tx.ExecContext(ctx, `INSERT INTO industry_metrics (industry_name, metric, year, value) VALUES ($1, $2, $3, $4);`, name, string(m), y, s[y]); err != nil {
				return fmt.Errorf("insert industry metric %s/%s/%s: %w", name, m, y, err)
			}
		}
	}
	for i, c := range agg.Companies {
		if _, err := tx.ExecContext(ctx, `INSERT INTO industry_companies (industry_name, company_name, position) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING;`, name, c, i); err != nil {
			return fmt.Errorf("insert industry company %s/%s: %w", name, c, err)
		}
	}
	statMetrics := make([]metrics.Metric, 0, len(agg.Stats))
	for m := range agg.Stats {
		statMetrics = append(statMetrics, m)
	}
	sort.Slice(statMetrics, func(i, j int) bool { return statMetrics[i] < statMetrics[j] })
	for _, m := range statMetrics {
		st := agg.Stats[m]
		if _, err := tx.ExecContext(ctx, `INSERT INTO industry_stats (industry_name, metric, avg_value, max_value, min_value) VALUES ($1, $2, $3, $4, $5);`, name, string(m), st.Avg, st.Max, st.Min); err != nil {
			return fmt.Errorf("insert industry stat %s/%s: %w", name, m, err)
		}
	}
	return nil
}

// Ping 供健康檢查使用。
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
