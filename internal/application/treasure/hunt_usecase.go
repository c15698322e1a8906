package treasure

import (
	"context"
	"fmt"

	"kospi-treasure/internal/domain/metrics"
)

// HuntUseCase 為「주린이 보물찾기」畫面的篩選與排序。
type HuntUseCase struct {
	repo   CompanyRepository
	engine *Engine
}

// NewHuntUseCase 建立尋寶用例；engine 為 nil 時使用預設設定。
func NewHuntUseCase(repo CompanyRepository, engine *Engine) *HuntUseCase {
	if engine == nil {
		engine = NewEngine()
	}
	return &HuntUseCase{repo: repo, engine: engine}
}

type HuntInput struct {
	Filter     metrics.FilterSpec
	Sort       *metrics.SortSpec
	Pagination Pagination
}

// HuntItem 為單筆結果，附上顯示用（四捨五入）的三年平均。
type HuntItem struct {
	Record   metrics.CompanyRecord
	Averages map[metrics.Metric]*float64
}

type HuntOutput struct {
	Items   []HuntItem
	Total   int
	HasMore bool
}

// Run 載入全部公司、清理、篩選、排序後分頁。
func (u *HuntUseCase) Run(ctx context.Context, input HuntInput) (HuntOutput, error) {
	var out HuntOutput

	records, err := u.cleaned(ctx)
	if err != nil {
		return out, err
	}

	filtered := u.engine.Filter(records, input.Filter)
	if input.Sort != nil && input.Sort.Field != "" {
		filtered = u.engine.SortBy(filtered, input.Sort.Field, input.Sort.Direction)
	}

	page, hasMore := paginate(filtered, input.Pagination)
	out.Items = make([]HuntItem, 0, len(page))
	for _, r := range page {
		out.Items = append(out.Items, HuntItem{Record: r, Averages: u.DisplayAverages(r)})
	}
	out.Total = len(filtered)
	out.HasMore = hasMore
	return out, nil
}

// All 回傳清理後的全部紀錄（原始 /api/treasure 行為）。
func (u *HuntUseCase) All(ctx context.Context) ([]metrics.CompanyRecord, error) {
	return u.cleaned(ctx)
}

// Industries 回傳尋寶畫面的產業選單。
func (u *HuntUseCase) Industries(ctx context.Context) ([]string, error) {
	records, err := u.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return Industries(records), nil
}

// DisplayAverages 計算全部公司指標的三年平均並四捨五入到兩位。
func (u *HuntUseCase) DisplayAverages(r metrics.CompanyRecord) map[metrics.Metric]*float64 {
	out := make(map[metrics.Metric]*float64, len(metrics.CompanyMetrics))
	for _, m := range metrics.CompanyMetrics {
		if v, ok := u.engine.Average(r.Series(m)); ok {
			out[m] = metrics.RoundPtr(&v)
		} else {
			out[m] = nil
		}
	}
	return out
}

func (u *HuntUseCase) cleaned(ctx context.Context) ([]metrics.CompanyRecord, error) {
	records, err := u.repo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	out := make([]metrics.CompanyRecord, 0, len(records))
	for _, r := range records {
		if HasAnyRatio(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
