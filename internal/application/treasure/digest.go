package treasure

import (
	"context"

	"kospi-treasure/internal/domain/metrics"
)

// Digest 為定期推播的尋寶摘要。
type Digest struct {
	Filter metrics.FilterSpec
	Sort   metrics.SortSpec
	Total  int
	Top    []HuntItem
}

// DigestUseCase 以固定條件產生摘要，供排程推播。
type DigestUseCase struct {
	hunt *HuntUseCase
}

func NewDigestUseCase(hunt *HuntUseCase) *DigestUseCase {
	return &DigestUseCase{hunt: hunt}
}

// Build 執行篩選並取前 limit 筆；sort 欄位為空時依 ROE 由高到低。
func (u *DigestUseCase) Build(ctx context.Context, spec metrics.FilterSpec, sort metrics.SortSpec, limit int) (Digest, error) {
	if sort.Field == "" {
		sort = metrics.SortSpec{Field: metrics.MetricROE, Direction: metrics.Desc}
	}
	if limit <= 0 {
		limit = 5
	}
	res, err := u.hunt.Run(ctx, HuntInput{
		Filter:     spec,
		Sort:       &sort,
		Pagination: Pagination{Limit: limit},
	})
	if err != nil {
		return Digest{}, err
	}
	return Digest{Filter: spec, Sort: sort, Total: res.Total, Top: res.Items}, nil
}
