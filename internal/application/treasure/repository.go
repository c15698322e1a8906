package treasure

import (
	"context"
	"errors"

	"kospi-treasure/internal/domain/metrics"
)

var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrIndustryNotFound = errors.New("industry not found")
)

// CompanyRepository 提供公司指標資料，具體儲存層自行實作。
type CompanyRepository interface {
	ListCompanies(ctx context.Context) ([]metrics.CompanyRecord, error)
	FindCompany(ctx context.Context, name string) (metrics.CompanyRecord, error)
	CompanyNames(ctx context.Context) ([]string, error)
}

// IndustryRepository 提供產業彙總資料。
type IndustryRepository interface {
	ListIndustries(ctx context.Context) ([]metrics.IndustryAggregate, error)
	FindIndustry(ctx context.Context, name string) (metrics.IndustryAggregate, error)
}

// Pagination 控制分頁。
type Pagination struct {
	Offset int
	Limit  int
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

func (p Pagination) normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func paginate[T any](items []T, p Pagination) ([]T, bool) {
	p = p.normalize()
	offset := p.Offset
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], end < len(items)
}
