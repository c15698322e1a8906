package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"kospi-treasure/internal/application/treasure"
	authDomain "kospi-treasure/internal/domain/auth"
	"kospi-treasure/internal/domain/metrics"
	authinfra "kospi-treasure/internal/infrastructure/auth"

	"github.com/google/uuid"
)

// Store 為未設定 DB_DSN 時使用的記憶體資料庫，併發安全。
// 讀出的資料一律深拷貝，呼叫端修改不影響內部狀態。
type Store struct {
	mu         sync.RWMutex
	companies  []metrics.CompanyRecord
	byName     map[string]int // 小寫名稱 -> companies index
	industries map[string]metrics.IndustryAggregate
	users      map[string]authDomain.User // id -> user
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		byName:     make(map[string]int),
		industries: make(map[string]metrics.IndustryAggregate),
		users:      make(map[string]authDomain.User),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ReplaceCompanies 以新的資料集整批取代公司資料；同名者以後出現的為準。
func (s *Store) ReplaceCompanies(_ context.Context, records []metrics.CompanyRecord) error {
	companies := make([]metrics.CompanyRecord, 0, len(records))
	byName := make(map[string]int, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			log.Printf("[Memory] skip company: %v", err)
			continue
		}
		key := nameKey(r.Name)
		if idx, ok := byName[key]; ok {
			companies[idx] = r.Clone()
			continue
		}
		byName[key] = len(companies)
		companies = append(companies, r.Clone())
	}

	s.mu.Lock()
	s.companies = companies
	s.byName = byName
	s.mu.Unlock()
	return nil
}

// ReplaceIndustries 整批取代產業彙總資料。
func (s *Store) ReplaceIndustries(_ context.Context, aggs []metrics.IndustryAggregate) error {
	industries := make(map[string]metrics.IndustryAggregate, len(aggs))
	for _, a := range aggs {
		name := metrics.NormalizeIndustry(a.Name)
		if name == "" {
			continue
		}
		c := a.Clone()
		c.Name = name
		industries[name] = c
	}

	s.mu.Lock()
	s.industries = industries
	s.mu.Unlock()
	return nil
}

// ListCompanies 依載入順序回傳全部公司。
func (s *Store) ListCompanies(_ context.Context) ([]metrics.CompanyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]metrics.CompanyRecord, len(s.companies))
	for i, r := range s.companies {
		out[i] = r.Clone()
	}
	return out, nil
}

// FindCompany 名稱比對忽略大小寫與前後空白。
func (s *Store) FindCompany(_ context.Context, name string) (metrics.CompanyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byName[nameKey(name)]
	if !ok {
		return metrics.CompanyRecord{}, fmt.Errorf("%s: %w", name, treasure.ErrCompanyNotFound)
	}
	return s.companies[idx].Clone(), nil
}

// CompanyNames 回傳排序後的公司名稱。
func (s *Store) CompanyNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.companies))
	for _, r := range s.companies {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out, nil
}

// ListIndustries 依名稱排序回傳。
func (s *Store) ListIndustries(_ context.Context) ([]metrics.IndustryAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]metrics.IndustryAggregate, 0, len(s.industries))
	for _, a := range s.industries {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) FindIndustry(_ context.Context, name string) (metrics.IndustryAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.industries[metrics.NormalizeIndustry(name)]
	if !ok {
		return metrics.IndustryAggregate{}, fmt.Errorf("%s: %w", name, treasure.ErrIndustryNotFound)
	}
	return a.Clone(), nil
}

// Stats 回傳目前載入的筆數，供健康檢查使用。
func (s *Store) Stats() (companies, industries int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.companies), len(s.industries)
}

// SeedUsers 建立預設帳號供登入測試。
func (s *Store) SeedUsers(password string) error {
	hashed, err := authinfra.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	s.AddUser("admin@example.com", hashed, "Admin", authDomain.RoleAdmin)
	s.AddUser("analyst@example.com", hashed, "Analyst", authDomain.RoleAnalyst)
	s.AddUser("user@example.com", hashed, "User", authDomain.RoleUser)
	return nil
}

// AddUser 新增啟用中的帳號並回傳其 ID；password 需為雜湊值。
func (s *Store) AddUser(email, password, name string, role authDomain.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.users[id] = authDomain.User{
		ID:       id,
		Email:    authDomain.NormalizeEmail(email),
		Name:     name,
		Role:     role,
		Status:   authDomain.StatusActive,
		Password: password,
	}
	return id
}

// FindByEmail 依 email 查詢使用者。
func (s *Store) FindByEmail(_ context.Context, email string) (authDomain.User, error) {
	email = authDomain.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return authDomain.User{}, authDomain.ErrUserNotFound
}

// FindByID 依 ID 查詢使用者。
func (s *Store) FindByID(_ context.Context, id string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.User{}, authDomain.ErrUserNotFound
	}
	return u, nil
}
