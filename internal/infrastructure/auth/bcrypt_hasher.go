package authinfra

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrSeedPassword 表示預設帳號的密碼不可用（空字串或超過 bcrypt 上限）。
var ErrSeedPassword = errors.New("seed password must be 1-72 bytes")

// BcryptHasher 以 bcrypt 保存與比對帳號密碼；Cost 為 0 時使用 bcrypt.DefaultCost。
type BcryptHasher struct {
	Cost int
}

// Compare 任一側為空一律不通過。
func (h BcryptHasher) Compare(hashed, plain string) bool {
	if hashed == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	if plain == "" || len(plain) > 72 {
		return "", ErrSeedPassword
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(b), nil
}

// HashPassword 供 memory store 與 postgres 建立預設帳號時使用。
func HashPassword(plain string) (string, error) {
	return BcryptHasher{}.Hash(plain)
}
