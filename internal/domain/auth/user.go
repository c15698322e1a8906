package auth

import (
	"errors"
	"strings"
)

// Role 定義系統角色。
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleUser    Role = "user"
)

// Status 定義帳號狀態。
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

var ErrUserNotFound = errors.New("user not found")

// User 為可登入後台的帳號；一般瀏覽尋寶結果不需要登入。
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Status   Status `json:"status"`
	Password string `json:"-"` // bcrypt 雜湊
}

// NormalizeEmail 去除空白並轉小寫，查詢與儲存一律使用此格式。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate 基本欄位檢查。
func (u User) Validate() error {
	switch {
	case u.ID == "":
		return errors.New("id is required")
	case !strings.Contains(u.Email, "@"):
		return errors.New("email is invalid")
	case u.Role == "":
		return errors.New("role is required")
	case u.Status == "":
		return errors.New("status is required")
	}
	return nil
}

// IsActive 檢查是否可登入。
func (u User) IsActive() bool {
	return u.Status == StatusActive
}
