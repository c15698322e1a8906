package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"kospi-treasure/internal/domain/auth"
)

var (
	ErrCredentialsRequired = errors.New("email and password required")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserDisabled        = errors.New("user disabled")
	ErrForbidden           = errors.New("permission denied")
)

// UserRepository 存取使用者。
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (auth.User, error)
	FindByID(ctx context.Context, id string) (auth.User, error)
}

// PasswordHasher 驗證密碼。
type PasswordHasher interface {
	Compare(hashed, plain string) bool
}

// TokenIssuer 簽發 access token。
type TokenIssuer interface {
	Issue(ctx context.Context, user auth.User) (auth.Token, error)
}

// Permission 表示功能權限。
type Permission string

const (
	PermTreasureRead   Permission = "treasure.read"
	PermFixturesReload Permission = "fixtures.reload"
	PermDigestSend     Permission = "digest.send"
)

// RolePermissions 角色權限表。
var RolePermissions = map[auth.Role][]Permission{
	auth.RoleAdmin:   {PermTreasureRead, PermFixturesReload, PermDigestSend},
	auth.RoleAnalyst: {PermTreasureRead, PermDigestSend},
	auth.RoleUser:    {PermTreasureRead},
}

// LoginUseCase 驗證帳密並簽發 token。
type LoginUseCase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewLoginUseCase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{users: users, hasher: hasher, tokens: tokens}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	User  auth.User
	Token auth.Token
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (LoginResult, error) {
	var out LoginResult
	email := auth.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return out, ErrCredentialsRequired
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return out, ErrInvalidCredentials
		}
		return out, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive() {
		return out, ErrUserDisabled
	}
	if !uc.hasher.Compare(user.Password, input.Password) {
		return out, ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(ctx, user)
	if err != nil {
		return out, fmt.Errorf("issue token: %w", err)
	}

	out.User = user
	out.Token = token
	return out, nil
}

// Authorizer 檢查角色/權限。
type Authorizer struct {
	users UserRepository
}

func NewAuthorizer(users UserRepository) *Authorizer {
	return &Authorizer{users: users}
}

func (a *Authorizer) HasPermission(role auth.Role, perm Permission) bool {
	return slices.Contains(RolePermissions[role], perm)
}

// Authorize 以目前資料庫中的角色重新檢查，token 內的角色僅作參考。
func (a *Authorizer) Authorize(ctx context.Context, userID string, required ...Permission) (auth.User, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return auth.User{}, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive() {
		return user, ErrUserDisabled
	}
	for _, perm := range required {
		if !a.HasPermission(user.Role, perm) {
			return user, fmt.Errorf("%w: missing %s", ErrForbidden, perm)
		}
	}
	return user, nil
}
