package authinfra

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kospi-treasure/internal/domain/auth"

	"golang.org/x/crypto/bcrypt"
)

func TestJWTIssuer_IssueAndParse(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Hour)
	user := auth.User{ID: "u-1", Email: "admin@example.com", Role: auth.RoleAdmin}

	tok, err := issuer.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if tok.TokenType != "Bearer" {
		t.Errorf("unexpected token type %q", tok.TokenType)
	}

	claims, err := issuer.ParseAccessToken(tok.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != "admin" || claims.Subject != "admin@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTIssuer_Rejects(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Minute)
	tok, err := issuer.Issue(context.Background(), auth.User{ID: "u-1", Role: auth.RoleUser})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	t.Run("Wrong Secret", func(t *testing.T) {
		other := NewJWTIssuer("other", time.Minute)
		if _, err := other.ParseAccessToken(tok.AccessToken); err == nil {
			t.Error("expected signature error")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		late := NewJWTIssuer("secret", time.Minute)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := late.ParseAccessToken(tok.AccessToken); err == nil {
			t.Error("expected expiry error")
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := issuer.ParseAccessToken("not-a-token"); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("Empty Secret", func(t *testing.T) {
		if _, err := NewJWTIssuer("", time.Minute).Issue(context.Background(), auth.User{ID: "u"}); err == nil {
			t.Error("expected error without secret")
		}
	})
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{}
	pwd := "password123"
	hashed, err := h.Hash(pwd)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !h.Compare(hashed, pwd) {
		t.Error("Compare failed")
	}
	if h.Compare(hashed, "wrong") {
		t.Error("Compare should have failed")
	}
	if h.Compare("", pwd) {
		t.Error("empty hash must never match")
	}
}

func TestBcryptHasher_RejectsUnusableSeed(t *testing.T) {
	for _, pwd := range []string{"", strings.Repeat("x", 73)} {
		if _, err := HashPassword(pwd); !errors.Is(err, ErrSeedPassword) {
			t.Errorf("len %d: expected ErrSeedPassword, got %v", len(pwd), err)
		}
	}

	h := BcryptHasher{Cost: bcrypt.MinCost}
	hashed, err := h.Hash("코스피2024")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hashed)); cost != bcrypt.MinCost {
		t.Errorf("expected cost %d, got %d", bcrypt.MinCost, cost)
	}
	if !h.Compare(hashed, "코스피2024") {
		t.Error("Compare failed for non-ASCII password")
	}
}
