package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kospi-treasure/internal/application/auth"

	"github.com/gin-gonic/gin"
)

func TestRequireAuthMiddleware_Memory(t *testing.T) {
	server := newTestServer(t)
	token := tokenFor(t, server, "admin@example.com")

	router := gin.New()
	router.GET("/protected", server.requireAuth(""), func(c *gin.Context) {
		c.String(http.StatusOK, currentUserID(c))
	})

	t.Run("Unauthorized_NoToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("Unauthorized_BadToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("Authorized_ValidToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d. body: %s", w.Code, w.Body.String())
		}
		if w.Body.String() == "" {
			t.Error("expected user id in context")
		}
	})

	t.Run("Authorized_ValidCookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("Forbidden_MissingPermission", func(t *testing.T) {
		userToken := tokenFor(t, server, "user@example.com")

		router2 := gin.New()
		router2.GET("/admin-only", server.requireAuth(auth.PermFixturesReload), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+userToken)
		router2.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d. body: %s", w.Code, w.Body.String())
		}
	})
}

func TestRequestIDAndCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(requestID(), corsMiddleware([]string{"http://localhost:5173"}))
	router.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	t.Run("GeneratesID", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/x", nil)
		router.ServeHTTP(w, req)
		id := w.Header().Get(requestIDHeader)
		if id == "" || w.Body.String() != id {
			t.Errorf("expected generated request id, header=%q body=%q", id, w.Body.String())
		}
	})

	t.Run("KeepsIncomingID", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/x", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		router.ServeHTTP(w, req)
		if w.Header().Get(requestIDHeader) != "abc-123" {
			t.Errorf("unexpected id %q", w.Header().Get(requestIDHeader))
		}
	})

	t.Run("AllowedOrigin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/x", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		router.ServeHTTP(w, req)
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Errorf("unexpected allow-origin %q", w.Header().Get("Access-Control-Allow-Origin"))
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("expected credentials for a listed origin")
		}
	})

	t.Run("OtherOrigin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/x", nil)
		req.Header.Set("Origin", "http://evil.example")
		router.ServeHTTP(w, req)
		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("unexpected allow-origin for unknown origin")
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "" {
			t.Error("unexpected credentials for unknown origin")
		}
	})

	t.Run("Preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("OPTIONS", "/x", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", w.Code)
		}
	})
}

func TestCORS_Wildcard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware(nil))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected wildcard, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("wildcard origin must not allow credentials")
	}
}

func TestLoginLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", loginLimiter(0.001, 2), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	send := func(ip string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/login", nil)
		req.RemoteAddr = ip + ":1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1"); code != http.StatusNoContent {
			t.Fatalf("attempt %d: expected 204, got %d", i+1, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", code)
	}
	if code := send("10.0.0.2"); code != http.StatusNoContent {
		t.Errorf("other clients should not be limited, got %d", code)
	}
}

func TestLoginLimiter_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", loginLimiter(0, 0), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/login", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("attempt %d: expected 204, got %d", i+1, w.Code)
		}
	}
}

func TestIPLimiters_EvictsIdle(t *testing.T) {
	clock := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	limiters := newIPLimiters(1, 5)
	limiters.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		limiters.get(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	if n := limiters.size(); n != 100 {
		t.Fatalf("expected 100 entries, got %d", n)
	}

	clock = clock.Add(limiterIdleTTL / 2)
	limiters.get("10.0.0.1")

	clock = clock.Add(limiterIdleTTL/2 + time.Second)
	limiters.get("192.168.0.1")

	if n := limiters.size(); n != 2 {
		t.Errorf("expected only recently seen entries to remain, got %d", n)
	}
}

func TestIPLimiters_IdleCoversRefill(t *testing.T) {
	limiters := newIPLimiters(0.001, 2)
	if limiters.idle < 2000*time.Second {
		t.Errorf("idle %v shorter than bucket refill", limiters.idle)
	}
}
