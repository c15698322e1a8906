package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"kospi-treasure/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func fixtureConfig() config.Config {
	cfg := config.Config{}
	cfg.Auth.Secret = "test-secret"
	cfg.Fixtures.Companies = "../../../data/treasure_data.json"
	cfg.Fixtures.Industries = "../../../data/industry_metrics.json"
	return cfg
}

func TestFixturesReload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := NewServer(fixtureConfig(), nil)
	defer server.Close()

	if companies, industries := server.Store().Stats(); companies != 5 || industries != 3 {
		t.Fatalf("startup load: companies=%d industries=%d", companies, industries)
	}

	t.Run("NoToken", func(t *testing.T) {
		if w := postJSON(server, "/api/admin/fixtures/reload", "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("UserForbidden", func(t *testing.T) {
		w := postJSON(server, "/api/admin/fixtures/reload", "", tokenFor(t, server, "user@example.com"))
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})

	t.Run("AnalystForbidden", func(t *testing.T) {
		w := postJSON(server, "/api/admin/fixtures/reload", "", tokenFor(t, server, "analyst@example.com"))
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})

	t.Run("AdminReloads", func(t *testing.T) {
		token := tokenFor(t, server, "admin@example.com")
		w := postJSON(server, "/api/admin/fixtures/reload", "", token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var body struct {
			Reload reloadStatus `json:"reload"`
		}
		decode(t, w, &body)
		if body.Reload.Companies != 5 || body.Reload.Industries != 3 || body.Reload.Derived {
			t.Errorf("unexpected reload %+v", body.Reload)
		}

		status := doRequest(server, "GET", "/api/admin/fixtures/status", token)
		if status.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", status.Code)
		}
		var st struct {
			LastReload *reloadStatus `json:"last_reload"`
			Companies  int           `json:"companies"`
		}
		decode(t, status, &st)
		if st.LastReload == nil || st.Companies != 5 {
			t.Errorf("unexpected status %s", status.Body.String())
		}
	})
}

func TestFixturesReload_DerivesIndustries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := fixtureConfig()
	cfg.Fixtures.Industries = ""
	server := NewServer(cfg, nil)
	defer server.Close()

	w := postJSON(server, "/api/admin/fixtures/reload", "", tokenFor(t, server, "admin@example.com"))
	var body struct {
		Reload reloadStatus `json:"reload"`
	}
	decode(t, w, &body)
	if !body.Reload.Derived || body.Reload.Industries == 0 {
		t.Errorf("expected derived industries, got %+v", body.Reload)
	}
}

func TestFixturesReload_BadPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := fixtureConfig()
	cfg.Fixtures.Companies = "does/not/exist.json"
	server := NewServer(cfg, nil)
	defer server.Close()

	w := postJSON(server, "/api/admin/fixtures/reload", "", tokenFor(t, server, "admin@example.com"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestDigestPreview(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(server, "GET", "/api/admin/digest?limit=2", tokenFor(t, server, "user@example.com"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Digest struct {
			Total int `json:"total"`
			Top   []struct {
				Company map[string]any `json:"company"`
			} `json:"top"`
		} `json:"digest"`
		Text string `json:"text"`
	}
	decode(t, w, &body)
	if body.Digest.Total != 3 || len(body.Digest.Top) != 2 {
		t.Fatalf("unexpected digest %s", w.Body.String())
	}
	if body.Digest.Top[0].Company["기업명"] != "SK하이닉스" {
		t.Errorf("expected highest ROE first, got %v", body.Digest.Top[0].Company)
	}
	if !strings.HasPrefix(body.Text, "오늘의 보물 종목 (ROE 내림차순, 조건 충족 3개)") {
		t.Errorf("unexpected text %q", body.Text)
	}
}

func TestDigestSend(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		server := newTestServer(t)
		w := postJSON(server, "/api/admin/digest/send", "", tokenFor(t, server, "analyst@example.com"))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", w.Code)
		}
	})

	t.Run("UserForbidden", func(t *testing.T) {
		server := newTestServer(t)
		w := postJSON(server, "/api/admin/digest/send", "", tokenFor(t, server, "user@example.com"))
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})

	t.Run("Sends", func(t *testing.T) {
		var (
			mu   sync.Mutex
			sent []string
		)
		tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Text string `json:"text"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			mu.Lock()
			sent = append(sent, req.Text)
			mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer tg.Close()

		gin.SetMode(gin.TestMode)
		cfg := config.Config{}
		cfg.Auth.Secret = "test-secret"
		cfg.Notifier.Telegram = config.TelegramConfig{Enabled: true, Token: "t", ChatID: 42, BaseURL: tg.URL, TopN: 2}
		server := NewServer(cfg, nil)
		defer server.Close()
		if err := server.Store().ReplaceCompanies(context.Background(), sampleCompanies()); err != nil {
			t.Fatal(err)
		}

		w := postJSON(server, "/api/admin/digest/send?sort=per&order=asc", "", tokenFor(t, server, "analyst@example.com"))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		mu.Lock()
		defer mu.Unlock()
		if len(sent) != 1 {
			t.Fatalf("expected 1 message, got %d", len(sent))
		}
		if !strings.Contains(sent[0], "1. KB금융") || !strings.Contains(sent[0], "PER 오름차순") {
			t.Errorf("unexpected message %q", sent[0])
		}
	})
}

func TestStartDigestJob_Schedule(t *testing.T) {
	t.Run("Invalid", func(t *testing.T) {
		s := &Server{tgConfig: config.TelegramConfig{Schedule: "every morning"}}
		if err := s.startDigestJob(context.Background()); err == nil {
			t.Error("expected schedule parse error")
		}
	})

	t.Run("Valid", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s := &Server{tgConfig: config.TelegramConfig{Schedule: "0 8 * * 1-5"}}
		if err := s.startDigestJob(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
