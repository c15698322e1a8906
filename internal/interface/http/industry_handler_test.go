package httpapi

import (
	"net/http"
	"net/url"
	"testing"
)

func TestIndustryHandlers(t *testing.T) {
	server := newTestServer(t)

	t.Run("List", func(t *testing.T) {
		w := doRequest(server, "GET", "/api/industries", "")
		var body struct {
			Industries []industrySummary `json:"industries"`
		}
		decode(t, w, &body)
		if len(body.Industries) != 2 {
			t.Fatalf("expected 2 industries, got %v", body.Industries)
		}
	})

	t.Run("Overview", func(t *testing.T) {
		w := doRequest(server, "GET", "/api/industries"+pathOf("전기·전자"), "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var body struct {
			Industry  string   `json:"industry"`
			Companies []string `json:"companies"`
			Metrics   []struct {
				Metric   string             `json:"metric"`
				Average  *float64           `json:"average"`
				Stat     map[string]float64 `json:"stat"`
				Computed bool               `json:"computed"`
			} `json:"metrics"`
		}
		decode(t, w, &body)
		if body.Industry != "전기·전자" || len(body.Companies) != 2 || len(body.Metrics) != 4 {
			t.Fatalf("unexpected overview %s", w.Body.String())
		}
		per := body.Metrics[0]
		if per.Computed || per.Stat["최고"] != 28 {
			t.Errorf("PER should use precomputed stat, got %+v", per)
		}
		roe := body.Metrics[2]
		if !roe.Computed || roe.Stat["최고"] != 20 || roe.Stat["최저"] != 9 {
			t.Errorf("ROE stat should be computed from members, got %+v", roe)
		}
	})

	t.Run("LegacyPath", func(t *testing.T) {
		if w := doRequest(server, "GET", "/industry"+pathOf("은행"), ""); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if w := doRequest(server, "GET", "/api/industries"+pathOf("없음"), ""); w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}

func TestIndustryCompare(t *testing.T) {
	server := newTestServer(t)
	base := "/api/industries" + pathOf("전기·전자", "compare")

	t.Run("TwoCompanies", func(t *testing.T) {
		q := url.Values{"left": {"삼성전자"}, "right": {"SK하이닉스"}, "metric": {"roe"}}
		w := doRequest(server, "GET", base+"?"+q.Encode(), "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var body struct {
			Comparison struct {
				Metric      string   `json:"metric"`
				LeftAvg     *float64 `json:"left_avg"`
				RightAvg    *float64 `json:"right_avg"`
				IndustryAvg *float64 `json:"industry_avg"`
			} `json:"comparison"`
		}
		decode(t, w, &body)
		cmp := body.Comparison
		if cmp.Metric != "ROE" || cmp.LeftAvg == nil || *cmp.LeftAvg != 9 || cmp.RightAvg == nil || *cmp.RightAvg != 20 {
			t.Errorf("unexpected comparison %s", w.Body.String())
		}
		if cmp.IndustryAvg == nil || *cmp.IndustryAvg != 11 {
			t.Errorf("industry avg = %v", cmp.IndustryAvg)
		}
	})

	t.Run("LeftOnly", func(t *testing.T) {
		q := url.Values{"left": {"삼성전자"}}
		w := doRequest(server, "GET", base+"?"+q.Encode(), "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		if w := doRequest(server, "GET", base, ""); w.Code != http.StatusBadRequest {
			t.Errorf("missing left: expected 400, got %d", w.Code)
		}
		q := url.Values{"left": {"삼성전자"}, "metric": {"volume"}}
		if w := doRequest(server, "GET", base+"?"+q.Encode(), ""); w.Code != http.StatusBadRequest {
			t.Errorf("bad metric: expected 400, got %d", w.Code)
		}
		q = url.Values{"left": {"없는회사"}}
		if w := doRequest(server, "GET", base+"?"+q.Encode(), ""); w.Code != http.StatusNotFound {
			t.Errorf("unknown company: expected 404, got %d", w.Code)
		}
		q = url.Values{"left": {"삼성전자"}, "right": {"KB금융"}}
		if w := doRequest(server, "GET", base+"?"+q.Encode(), ""); w.Code != http.StatusNotFound {
			t.Errorf("company from another industry: expected 404, got %d", w.Code)
		}
	})
}
