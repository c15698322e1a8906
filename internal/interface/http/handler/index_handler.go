package handler

import (
	"encoding/json"
	"net/http"
)

// Index 回傳服務首頁 handler，只接受 GET 並回應服務名稱與主要端點。
func Index(name string) http.Handler {
	body, _ := json.Marshal(map[string]any{
		"message":   name + " 실행 중",
		"endpoints": []string{"/api/treasure", "/api/treasure/search", "/api/treasure/export", "/api/companies/:name/compare", "/api/industries/:name"},
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}
