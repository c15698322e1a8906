package httpapi

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"kospi-treasure/internal/domain/metrics"

	"github.com/gin-gonic/gin"
)

func parseBearer(h string) string {
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func currentUserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// parseFilter 讀取 industry 與各指標的 *_min/*_max，未帶的邊界沿用預設滑桿範圍。
func parseFilter(c *gin.Context) (metrics.FilterSpec, error) {
	spec := metrics.DefaultFilterSpec()
	if industry := strings.TrimSpace(c.Query("industry")); industry != "" {
		spec.Industry = industry
	}

	bounds := []struct {
		key string
		dst *float64
	}{
		{"per_min", &spec.PER.Min}, {"per_max", &spec.PER.Max},
		{"pbr_min", &spec.PBR.Min}, {"pbr_max", &spec.PBR.Max},
		{"roe_min", &spec.ROE.Min}, {"roe_max", &spec.ROE.Max},
	}
	for _, b := range bounds {
		raw := strings.TrimSpace(c.Query(b.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			return spec, fmt.Errorf("invalid %s: %q", b.key, raw)
		}
		*b.dst = v
	}

	for _, m := range metrics.RatioMetrics {
		rg, _ := spec.RangeFor(m)
		if rg.Min > rg.Max {
			return spec, fmt.Errorf("%s range min %.2f exceeds max %.2f", m, rg.Min, rg.Max)
		}
	}
	return spec, nil
}

// parseSort 讀取 sort 與 order；未帶 sort 時回傳 nil 表示保持原順序。
func parseSort(c *gin.Context) (*metrics.SortSpec, error) {
	field := strings.TrimSpace(c.Query("sort"))
	if field == "" {
		return nil, nil
	}
	m, ok := metrics.ParseMetric(field)
	if !ok {
		return nil, fmt.Errorf("unknown sort field %q", field)
	}
	return &metrics.SortSpec{Field: m, Direction: metrics.ParseDirection(c.Query("order"))}, nil
}
