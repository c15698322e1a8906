package httpapi

import (
	"net/http"
	"strings"

	"kospi-treasure/internal/domain/metrics"

	"github.com/gin-gonic/gin"
)

type industrySummary struct {
	Name      string `json:"name"`
	Companies int    `json:"companies"`
}

func (s *Server) handleIndustries(c *gin.Context) {
	aggs, err := s.industries.ListIndustries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]industrySummary, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, industrySummary{Name: a.Name, Companies: len(a.Companies)})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "industries": out})
}

func (s *Server) handleIndustry(c *gin.Context) {
	out, err := s.compareUC.IndustryOverview(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"industry":  out.Name,
		"companies": out.Companies,
		"metrics":   out.Metrics,
	})
}

// handleIndustryCompare 比較產業內左右兩家公司；metric 預設 PER。
func (s *Server) handleIndustryCompare(c *gin.Context) {
	left := strings.TrimSpace(c.Query("left"))
	if left == "" {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, "left is required")
		return
	}

	metric := metrics.MetricPER
	if raw := c.Query("metric"); raw != "" {
		m, ok := metrics.ParseMetric(raw)
		if !ok {
			writeError(c, http.StatusBadRequest, errCodeBadRequest, "unknown metric "+raw)
			return
		}
		metric = m
	}

	out, err := s.compareUC.CompanyVsCompany(c.Request.Context(), c.Param("name"), left, c.Query("right"), metric)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comparison": out})
}
