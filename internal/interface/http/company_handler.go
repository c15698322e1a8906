package httpapi

import (
	"net/http"

	"kospi-treasure/internal/domain/metrics"

	"github.com/gin-gonic/gin"
)

// handleCompanyNames 回傳公司名稱陣列（原 /companies/names 的純陣列格式）。
func (s *Server) handleCompanyNames(c *gin.Context) {
	names, err := s.companies.CompanyNames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) handleCompanyList(c *gin.Context) {
	names, err := s.companies.CompanyNames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "companies": names, "total": len(names)})
}

func (s *Server) handleCompany(c *gin.Context) {
	rec, err := s.companies.FindCompany(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"company":  rec,
		"averages": s.huntUC.DisplayAverages(rec),
		"valid":    s.calc.IsValid(rec),
		"years":    s.calc.Years(),
	})
}

type verdictView struct {
	metrics.Verdict
	Text string `json:"text"`
}

// newVerdictView 以原始數值產生說明文字，輸出的數值才四捨五入。
func newVerdictView(v metrics.Verdict) verdictView {
	text := renderVerdict(v)
	if !v.Insufficient {
		v.CompanyAvg = metrics.Round2(v.CompanyAvg)
		v.IndustryAvg = metrics.Round2(v.IndustryAvg)
		v.Diff = metrics.Round2(v.Diff)
	}
	return verdictView{Verdict: v, Text: text}
}

func (s *Server) handleCompanyCompare(c *gin.Context) {
	out, err := s.compareUC.CompanyVsIndustry(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]verdictView, 0, len(out.Verdicts))
	for _, v := range out.Verdicts {
		views = append(views, newVerdictView(v))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"company":  out.Company.Name,
		"industry": out.Industry,
		"verdicts": views,
		"chart":    out.Chart,
		"label":    "코스피 기준 업종 평균",
	})
}
