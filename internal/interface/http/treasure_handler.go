package httpapi

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"kospi-treasure/internal/application/treasure"
	"kospi-treasure/internal/domain/metrics"
	"kospi-treasure/internal/infrastructure/export"

	"github.com/gin-gonic/gin"
)

const exportPageSize = 500

type treasureItem struct {
	Company  metrics.CompanyRecord       `json:"company"`
	Averages map[metrics.Metric]*float64 `json:"averages"`
}

// handleTreasure 回傳清理後的全部公司紀錄，格式與前端原本讀取的陣列相同。
func (s *Server) handleTreasure(c *gin.Context) {
	records, err := s.huntUC.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleTreasureSearch(c *gin.Context) {
	spec, err := parseFilter(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	sortSpec, err := parseSort(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}

	out, err := s.huntUC.Run(c.Request.Context(), treasure.HuntInput{
		Filter: spec,
		Sort:   sortSpec,
		Pagination: treasure.Pagination{
			Offset: parseIntDefault(c.Query("offset"), 0),
			Limit:  parseIntDefault(c.Query("limit"), 0),
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]treasureItem, 0, len(out.Items))
	for _, it := range out.Items {
		items = append(items, treasureItem{Company: it.Record, Averages: it.Averages})
	}
	body := gin.H{
		"success":  true,
		"filter":   spec,
		"items":    items,
		"total":    out.Total,
		"has_more": out.HasMore,
	}
	if sortSpec != nil {
		body["sort"] = sortSpec
	}
	c.JSON(http.StatusOK, body)
}

// handleTreasureIndustries 回傳產業選單，第一個選項固定為 all。
func (s *Server) handleTreasureIndustries(c *gin.Context) {
	names, err := s.huntUC.Industries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"industries": append([]string{metrics.AllIndustries}, names...),
	})
}

// handleTreasureExport 以與搜尋相同的條件匯出全部結果為 Excel。
func (s *Server) handleTreasureExport(c *gin.Context) {
	spec, err := parseFilter(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	sortSpec, err := parseSort(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}

	var rows []export.Row
	page := treasure.Pagination{Limit: exportPageSize}
	for {
		out, err := s.huntUC.Run(c.Request.Context(), treasure.HuntInput{Filter: spec, Sort: sortSpec, Pagination: page})
		if err != nil {
			respondError(c, err)
			return
		}
		for _, it := range out.Items {
			rows = append(rows, export.Row{Record: it.Record, Averages: it.Averages})
		}
		if !out.HasMore {
			break
		}
		page.Offset += len(out.Items)
	}

	f, err := export.TreasureWorkbook(rows, s.calc.Years())
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("treasure-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Type", export.ContentType)
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[Export] write workbook failed: %v", err)
	}
}
