package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// reloadFixtures 重新讀取資料檔並整批替換儲存層內容；同時只允許一個重載。
func (s *Server) reloadFixtures(ctx context.Context) (reloadStatus, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	res, err := s.loader.LoadInto(ctx, s.sink)
	if err != nil {
		return reloadStatus{}, err
	}
	st := reloadStatus{
		At:         time.Now(),
		Companies:  len(res.Companies),
		Industries: len(res.Industries),
		Derived:    res.Derived,
		Skipped:    res.Skipped,
	}
	s.lastReload = &st
	return st, nil
}

func (s *Server) handleFixturesReload(c *gin.Context) {
	st, err := s.reloadFixtures(c.Request.Context())
	if err != nil {
		log.Printf("[Fixture] reload by user=%s failed: %v", currentUserID(c), err)
		writeError(c, http.StatusInternalServerError, errCodeInternal, "fixture reload failed")
		return
	}
	log.Printf("[Fixture] reload by user=%s companies=%d industries=%d", currentUserID(c), st.Companies, st.Industries)
	c.JSON(http.StatusOK, gin.H{"success": true, "reload": st})
}

func (s *Server) handleFixturesStatus(c *gin.Context) {
	s.reloadMu.Lock()
	last := s.lastReload
	s.reloadMu.Unlock()

	body := gin.H{"success": true, "last_reload": last}
	if s.db == nil {
		companies, industries := s.store.Stats()
		body["companies"] = companies
		body["industries"] = industries
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleDigestPreview(c *gin.Context) {
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
	d, err := s.buildDigest(c.Request.Context(), spec, sortSpec, parseIntDefault(c.Query("limit"), s.tgConfig.TopN))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "digest": digestView(d), "text": formatDigest(d)})
}

func (s *Server) handleDigestSend(c *gin.Context) {
	if s.tgClient == nil || !s.tgClient.Configured() {
		writeError(c, http.StatusServiceUnavailable, errCodeUnavailable, "telegram notifier not configured")
		return
	}
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
	d, err := s.buildDigest(c.Request.Context(), spec, sortSpec, parseIntDefault(c.Query("limit"), s.tgConfig.TopN))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.tgClient.SendMessage(c.Request.Context(), formatDigest(d)); err != nil {
		log.Printf("[Telegram] manual digest by user=%s failed: %v", currentUserID(c), err)
		writeError(c, http.StatusBadGateway, errCodeInternal, "telegram send failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sent": len(d.Top), "total": d.Total})
}
