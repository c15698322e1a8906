package httpapi

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"kospi-treasure/internal/application/treasure"
	"kospi-treasure/internal/domain/metrics"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// startDigestJob 依設定推播尋寶摘要，ctx 取消時結束。
// 設定 Schedule 時以 cron 排程，否則依 Interval 週期執行。
func (s *Server) startDigestJob(ctx context.Context) error {
	if expr := strings.TrimSpace(s.tgConfig.Schedule); expr != "" {
		return s.startDigestCron(ctx, expr)
	}

	interval := s.tgConfig.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	go func() {
		// 避開啟動時的資料載入
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
		s.pushDigest(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pushDigest(ctx)
			}
		}
	}()
	return nil
}

func (s *Server) startDigestCron(ctx context.Context, expr string) error {
	c := cron.New()
	if _, err := c.AddFunc(expr, func() { s.pushDigest(ctx) }); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", expr, err)
	}
	c.Start()
	log.Printf("[Telegram] digest scheduled: %s", expr)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

func (s *Server) pushDigest(ctx context.Context) {
	if s.tgClient == nil {
		return
	}
	d, err := s.buildDigest(ctx, metrics.DefaultFilterSpec(), nil, s.tgConfig.TopN)
	if err != nil {
		log.Printf("[Telegram] digest skipped: %v", err)
		return
	}
	if len(d.Top) == 0 {
		log.Printf("[Telegram] digest skipped: no company matches the default filter")
		return
	}
	if err := s.tgClient.SendMessage(ctx, formatDigest(d)); err != nil {
		log.Printf("[Telegram] digest send failed: %v", err)
		return
	}
	log.Printf("[Telegram] digest sent top=%d total=%d", len(d.Top), d.Total)
}

func (s *Server) buildDigest(ctx context.Context, spec metrics.FilterSpec, sortSpec *metrics.SortSpec, limit int) (treasure.Digest, error) {
	var sortBy metrics.SortSpec
	if sortSpec != nil {
		sortBy = *sortSpec
	}
	return s.digestUC.Build(ctx, spec, sortBy, limit)
}

func digestView(d treasure.Digest) gin.H {
	items := make([]treasureItem, 0, len(d.Top))
	for _, it := range d.Top {
		items = append(items, treasureItem{Company: it.Record, Averages: it.Averages})
	}
	return gin.H{
		"filter": d.Filter,
		"sort":   d.Sort,
		"total":  d.Total,
		"top":    items,
	}
}

// formatDigest 產生 Telegram 訊息內容。
func formatDigest(d treasure.Digest) string {
	var b strings.Builder
	order := "내림차순"
	if d.Sort.Direction == metrics.Asc {
		order = "오름차순"
	}
	fmt.Fprintf(&b, "오늘의 보물 종목 (%s %s, 조건 충족 %d개)\n", d.Sort.Field, order, d.Total)
	fmt.Fprintf(&b, "조건: 업종 %s | PER %s | PBR %s | ROE %s\n",
		d.Filter.Industry, formatRange(d.Filter.PER), formatRange(d.Filter.PBR), formatRange(d.Filter.ROE))

	if len(d.Top) == 0 {
		b.WriteString("조건에 맞는 기업이 없습니다.")
		return b.String()
	}
	for i, it := range d.Top {
		fmt.Fprintf(&b, "%d. %s (%s) PER %s · PBR %s · ROE %s\n",
			i+1,
			it.Record.Name,
			it.Record.Industry,
			formatAvg(it.Averages[metrics.MetricPER]),
			formatAvg(it.Averages[metrics.MetricPBR]),
			formatAvg(it.Averages[metrics.MetricROE]),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRange(r metrics.Range) string {
	return fmt.Sprintf("%g~%g", r.Min, r.Max)
}

func formatAvg(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
