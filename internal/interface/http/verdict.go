package httpapi

import (
	"fmt"

	"kospi-treasure/internal/domain/metrics"
)

// renderVerdict 將比較結果轉成畫面上的韓文說明。
func renderVerdict(v metrics.Verdict) string {
	if v.Insufficient {
		return fmt.Sprintf("%s의 %s 비교에 필요한 데이터가 부족합니다.", v.Company, v.Metric)
	}
	if v.Diff == 0 {
		return fmt.Sprintf("%s의 %s 평균(%.2f)은 업종 평균과 같습니다.", v.Company, v.Metric, v.CompanyAvg)
	}

	side := "낮으며"
	if v.Direction == metrics.Above {
		side = "높으며"
	}
	gap := "차이가 크지 않습니다"
	if v.Gap == metrics.GapWide {
		gap = "차이가 큽니다"
	}
	return fmt.Sprintf("%s의 %s 평균(%.2f)은 업종 평균(%.2f)보다 %s, %s.",
		v.Company, v.Metric, v.CompanyAvg, v.IndustryAvg, side, gap)
}
