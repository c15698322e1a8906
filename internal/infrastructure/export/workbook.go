package export

import (
	"fmt"

	"kospi-treasure/internal/domain/metrics"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "보물찾기"
	YearlySheet  = "연도별"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Row 為匯出的一筆公司資料，Averages 為顯示用平均（nil 代表缺資料）。
type Row struct {
	Record   metrics.CompanyRecord
	Averages map[metrics.Metric]*float64
}

// TreasureWorkbook 產生尋寶結果的 Excel 檔。
// 第一個工作表為各指標平均，第二個工作表列出 years 內每年的比率指標原始值。
func TreasureWorkbook(rows []Row, years []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeSummary(f, rows, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(YearlySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := writeYearly(f, rows, years, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummary(f *excelize.File, rows []Row, style int) error {
	header := []interface{}{"기업명", "업종명"}
	for _, m := range metrics.CompanyMetrics {
		header = append(header, string(m)+" 평균")
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		values := []interface{}{r.Record.Name, r.Record.Industry}
		for _, m := range metrics.CompanyMetrics {
			values = append(values, cellValue(r.Averages[m]))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeYearly(f *excelize.File, rows []Row, years []string, style int) error {
	header := []interface{}{"기업명", "지표"}
	for _, y := range years {
		header = append(header, y)
	}
	if err := f.SetSheetRow(YearlySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(YearlySheet, 1, 1, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, r := range rows {
		for _, m := range metrics.RatioMetrics {
			values := []interface{}{r.Record.Name, string(m)}
			s := r.Record.Series(m)
			for _, y := range years {
				if v, ok := s.Value(y); ok {
					values = append(values, v)
				} else {
					values = append(values, "")
				}
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(YearlySheet, cell, &values); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}
	return nil
}

func cellValue(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
