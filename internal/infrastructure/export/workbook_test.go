package export

import (
	"testing"

	"kospi-treasure/internal/domain/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreasureWorkbook(t *testing.T) {
	rows := []Row{
		{
			Record: metrics.CompanyRecord{
				Name:     "삼성전자",
				Industry: "전기·전자",
				Metrics: map[metrics.Metric]metrics.Series{
					metrics.MetricPER: metrics.SeriesOf(map[string]float64{"2023": 12.5, "2024": 10}),
				},
			},
			Averages: map[metrics.Metric]*float64{
				metrics.MetricPER: metrics.Float(11.25),
				metrics.MetricPBR: nil,
			},
		},
	}

	f, err := TreasureWorkbook(rows, []string{"2023", "2024"})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, YearlySheet}, f.GetSheetList())

	header, err := f.GetCellValue(SummarySheet, "C1")
	require.NoError(t, err)
	assert.Equal(t, "PER 평균", header)

	name, _ := f.GetCellValue(SummarySheet, "A2")
	per, _ := f.GetCellValue(SummarySheet, "C2")
	pbr, _ := f.GetCellValue(SummarySheet, "D2")
	assert.Equal(t, "삼성전자", name)
	assert.Equal(t, "11.25", per)
	assert.Empty(t, pbr)

	yearly, err := f.GetRows(YearlySheet)
	require.NoError(t, err)
	require.Len(t, yearly, 1+len(metrics.RatioMetrics))
	assert.Equal(t, []string{"기업명", "지표", "2023", "2024"}, yearly[0])
	assert.Equal(t, []string{"삼성전자", "PER", "12.5", "10"}, yearly[1])
}

func TestTreasureWorkbook_Empty(t *testing.T) {
	f, err := TreasureWorkbook(nil, []string{"2024"})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
