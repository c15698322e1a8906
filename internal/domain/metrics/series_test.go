package metrics

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSeries_Average(t *testing.T) {
	years := []string{"2022", "2023", "2024"}
	tests := []struct {
		name   string
		series Series
		want   float64
		wantOK bool
	}{
		{name: "Empty", series: Series{}, wantOK: false},
		{name: "Nil", series: nil, wantOK: false},
		{name: "All Missing", series: Series{"2022": nil, "2023": nil}, wantOK: false},
		{name: "Single Value", series: Series{"2023": Float(7.5)}, want: 7.5, wantOK: true},
		{name: "Partial", series: Series{"2022": Float(4), "2023": Float(6), "2024": nil}, want: 5, wantOK: true},
		{name: "Full", series: Series{"2022": Float(10), "2023": Float(12), "2024": Float(14)}, want: 12, wantOK: true},
		{name: "Ignores Other Years", series: Series{"2021": Float(100), "2024": Float(2)}, want: 2, wantOK: true},
		{name: "NaN Treated As Missing", series: Series{"2022": Float(math.NaN()), "2023": Float(3)}, want: 3, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.series.Average(years)
			if ok != tt.wantOK {
				t.Fatalf("Average() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Average() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeries_UnmarshalJSON(t *testing.T) {
	var s Series
	data := `{"2022": 1.5, "2023": null, "2024": "N/A", "2021": true, "2020": "3.1"}`
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := s.Value("2022"); !ok || v != 1.5 {
		t.Errorf("expected 2022=1.5, got %v %v", v, ok)
	}
	for _, y := range []string{"2023", "2024", "2021", "2020"} {
		if _, ok := s.Value(y); ok {
			t.Errorf("expected %s to be missing", y)
		}
	}

	t.Run("Non Object", func(t *testing.T) {
		var bad Series
		if err := json.Unmarshal([]byte(`"oops"`), &bad); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bad) != 0 {
			t.Errorf("expected empty series, got %v", bad)
		}
	})
}

func TestSeries_Clone(t *testing.T) {
	orig := Series{"2022": Float(1), "2023": nil}
	cp := orig.Clone()
	*cp["2022"] = 99
	if v, _ := orig.Value("2022"); v != 1 {
		t.Errorf("clone aliases original: %v", v)
	}
	if _, ok := cp["2023"]; !ok {
		t.Error("clone dropped missing year key")
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		1.005:   1.01,
		12.3449: 12.34,
		-0.125:  -0.13,
		5:       5,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
	if RoundPtr(nil) != nil {
		t.Error("expected nil")
	}
}

func TestParseMetric(t *testing.T) {
	cases := []struct {
		in   string
		want Metric
		ok   bool
	}{
		{"PER", MetricPER, true},
		{"pbr", MetricPBR, true},
		{" roe ", MetricROE, true},
		{"market_cap", MetricMarketCap, true},
		{"시가총액", MetricMarketCap, true},
		{"지배주주순이익", MetricControllingNetIncome, true},
		{"", "", false},
		{"EPS", "", false},
	}
	for _, c := range cases {
		got, ok := ParseMetric(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseMetric(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
