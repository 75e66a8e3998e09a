package youtube

import (
	"testing"
	"time"
)

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"seconds_only", "PT45S", 45 * time.Second, false},
		{"minutes_seconds", "PT2M30S", 2*time.Minute + 30*time.Second, false},
		{"minutes_only", "PT3M", 3 * time.Minute, false},
		{"hours", "PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second, false},
		{"live_stream", "P0D", 0, false},
		{"with_days", "P1DT2H", 26 * time.Hour, false},
		{"zero_seconds", "PT0S", 0, false},
		{"no_prefix", "T1M", 0, true},
		{"dangling_number", "PT15", 0, true},
		{"day_inside_time", "PT1D", 0, true},
		{"minute_outside_time", "P1M", 0, true},
		{"double_t", "PT1MT2S", 0, true},
		{"garbage", "banana", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISODuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseISODuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseISODuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
