package model

import (
	"testing"
)

func TestCountryID(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"united states", "US", 225},
		{"lowercase lookup", "us", 225},
		{"placeholder country", "xx", 244},
		{"unknown code", "zz", 0},
		{"empty code", "", 0},
		{"satellite provider", "a2", 245},
		{"first entry", "oc", 1},
		{"last entry", "mf", 252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountryID(tt.code); got != tt.want {
				t.Errorf("CountryID(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
