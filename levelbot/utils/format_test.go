package utils

import (
	"testing"
	"time"
)

func TestFormatXP(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{999, "999"},
		{1000, "1,000"},
		{15000, "15,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := FormatXP(tt.in); got != tt.want {
			t.Errorf("FormatXP(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0, 4); got != "░░░░" {
		t.Errorf("ProgressBar(0) = %q", got)
	}
	if got := ProgressBar(100, 4); got != "████" {
		t.Errorf("ProgressBar(100) = %q", got)
	}
	if got := ProgressBar(50, 4); got != "██░░" {
		t.Errorf("ProgressBar(50) = %q", got)
	}
	if got := ProgressBar(150, 2); got != "██" {
		t.Errorf("ProgressBar(150) = %q", got)
	}
	if got := ProgressBar(-5, 2); got != "░░" {
		t.Errorf("ProgressBar(-5) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
