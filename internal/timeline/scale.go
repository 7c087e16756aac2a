package timeline

import (
	"fmt"
	"time"
)

// ViewMode selects the time span of one column.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewMonth ViewMode = "month"
	ViewYear  ViewMode = "year"
)

const day = 24 * time.Hour

// IsValid reports whether m is a known view mode.
func (m ViewMode) IsValid() bool {
	switch m {
	case ViewDay, ViewMonth, ViewYear:
		return true
	}
	return false
}

// ParseViewMode parses s, defaulting to day when empty.
func ParseViewMode(s string) (ViewMode, error) {
	if s == "" {
		return ViewDay, nil
	}
	m := ViewMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown view mode %q", s)
	}
	return m, nil
}

// Unit is the time span of one column.
func (m ViewMode) Unit() time.Duration {
	switch m {
	case ViewMonth:
		return 30 * day
	case ViewYear:
		return 365 * day
	default:
		return day
	}
}

// DefaultColumnWidth is the column width used when none is configured.
func (m ViewMode) DefaultColumnWidth() float64 {
	switch m {
	case ViewMonth, ViewYear:
		return 120
	default:
		return 38
	}
}

// Config holds surface geometry.
type Config struct {
	ViewMode     ViewMode
	ColumnWidth  float64
	BarHeight    float64
	Padding      float64
	HeaderHeight float64
}

// DefaultConfig returns the day-mode surface geometry.
func DefaultConfig() Config {
	return Config{
		ViewMode:     ViewDay,
		BarHeight:    30,
		Padding:      20,
		HeaderHeight: 50,
	}
}

func (c Config) columnWidth() float64 {
	if c.ColumnWidth > 0 {
		return c.ColumnWidth
	}
	return c.ViewMode.DefaultColumnWidth()
}

// Scale maps times onto horizontal surface positions.
type Scale struct {
	Origin      time.Time
	Unit        time.Duration
	ColumnWidth float64
}

// X returns the horizontal position of t.
func (s Scale) X(t time.Time) float64 {
	return float64(t.Sub(s.Origin)) / float64(s.Unit) * s.ColumnWidth
}

// Columns returns the start time of each column up to end.
func (s Scale) Columns(end time.Time) []time.Time {
	var cols []time.Time
	for t := s.Origin; !t.After(end); t = t.Add(s.Unit) {
		cols = append(cols, t)
	}
	return cols
}
