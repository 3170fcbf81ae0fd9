package simulator

import (
	"math"
	"time"
)

// Pattern gives the probability that a spot is occupied at a given time.
type Pattern interface {
	Occupancy(t time.Time) float64
	Name() string
}

var (
	PatternSteady  Pattern = &SteadyPattern{Level: 0.5}
	PatternDaily   Pattern = &DailyPattern{}
	PatternWeekly  Pattern = &WeeklyPattern{}
	PatternEvening Pattern = &SineWavePattern{Period: 24 * time.Hour, Peak: 20, Amplitude: 0.35}
)

func ParsePattern(name string) Pattern {
	switch name {
	case "daily":
		return PatternDaily
	case "weekly":
		return PatternWeekly
	case "evening":
		return PatternEvening
	default:
		return PatternSteady
	}
}

// SteadyPattern - constant occupancy
type SteadyPattern struct {
	Level float64
}

func (p *SteadyPattern) Occupancy(time.Time) float64 {
	return clamp(p.Level)
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern - commuter lot, full during business hours
type DailyPattern struct{}

func (p *DailyPattern) Occupancy(t time.Time) float64 {
	hour := t.Hour()
	switch {
	case hour >= 8 && hour <= 11:
		return 0.9
	case hour >= 12 && hour <= 13:
		return 0.6
	case hour >= 14 && hour <= 17:
		return 0.85
	case hour >= 18 && hour <= 21:
		return 0.3
	default:
		return 0.05
	}
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// WeeklyPattern - daily cycle on weekdays, mostly empty on weekends
type WeeklyPattern struct{}

func (p *WeeklyPattern) Occupancy(t time.Time) float64 {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return 0.15
	}
	return PatternDaily.Occupancy(t)
}

func (p *WeeklyPattern) Name() string {
	return "weekly"
}

// SineWavePattern - smooth cycle peaking at the given hour
type SineWavePattern struct {
	Period    time.Duration
	Peak      int
	Amplitude float64
}

func (p *SineWavePattern) Occupancy(t time.Time) float64 {
	period := p.Period
	if period == 0 {
		period = 24 * time.Hour
	}
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(dayStart) - time.Duration(p.Peak)*time.Hour
	phase := 2 * math.Pi * float64(offset) / float64(period)

	return clamp(0.5 + p.Amplitude*math.Cos(phase))
}

func (p *SineWavePattern) Name() string {
	return "evening"
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
