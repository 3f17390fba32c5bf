// Package analytics derives summaries from a window of mood samples. Every function is
// pure: no I/O, no clock, safe to call concurrently.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/mindbloom/internal/constants"
	"github.com/julianstephens/mindbloom/internal/models"
)

// Trend is the direction of mood values across a window
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// OddWindow selects how the middle sample of an odd-length window is treated when
// splitting it into halves.
type OddWindow int

const (
	// OddWindowExcludeMiddle compares samples[:n/2] with samples[n-n/2:].
	OddWindowExcludeMiddle OddWindow = iota
	// OddWindowMiddleToSecondHalf compares samples[:n/2] with samples[n/2:].
	OddWindowMiddleToSecondHalf
)

// epsilon absorbs float error so a difference of exactly the threshold stays stable.
const epsilon = 1e-9

// Options tunes the summary computation.
type Options struct {
	TrendThreshold float64
	OddWindow      OddWindow
}

// DefaultOptions returns a threshold of 0.3 with the middle sample excluded.
func DefaultOptions() Options {
	return Options{
		TrendThreshold: constants.DefaultTrendThreshold,
		OddWindow:      OddWindowExcludeMiddle,
	}
}

// Summary is the derived view of a window of samples
type Summary struct {
	Entries        []models.MoodEntry `json:"entries"`
	Average        float64            `json:"average"`
	Trend          Trend              `json:"trend"`
	MostCommonMood string             `json:"mostCommonMood"`
	TotalEntries   int                `json:"totalEntries"`
}

// Engine computes summaries with fixed options.
type Engine struct {
	Options Options
}

// NewEngine returns an Engine using opts.
func NewEngine(opts Options) Engine {
	return Engine{Options: opts}
}

// Summarize computes a Summary with DefaultOptions. samples must be in ascending date order.
func Summarize(samples []models.MoodEntry) Summary {
	return NewEngine(DefaultOptions()).Summarize(samples)
}

// Summarize computes a Summary. samples must be in ascending date order.
func (e Engine) Summarize(samples []models.MoodEntry) Summary {
	entries := samples
	if entries == nil {
		entries = []models.MoodEntry{}
	}
	return Summary{
		Entries:        entries,
		Average:        Round1(mean(samples)),
		Trend:          e.Trend(samples),
		MostCommonMood: MostCommonMood(samples),
		TotalEntries:   len(samples),
	}
}

// Trend compares the mean of the first half of samples with the mean of the second half.
func (e Engine) Trend(samples []models.MoodEntry) Trend {
	n := len(samples)
	if n < 2 {
		return TrendStable
	}

	first := samples[:n/2]
	second := samples[n-n/2:]
	if e.Options.OddWindow == OddWindowMiddleToSecondHalf {
		second = samples[n/2:]
	}

	diff := mean(second) - mean(first)
	switch {
	case diff > e.Options.TrendThreshold+epsilon:
		return TrendImproving
	case -diff > e.Options.TrendThreshold+epsilon:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// MostCommonMood returns the modal mood id. Ties go to the id encountered first; empty
// input yields "".
func MostCommonMood(samples []models.MoodEntry) string {
	counts := make(map[string]int)
	top := 0
	for _, s := range samples {
		counts[s.MoodID]++
		if counts[s.MoodID] > top {
			top = counts[s.MoodID]
		}
	}
	for _, s := range samples {
		if counts[s.MoodID] == top {
			return s.MoodID
		}
	}
	return ""
}

// MoodCount is one bar of a mood distribution
type MoodCount struct {
	MoodID string `json:"moodId"`
	Count  int    `json:"count"`
}

// Distribution counts samples per mood id, in first-encountered order.
func Distribution(samples []models.MoodEntry) []MoodCount {
	idx := make(map[string]int)
	out := []MoodCount{}
	for _, s := range samples {
		i, ok := idx[s.MoodID]
		if !ok {
			i = len(out)
			idx[s.MoodID] = i
			out = append(out, MoodCount{MoodID: s.MoodID})
		}
		out[i].Count++
	}
	return out
}

// Streak counts consecutive calendar days with a sample, walking back from today's date.
// A missing sample for today yields 0. Order and duplicates in samples do not matter.
func Streak(samples []models.MoodEntry, today time.Time) int {
	days := make(map[string]struct{}, len(samples))
	for _, s := range samples {
		days[s.EntryDate] = struct{}{}
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	streak := 0
	for {
		if _, ok := days[day.Format(constants.DateFormat)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// WeeklyAverage is the mean mood value of one ISO week
type WeeklyAverage struct {
	WeekStart string  `json:"weekStart"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

// WeeklyAverages groups samples by ISO week (Monday start), ascending. Samples with
// malformed dates are skipped.
func WeeklyAverages(samples []models.MoodEntry) []WeeklyAverage {
	type acc struct {
		sum   int
		count int
	}
	weeks := make(map[string]*acc)
	for _, s := range samples {
		d, err := time.Parse(constants.DateFormat, s.EntryDate)
		if err != nil {
			continue
		}
		offset := (int(d.Weekday()) + 6) % 7 // days since Monday
		start := d.AddDate(0, 0, -offset).Format(constants.DateFormat)
		a, ok := weeks[start]
		if !ok {
			a = &acc{}
			weeks[start] = a
		}
		a.sum += s.MoodValue
		a.count++
	}

	out := make([]WeeklyAverage, 0, len(weeks))
	for start, a := range weeks {
		out = append(out, WeeklyAverage{
			WeekStart: start,
			Average:   Round1(float64(a.sum) / float64(a.count)),
			Count:     a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart < out[j].WeekStart })
	return out
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func mean(samples []models.MoodEntry) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0
	for _, s := range samples {
		sum += s.MoodValue
	}
	return float64(sum) / float64(len(samples))
}
