package main

import (
	"fmt"
	"io"
	"runtime"
	"time"
)

// BuildSummary is the JSON form of a whole run.
type BuildSummary struct {
	Date    string       `json:"date"`
	GoVer   string       `json:"go"`
	Forks   []BuildStats `json:"forks"`
	TotalMs int64        `json:"totalMs"`
}

func newBuildSummary(stats []BuildStats, now time.Time) BuildSummary {
	s := BuildSummary{
		Date:  now.UTC().Format(time.RFC3339),
		GoVer: runtime.Version(),
		Forks: stats,
	}
	if s.Forks == nil {
		s.Forks = []BuildStats{}
	}
	for _, f := range stats {
		s.TotalMs += f.DurationMs
	}
	return s
}

const summaryRule = "------------------------"

// printSummary writes one row per fork and a total row.
func printSummary(w io.Writer, stats []BuildStats) {
	fmt.Fprintf(w, "%-24s %8s %8s %8s %8s %8s %7s\n", "Fork", "Entities", "Reagents", "Recipes", "Sprites", "Warnings", "Time")
	fmt.Fprintf(w, "%-24s %8s %8s %8s %8s %8s %7s\n", summaryRule, "--------", "--------", "--------", "--------", "--------", "-------")
	var total BuildStats
	for _, s := range stats {
		fmt.Fprintf(w, "%-24s %8d %8d %8d %8d %8d %6.1fs\n",
			s.Fork, s.Entities, s.Reagents, s.Recipes, s.Sprites, s.Warnings, float64(s.DurationMs)/1000)
		total.Entities += s.Entities
		total.Reagents += s.Reagents
		total.Recipes += s.Recipes
		total.Sprites += s.Sprites
		total.Warnings += s.Warnings
		total.DurationMs += s.DurationMs
	}
	fmt.Fprintf(w, "%-24s %8s %8s %8s %8s %8s %7s\n", summaryRule, "--------", "--------", "--------", "--------", "--------", "-------")
	fmt.Fprintf(w, "%-24s %8d %8d %8d %8d %8d %6.1fs\n",
		"TOTAL", total.Entities, total.Reagents, total.Recipes, total.Sprites, total.Warnings, float64(total.DurationMs)/1000)
}
