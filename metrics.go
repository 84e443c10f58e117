package main

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildMetrics records per-fork build sizes and warnings. Each run owns its
// own registry; nothing is registered globally.
type BuildMetrics struct {
	Registry *prometheus.Registry

	entities       *prometheus.GaugeVec
	reagents       *prometheus.GaugeVec
	recipes        *prometheus.GaugeVec
	reactions      *prometheus.GaugeVec
	specialRecipes *prometheus.GaugeVec
	sprites        *prometheus.GaugeVec
	warnings       *prometheus.CounterVec
	buildSeconds   *prometheus.HistogramVec
}

func NewBuildMetrics() *BuildMetrics {
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{"fork"})
	}
	m := &BuildMetrics{
		Registry:       prometheus.NewRegistry(),
		entities:       gauge("cookbook_entities", "Entities in the fork's data file."),
		reagents:       gauge("cookbook_reagents", "Reagents in the fork's data file."),
		recipes:        gauge("cookbook_recipes", "Recipes in the fork's data file, of every kind."),
		reactions:      gauge("cookbook_reactions", "Reactions kept by the relevance filter."),
		specialRecipes: gauge("cookbook_special_recipes", "Slice, butcher, construction and deep-fry recipes."),
		sprites:        gauge("cookbook_sprites", "Distinct sprites in the fork's manifest."),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cookbook_warnings_total",
			Help: "Data warnings logged while building.",
		}, []string{"fork"}),
		buildSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cookbook_build_seconds",
			Help:    "Time to build one fork, excluding the write.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"fork"}),
	}
	m.Registry.MustRegister(
		m.entities, m.reagents, m.recipes, m.reactions, m.specialRecipes, m.sprites,
		m.warnings, m.buildSeconds,
	)
	return m
}

// ObserveBuild records the outcome of one fork build.
func (m *BuildMetrics) ObserveBuild(fork string, s BuildStats) {
	m.entities.WithLabelValues(fork).Set(float64(s.Entities))
	m.reagents.WithLabelValues(fork).Set(float64(s.Reagents))
	m.recipes.WithLabelValues(fork).Set(float64(s.Recipes))
	m.reactions.WithLabelValues(fork).Set(float64(s.Reactions))
	m.specialRecipes.WithLabelValues(fork).Set(float64(s.SpecialRecipes))
	m.sprites.WithLabelValues(fork).Set(float64(s.Sprites))
	m.buildSeconds.WithLabelValues(fork).Observe(s.Duration.Seconds())
}

// WarningCounter returns a writer for a fork's logger. It passes everything
// through to out and counts the lines that are warnings.
func (m *BuildMetrics) WarningCounter(fork string, out io.Writer) *warningCounter {
	return &warningCounter{out: out, counter: m.warnings.WithLabelValues(fork)}
}

// WriteTextfile writes every metric in the text exposition format, for the
// node exporter's textfile collector.
func (m *BuildMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

var warningPrefix = []byte("warning:")

type warningCounter struct {
	mu      sync.Mutex
	out     io.Writer
	counter prometheus.Counter
	count   int
}

func (w *warningCounter) Write(p []byte) (int, error) {
	w.mu.Lock()
	for _, line := range bytes.Split(p, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimSpace(line), warningPrefix) {
			w.counter.Inc()
			w.count++
		}
	}
	w.mu.Unlock()
	return w.out.Write(p)
}

// Count returns the number of warnings seen so far.
func (w *warningCounter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// BuildStats summarizes one fork build.
type BuildStats struct {
	Fork           string        `json:"fork"`
	Entities       int           `json:"entities"`
	Reagents       int           `json:"reagents"`
	Recipes        int           `json:"recipes"`
	Reactions      int           `json:"reactions"`
	SpecialRecipes int           `json:"specialRecipes"`
	Sprites        int           `json:"sprites"`
	Warnings       int           `json:"warnings"`
	Hash           string        `json:"hash,omitempty"`
	Duration       time.Duration `json:"-"`
	DurationMs     int64         `json:"timeMs"`
}
