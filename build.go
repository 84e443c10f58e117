package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tidwall/match"
)

// ForkInputs is what a fork build reads: the prototypes and the locale.
type ForkInputs struct {
	Raw    *RawGameData
	Locale Localizer
}

// LoadForkInputs reads the fork's prototype dump and locale table.
func LoadForkInputs(fork *ForkConfig, locales *localeLoader, logger *log.Logger) (*ForkInputs, error) {
	raw, err := LoadRawGameData(fork.PrototypesPath, logger)
	if err != nil {
		return nil, fmt.Errorf("fork %s: %w", fork.ID, err)
	}
	locale, err := locales.Load(fork.LocalePath)
	if err != nil {
		return nil, fmt.Errorf("fork %s: %w", fork.ID, err)
	}
	return &ForkInputs{Raw: raw, Locale: locale}, nil
}

// BuildFork runs the pipeline for one fork. Progress goes to stderr and
// data warnings to logger.
func BuildFork(fork *ForkConfig, in *ForkInputs, logger *log.Logger) (*ProcessedGameData, BuildStats, error) {
	start := time.Now()
	raw := in.Raw
	fmt.Fprintf(os.Stderr, "Loaded: %d entities, %d reagents, %d recipes, %d reactions, %d metamorph recipes\n",
		raw.Entities.Len(), raw.Reagents.Len(), len(raw.Recipes), len(raw.Reactions), raw.MetamorphRecipes.Len())

	entities := ResolveComponents(raw, logger)

	pruned, err := FilterRelevant(raw, entities, fork.Filter, logger)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("fork %s: filter: %w", fork.ID, err)
	}
	fmt.Fprintf(os.Stderr, "Filtered: %d recipes, %d entities, %d reagents, %d reactions, %d special recipes\n",
		len(pruned.Recipes), pruned.Entities.Len(), pruned.Reagents.Len(),
		len(pruned.Reactions), pruned.SpecialRecipes.Len())

	resolved, err := ResolvePrototypes(pruned, entities, in.Locale,
		fork.MethodEntities, fork.MicrowaveRecipeTypes)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("fork %s: resolve: %w", fork.ID, err)
	}
	fmt.Fprintf(os.Stderr, "Resolved %d entities, %d reagents and %d recipes\n",
		resolved.Entities.Len(), resolved.Reagents.Len(), resolved.Recipes.Len())

	specials, err := ResolveSpecials(entities, fork.SpecialDiets, fork.SpecialReagents)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("fork %s: specials: %w", fork.ID, err)
	}
	fmt.Fprintf(os.Stderr, "Resolved %d special diets and reagents\n", len(specials))

	rewrites := sortingIDRewrites(fork.SortingIDRewrites, resolved.Entities, logger)

	sprites, err := BuildSprites(resolved, fork.MixFillState, logger)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("fork %s: sprites: %w", fork.ID, err)
	}
	fmt.Fprintf(os.Stderr, "Built sprite manifest for %d sprites\n", sprites.Manifest.Len())

	elapsed := time.Since(start)
	stats := BuildStats{
		Fork:           fork.ID,
		Entities:       resolved.Entities.Len(),
		Reagents:       resolved.Reagents.Len(),
		Recipes:        resolved.Recipes.Len(),
		Reactions:      len(pruned.Reactions),
		SpecialRecipes: pruned.SpecialRecipes.Len(),
		Sprites:        sprites.Manifest.Len(),
		Duration:       elapsed,
		DurationMs:     elapsed.Milliseconds(),
	}
	return &ProcessedGameData{
		Fork:                    fork,
		Resolved:                resolved,
		FoodSequenceStartPoints: pruned.FoodSequenceStartPoints,
		FoodSequenceElements:    pruned.FoodSequenceElements,
		FoodSequenceEndPoints:   pruned.FoodSequenceEndPoints,
		Specials:                specials,
		Sprites:                 sprites,
		SortingIDRewrites:       rewrites,
	}, stats, nil
}

// sortingIDRewrites keeps every rewrite, warning about IDs that are not in
// the cookbook. They are harmless but usually a typo or a removed entity.
func sortingIDRewrites(
	rewrites map[string]string,
	entities *OrderedMap[EntityID, *ResolvedEntity],
	logger *log.Logger,
) map[string]string {
	result := make(map[string]string, len(rewrites))
	for _, key := range sortedKeys(rewrites) {
		if !entities.Has(EntityID(key)) {
			logger.Printf("warning: Unknown entity prototype ID in rewrite file: %s", key)
		}
		result[key] = rewrites[key]
	}
	return result
}

// ── Run ─────────────────────────────────────────────────────────────

// Runner builds forks one after another, then writes their data files.
type Runner struct {
	Writer  *DataWriter
	Metrics *BuildMetrics

	locales *localeLoader
}

// builtFork is a fork's data waiting to be written.
type builtFork struct {
	data  *ProcessedGameData
	stats BuildStats
}

// Build loads and builds one fork without writing anything.
func (r *Runner) Build(fork *ForkConfig) (*ProcessedGameData, BuildStats, error) {
	fmt.Fprintf(os.Stderr, "Starting work on fork %s: %s...\n", fork.ID, fork.Name)

	warnings := r.Metrics.WarningCounter(fork.ID, os.Stderr)
	logger := log.New(warnings, "", 0)

	if r.locales == nil {
		r.locales = newLocaleLoader()
	}
	in, err := LoadForkInputs(fork, r.locales, logger)
	if err != nil {
		return nil, BuildStats{}, err
	}
	data, stats, err := BuildFork(fork, in, logger)
	if err != nil {
		return nil, BuildStats{}, err
	}
	stats.Warnings = warnings.Count()
	r.Metrics.ObserveBuild(fork.ID, stats)
	fmt.Fprintf(os.Stderr, "Finished building %s\n", fork.ID)
	return data, stats, nil
}

// RunAll builds every fork in order, then writes the data files and the
// index. A failed build aborts the run before anything is written.
func (r *Runner) RunAll(ctx context.Context, forks []*ForkConfig) ([]BuildStats, error) {
	built := make([]builtFork, 0, len(forks))
	for _, fork := range forks {
		data, s, err := r.Build(fork)
		if err != nil {
			return nil, err
		}
		built = append(built, builtFork{data, s})
	}

	entries := make([]ForkIndexEntry, 0, len(built))
	stats := make([]BuildStats, 0, len(built))
	for _, b := range built {
		entry, err := r.Writer.WriteFork(ctx, b.data)
		if err != nil {
			return nil, fmt.Errorf("fork %s: %w", b.data.Fork.ID, err)
		}
		b.stats.Hash = entry.Hash
		entries = append(entries, entry)
		stats = append(stats, b.stats)
	}
	if err := r.Writer.WriteIndex(ctx, entries); err != nil {
		return nil, err
	}
	return stats, nil
}

// selectForks keeps the forks whose ID matches glob, in list order.
func selectForks(forks []*ForkConfig, glob string) []*ForkConfig {
	if glob == "" || glob == "*" {
		return forks
	}
	var selected []*ForkConfig
	for _, f := range forks {
		if match.Match(f.ID, glob) {
			selected = append(selected, f)
		}
	}
	return selected
}
