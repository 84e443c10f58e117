package main

import (
	"errors"
	"fmt"
	"log"
	"slices"
)

var (
	// ErrUnresolvedEntity means the filter marked an entity as used that does not exist.
	ErrUnresolvedEntity = errors.New("could not resolve entity")
	// ErrUnresolvedReagent means the filter marked a reagent as used that does not exist.
	ErrUnresolvedReagent = errors.New("could not resolve reagent")
)

// PrunedGameData is everything that is relevant to the cookbook, and nothing else.
type PrunedGameData struct {
	Entities       *OrderedMap[EntityID, *ResolvedEntity]
	Reagents       *OrderedMap[ReagentID, *ReagentPrototype]
	Recipes        []*MicrowaveRecipe
	Reactions      []*ReactionPrototype
	SpecialRecipes *OrderedMap[string, *Recipe]
	ReagentSources *OrderedMap[ReagentID, []EntityID]

	FoodSequenceStartPoints *OrderedMap[TagID, []EntityID]
	FoodSequenceElements    *OrderedMap[TagID, []EntityID]
	FoodSequenceEndPoints   *OrderedMap[TagID, []EntityID]
}

// FilterRelevant computes the closure of entities, reagents and recipes
// reachable from the microwave and metamorph recipes.
func FilterRelevant(
	raw *RawGameData,
	entities *OrderedMap[EntityID, *ResolvedEntity],
	params FilterParams,
	logger *log.Logger,
) (*PrunedGameData, error) {
	return newRelevanceFilter(raw, entities, params, logger).run()
}

// relevanceFilter holds the closure state. The used-sets and recipe maps
// only ever grow, which is what makes every fixed-point loop terminate.
type relevanceFilter struct {
	raw      *RawGameData
	entities *OrderedMap[EntityID, *ResolvedEntity]
	params   FilterParams
	logger   *log.Logger

	usedEntities   *orderedSet[EntityID]
	usedReagents   *orderedSet[ReagentID]
	specialRecipes *OrderedMap[string, *Recipe]
	reactions      *OrderedMap[ReactionID, *ReactionPrototype]

	// warned suppresses repeats of warnings raised inside fixed-point loops.
	warned Set[string]
}

func newRelevanceFilter(
	raw *RawGameData,
	entities *OrderedMap[EntityID, *ResolvedEntity],
	params FilterParams,
	logger *log.Logger,
) *relevanceFilter {
	return &relevanceFilter{
		raw:            raw,
		entities:       entities,
		params:         params,
		logger:         logger,
		usedEntities:   newOrderedSet[EntityID](),
		usedReagents:   newOrderedSet[ReagentID](),
		specialRecipes: NewOrderedMap[string, *Recipe](),
		reactions:      NewOrderedMap[ReactionID, *ReactionPrototype](),
		warned:         newSet[string](),
	}
}

func (f *relevanceFilter) run() (*PrunedGameData, error) {
	// The microwave and metamorph recipes are the root set.
	recipes := f.collectMicrowaveRecipes()
	if err := f.addMetamorphRecipes(); err != nil {
		return nil, err
	}

	passes := 1
	for f.specialRecipePass() {
		passes++
	}
	if Verbose {
		f.logger.Printf("special recipes: %d after %d passes", f.specialRecipes.Len(), passes)
	}

	passes = 1
	for f.reactionPass() {
		passes++
	}
	if Verbose {
		f.logger.Printf("reactions: %d after %d passes", f.reactions.Len(), passes)
	}

	reagentSources := f.collectReagentSources()
	starts, elements, ends := f.collectFoodSequences()

	entities := NewOrderedMap[EntityID, *ResolvedEntity]()
	for _, id := range f.usedEntities.Items() {
		ent, ok := f.entities.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedEntity, id)
		}
		entities.Set(id, ent)
	}
	reagents := NewOrderedMap[ReagentID, *ReagentPrototype]()
	for _, id := range f.usedReagents.Items() {
		reagent, ok := f.raw.Reagents.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedReagent, id)
		}
		reagents.Set(id, reagent)
	}

	return &PrunedGameData{
		Entities:                entities,
		Reagents:                reagents,
		Recipes:                 recipes,
		Reactions:               slices.Collect(f.reactions.Values()),
		SpecialRecipes:          f.specialRecipes,
		ReagentSources:          reagentSources,
		FoodSequenceStartPoints: starts,
		FoodSequenceElements:    elements,
		FoodSequenceEndPoints:   ends,
	}, nil
}

func (f *relevanceFilter) warnOnce(key, format string, args ...any) {
	if f.warned.Has(key) {
		return
	}
	f.warned[key] = struct{}{}
	f.logger.Printf("warning: "+format, args...)
}

// ── Root set ────────────────────────────────────────────────────────

func (f *relevanceFilter) collectMicrowaveRecipes() []*MicrowaveRecipe {
	var relevant []*MicrowaveRecipe
	for _, recipe := range f.raw.Recipes {
		if f.params.IgnoredRecipes.Has(recipe.ID) {
			continue
		}
		relevant = append(relevant, recipe)

		f.usedEntities.Add(recipe.Result)
		for _, id := range sortedKeys(recipe.Solids) {
			// Solids may name a stack rather than an entity.
			if stack, ok := f.raw.Stacks.Get(StackID(id)); ok {
				f.usedEntities.Add(stack.Spawn)
			} else {
				f.usedEntities.Add(id)
			}
		}
		for _, id := range sortedKeys(recipe.Reagents) {
			f.usedReagents.Add(id)
		}
	}
	return relevant
}

// collectRefs marks every entity and reagent the recipe touches as used.
func (f *relevanceFilter) collectRefs(recipe *Recipe) {
	if recipe.SolidResult != nil {
		f.usedEntities.Add(*recipe.SolidResult)
	}
	if recipe.ReagentResult != nil {
		f.usedReagents.Add(*recipe.ReagentResult)
	}
	for _, id := range sortedKeys(recipe.Solids) {
		f.usedEntities.Add(id)
	}
	for _, id := range sortedKeys(recipe.Reagents) {
		f.usedReagents.Add(id)
	}
}

// ── Reactions ───────────────────────────────────────────────────────

// reactionPass scans every reaction once and reports whether a newly
// included reaction brought in a reagent that was not used before.
func (f *relevanceFilter) reactionPass() bool {
	hasAnythingNew := false
	for _, reaction := range f.raw.Reactions {
		if f.tryAddReaction(reaction) {
			hasAnythingNew = true
		}
	}
	return hasAnythingNew
}

func (f *relevanceFilter) tryAddReaction(reaction *ReactionPrototype) bool {
	if f.reactions.Has(reaction.ID) {
		return false
	}
	// Centrifuges, electrolysers and the like are not cooking.
	if !hasSupportedMixerCategory(reaction) {
		return false
	}

	reagent, _, hasReagent := reagentResult(reaction)
	solid, hasSolid := solidResult(reaction)
	if hasReagent == hasSolid {
		return false
	}

	var needed bool
	if hasReagent {
		proto, _ := f.raw.Reagents.Get(reagent)
		needed = f.usedReagents.Has(reagent) && isFoodRelatedReagent(proto)
	} else {
		needed = f.usedEntities.Has(solid)
	}
	if !needed {
		return false
	}

	f.reactions.Set(reaction.ID, reaction)

	hasNewReagents := false
	for id := range reaction.Reactants.All() {
		if f.usedReagents.Add(id) {
			hasNewReagents = true
		}
	}
	return hasNewReagents
}

// ── Reagent sources ─────────────────────────────────────────────────

func (f *relevanceFilter) collectReagentSources() *OrderedMap[ReagentID, []EntityID] {
	result := NewOrderedMap[ReagentID, []EntityID]()

	for ent := range f.entities.Values() {
		sourceOf := f.grindableProduceReagents(ent)
		if len(sourceOf) == 0 {
			continue
		}
		f.usedEntities.Add(ent.ID)
		for _, id := range sourceOf {
			if f.params.IgnoreSourcesOf.Has(id) {
				continue
			}
			appendAt(result, id, ent.ID)
		}
	}

	for reagent, sources := range f.params.ForceIncludeReagentSources.All() {
		if !f.usedReagents.Has(reagent) {
			continue
		}
		for _, id := range sources {
			f.usedEntities.Add(id)
			appendAt(result, reagent, id)
		}
	}
	return result
}

// grindableProduceReagents returns the used reagents the entity yields when
// ground or juiced. Only produce counts, not every grindable object.
func (f *relevanceFilter) grindableProduceReagents(ent *ResolvedEntity) []ReagentID {
	if !ent.IsProduce || ent.Extractable == nil || ent.Solution == nil {
		return nil
	}

	var found []Solution
	if name := ent.Extractable.GrindSolutionName; name != "" {
		if grind, ok := ent.Solution[name]; ok && grind.Reagents != nil {
			found = append(found, grind)
		}
	}
	if juice := ent.Extractable.JuiceSolution; juice != nil && juice.Reagents != nil {
		found = append(found, *juice)
	}

	var result []ReagentID
	for _, sol := range found {
		for _, r := range sol.Reagents {
			if f.usedReagents.Has(r.ReagentID) {
				result = append(result, r.ReagentID)
			}
		}
	}
	return result
}

// ── Food sequences ──────────────────────────────────────────────────

func (f *relevanceFilter) collectFoodSequences() (starts, elements, ends *OrderedMap[TagID, []EntityID]) {
	starts = NewOrderedMap[TagID, []EntityID]()
	elements = NewOrderedMap[TagID, []EntityID]()
	ends = NewOrderedMap[TagID, []EntityID]()

	for _, id := range f.usedEntities.Items() {
		ent, ok := f.entities.Get(id)
		if !ok {
			continue
		}
		if ent.FoodSequenceStart != nil && ent.FoodSequenceStart.Key != "" {
			appendAt(starts, ent.FoodSequenceStart.Key, id)
		}
	}

	for ent := range f.entities.Values() {
		if len(ent.FoodSequenceElement) == 0 || f.params.IgnoredFoodSequenceElements.Has(ent.ID) {
			continue
		}
		f.usedEntities.Add(ent.ID)

		for _, key := range sortedKeys(ent.FoodSequenceElement) {
			if !starts.Has(key) {
				continue
			}
			if ent.FoodSequenceElement[key].Final {
				appendAt(ends, key, ent.ID)
			} else {
				appendAt(elements, key, ent.ID)
			}
		}
	}
	return starts, elements, ends
}
