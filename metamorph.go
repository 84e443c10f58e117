package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownRuleKind is returned for a metamorph rule whose `!type` we have never seen.
var ErrUnknownRuleKind = errors.New("unknown metamorph recipe rule")

// addMetamorphRecipes turns metamorph recipes into construct recipes built
// on their food sequence's start point. Recipes that can't be shown are
// skipped with a warning; only an unknown rule kind is fatal.
func (f *relevanceFilter) addMetamorphRecipes() error {
	for recipe := range f.raw.MetamorphRecipes.Values() {
		built, err := f.buildMetamorphRecipe(recipe)
		if err != nil {
			return err
		}
		if built == nil {
			continue
		}
		f.collectRefs(built)
		f.specialRecipes.Set("m!"+string(recipe.ID), built)
	}
	return nil
}

func (f *relevanceFilter) buildMetamorphRecipe(recipe *MetamorphRecipe) (*Recipe, error) {
	if len(recipe.Rules) == 0 {
		f.logger.Printf("warning: metamorph recipe %s has no rules", recipe.ID)
		return nil, nil
	}

	// Each food sequence key has exactly one start point at present.
	var startPoints []EntityID
	for ent := range f.entities.Values() {
		if ent.FoodSequenceStart != nil && ent.FoodSequenceStart.Key == recipe.Key {
			startPoints = append(startPoints, ent.ID)
		}
	}
	switch len(startPoints) {
	case 1:
	case 0:
		f.logger.Printf("warning: metamorph recipe %s: no start point for food sequence '%s'", recipe.ID, recipe.Key)
		return nil, nil
	default:
		f.logger.Printf("warning: metamorph recipe %s: multiple start points for food sequence '%s'", recipe.ID, recipe.Key)
		return nil, nil
	}

	builder := NewConstructRecipeBuilder("").
		WithSolidResult(recipe.Result).
		StartWith(startPoints[0])

	// The data orders LastElementHasTags last, so the steps read naturally
	// without reordering.
	for _, rule := range recipe.Rules {
		switch rule.Kind {
		case RuleIngredientsWithTags, RuleLastElementHasTags:
			ingredients := f.findMetamorphIngredients(recipe.Key, rule.Tags, rule.NeedAll)
			if ingredients == nil {
				f.logger.Printf("warning: metamorph recipe %s: no matching ingredients: %s",
					recipe.ID, joinTags(rule.Tags))
				return nil, nil
			}
			if rule.Kind == RuleIngredientsWithTags {
				builder.AddSolid(ingredients, rule.Count.Min, rule.Count.Max)
			} else {
				builder.EndWith(ingredients)
			}
		case RuleFoodHasReagent:
			builder.AddReagent(rule.Reagent, rule.Count.minOrZero(), rule.Count.maxOrZero())
		case RuleSequenceLength, RuleElementHasTags:
			f.logger.Printf("warning: metamorph recipe %s: unsupported rule: %s", recipe.ID, rule.Kind)
			return nil, nil
		default:
			return nil, fmt.Errorf("%s: %w: %s", recipe.ID, ErrUnknownRuleKind, rule.Type)
		}
	}

	built, err := builder.ToRecipe()
	if err != nil {
		return nil, fmt.Errorf("metamorph recipe %s: %w", recipe.ID, err)
	}
	return built, nil
}

// findMetamorphIngredients returns the entities that can go into the food
// sequence as an element whose tags match. With needAll every tag must be
// present, otherwise any one will do.
func (f *relevanceFilter) findMetamorphIngredients(key TagID, tags []TagID, needAll bool) EntityRef {
	matches := func(fse *FoodSequenceElement) bool {
		if len(fse.Tags) == 0 {
			return false
		}
		if needAll {
			for _, tag := range tags {
				if !slices.Contains(fse.Tags, tag) {
					return false
				}
			}
			return true
		}
		return slices.ContainsFunc(tags, func(tag TagID) bool {
			return slices.Contains(fse.Tags, tag)
		})
	}

	elements := newSet[FoodSequenceElementID]()
	for fse := range f.raw.FoodSequenceElements.Values() {
		if matches(fse) {
			elements[fse.ID] = struct{}{}
		}
	}
	if len(elements) == 0 {
		return nil
	}

	var ids []EntityID
	for ent := range f.entities.Values() {
		elem, ok := ent.FoodSequenceElement[key]
		if ok && elements.Has(elem.Element) {
			ids = append(ids, ent.ID)
		}
	}
	return entityRefOf(ids)
}

func joinTags(tags []TagID) string {
	s := make([]string, len(tags))
	for i, t := range tags {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}
