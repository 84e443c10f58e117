package main

import (
	"fmt"
	"math"
)

// ResolvedReagent is a reagent as shown in the cookbook.
type ResolvedReagent struct {
	Name  string
	Color string
}

// ResolvedGameData is the pruned data with every recipe in the uniform shape.
type ResolvedGameData struct {
	Entities       *OrderedMap[EntityID, *ResolvedEntity]
	Reagents       *OrderedMap[ReagentID, ResolvedReagent]
	Recipes        *OrderedMap[string, *Recipe]
	ReagentSources *OrderedMap[ReagentID, []EntityID]
	MethodEntities *OrderedMap[CookingMethod, *ResolvedEntity]
	// MicrowaveRecipeTypeEntities is nil unless the fork has recipe types. Frontier.
	MicrowaveRecipeTypeEntities *OrderedMap[string, *ResolvedEntity]
}

// ResolvePrototypes converts pruned recipes and reactions into recipes and
// resolves display names and method entities. methods may be nil; subtypes
// is nil on forks without microwave recipe types.
func ResolvePrototypes(
	pruned *PrunedGameData,
	allEntities *OrderedMap[EntityID, *ResolvedEntity],
	locale Localizer,
	methods *MethodEntities,
	subtypes *MicrowaveRecipeTypes,
) (*ResolvedGameData, error) {
	recipes := NewOrderedMap[string, *Recipe]()

	defaultSubtype := ""
	for name, t := range subtypes.All() {
		if t.Default {
			defaultSubtype = name
			break
		}
	}

	for _, mr := range pruned.Recipes {
		recipes.Set(string(mr.ID), microwaveRecipe(mr, defaultSubtype))
	}

	for id, recipe := range pruned.SpecialRecipes.All() {
		recipes.Set(id, recipe)
	}

	for _, reaction := range pruned.Reactions {
		rs, err := reactionRecipes(reaction)
		if err != nil {
			return nil, err
		}
		for id, recipe := range rs.All() {
			recipes.Set(id, recipe)
		}
	}

	reagents := NewOrderedMap[ReagentID, ResolvedReagent]()
	for reagent := range pruned.Reagents.Values() {
		color := reagent.Color
		if color == "" {
			color = DefaultReagentColor
		}
		reagents.Set(reagent.ID, ResolvedReagent{
			Name:  localizedName(locale, reagent.Name, string(reagent.ID)),
			Color: color,
		})
	}

	methodEntities := NewOrderedMap[CookingMethod, *ResolvedEntity]()
	for method, id := range methods.All() {
		if id == nil {
			// Unsupported on this fork.
			continue
		}
		ent, ok := allEntities.Get(*id)
		if !ok {
			return nil, fmt.Errorf("method %s: %w: %s", method, ErrUnresolvedEntity, *id)
		}
		methodEntities.Set(method, ent)
	}

	var subtypeEntities *OrderedMap[string, *ResolvedEntity]
	if subtypes != nil {
		subtypeEntities = NewOrderedMap[string, *ResolvedEntity]()
		for name, t := range subtypes.All() {
			ent, ok := allEntities.Get(t.Machine)
			if !ok {
				return nil, fmt.Errorf("microwave recipe type %s: %w: %s", name, ErrUnresolvedEntity, t.Machine)
			}
			subtypeEntities.Set(name, ent)
		}
	}

	return &ResolvedGameData{
		Entities:                    pruned.Entities,
		Reagents:                    reagents,
		Recipes:                     recipes,
		ReagentSources:              pruned.ReagentSources,
		MethodEntities:              methodEntities,
		MicrowaveRecipeTypeEntities: subtypeEntities,
	}, nil
}

func microwaveRecipe(mr *MicrowaveRecipe, defaultSubtype string) *Recipe {
	result := mr.Result
	recipe := &Recipe{
		Method:      MethodMicrowave,
		Time:        DefaultCookTime,
		SolidResult: &result,
		Solids:      make(map[EntityID]int, len(mr.Solids)),
		Reagents:    make(map[ReagentID]ReagentIngredient, len(mr.Reagents)),
		Subtype:     recipeSubtype(mr.RecipeType, defaultSubtype),
		Group:       DefaultRecipeGroup,
	}
	if mr.Time != nil {
		recipe.Time = *mr.Time
	}
	if mr.Group != nil {
		recipe.Group = *mr.Group
	}
	if mr.ResultCount != nil {
		qty := float64(*mr.ResultCount)
		recipe.ResultQty = &qty
	}
	for id, n := range mr.Solids {
		recipe.Solids[id] = n
	}
	for id, amount := range mr.Reagents {
		recipe.Reagents[id] = ReagentIngredient{Amount: amount}
	}
	return recipe
}

// recipeSubtype falls back to the default subtype when the recipe has none.
// Subtype marshals a list of one as a scalar.
func recipeSubtype(recipeType []string, defaultSubtype string) Subtype {
	if len(recipeType) > 0 {
		return Subtype(recipeType)
	}
	if defaultSubtype == "" {
		return nil
	}
	return Subtype{defaultSubtype}
}

// reactionRecipes converts a reaction into one recipe per supported mixer
// category, or a single mix recipe when the reaction needs no mixer.
func reactionRecipes(reaction *ReactionPrototype) (*OrderedMap[string, *Recipe], error) {
	result := NewOrderedMap[string, *Recipe]()
	reagent, amount, hasReagent := reagentResult(reaction)
	solid, hasSolid := solidResult(reaction)
	id := "r!" + string(reaction.ID)

	if len(reaction.RequiredMixerCategories) == 0 {
		recipe := &Recipe{
			Method:   MethodMix,
			Solids:   map[EntityID]int{},
			Reagents: reactantIngredients(reaction),
			Group:    DefaultRecipeGroup,
		}
		qty := 1.0
		switch {
		case hasReagent:
			recipe.ReagentResult = &reagent
			qty = amount
		case hasSolid:
			recipe.SolidResult = &solid
		}
		recipe.ResultQty = &qty
		if reaction.MinTemp != nil {
			recipe.MinTemp = *reaction.MinTemp
		}
		if nonZeroFinite(reaction.MaxTemp) {
			maxTemp := *reaction.MaxTemp
			recipe.MaxTemp = &maxTemp
		}
		result.Set(id, recipe)
		return result, nil
	}

	for _, category := range reaction.RequiredMixerCategories {
		step, ok := mixerCategoryStep(category)
		if !ok {
			continue
		}

		b := NewConstructRecipeBuilder("")
		if hasReagent {
			b.WithReagentResult(reagent).WithResultQty(amount)
		} else {
			b.WithSolidResult(solid)
		}
		b.Mix(reactantIngredients(reaction))
		if reaction.MinTemp != nil && *reaction.MinTemp != 0 {
			var maxTemp *float64
			if reaction.MaxTemp != nil && !math.IsInf(*reaction.MaxTemp, 0) {
				maxTemp = reaction.MaxTemp
			}
			b.HeatMixture(*reaction.MinTemp, maxTemp)
		}
		b.PushStep(ConstructionStep{Type: step})

		recipe, err := b.ToRecipe()
		if err != nil {
			return nil, fmt.Errorf("reaction %s: %w", reaction.ID, err)
		}
		result.Set(id+":"+string(step), recipe)
	}
	return result, nil
}

func reactantIngredients(reaction *ReactionPrototype) map[ReagentID]ReagentIngredient {
	out := make(map[ReagentID]ReagentIngredient, reaction.Reactants.Len())
	for id, r := range reaction.Reactants.All() {
		out[id] = ReagentIngredient{Amount: r.Amount, Catalyst: r.Catalyst}
	}
	return out
}
