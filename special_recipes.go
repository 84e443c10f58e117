package main

import "slices"

// specialRecipePass scans every entity once for cut, butcher, construction
// and deep-fry recipes, and reports whether anything was added.
func (f *relevanceFilter) specialRecipePass() bool {
	hasAnythingNew := false
	for ent := range f.entities.Values() {
		if f.tryAddSpecialRecipes(ent) {
			hasAnythingNew = true
		}
	}
	return hasAnythingNew
}

// tryAddSpecialRecipes adds every special recipe the entity qualifies for.
// Slicing and constructing are not exclusive: dough can be cut into slices
// and rolled flat.
func (f *relevanceFilter) tryAddSpecialRecipes(ent *ResolvedEntity) bool {
	added := false
	if f.tryAddSliceRecipe(ent) {
		added = true
	}
	if f.tryAddButcherRecipes(ent) {
		added = true
	}
	if f.tryAddConstructionRecipes(ent) {
		added = true
	}
	if f.tryAddDeepFryRecipe(ent) {
		added = true
	}
	return added
}

// tryAddSliceRecipe only adds a recipe when the slice is already used, or
// every cake and pie would get a pointless cut recipe.
func (f *relevanceFilter) tryAddSliceRecipe(ent *ResolvedEntity) bool {
	slice := ent.SliceableFood
	if slice == nil || slice.Slice == "" || !f.usedEntities.Has(slice.Slice) {
		return false
	}
	id := "cut!" + string(ent.ID)
	if f.specialRecipes.Has(id) {
		return false
	}

	recipe, err := NewConstructRecipeBuilder("").
		WithSolidResult(slice.Slice).
		WithResultQty(float64(slice.Count)).
		StartWith(ent.ID).
		Cut().
		ToRecipe()
	if err != nil {
		f.warnOnce(id, "%s: %v", id, err)
		return false
	}
	f.collectRefs(recipe)
	f.specialRecipes.Set(id, recipe)
	return true
}

type guaranteedSpawn struct {
	id     EntityID
	amount int
}

// tryAddButcherRecipes handles things like burger buns, which are made by
// cutting a bread loaf. The butchered entity must already be used, and at
// least one spawn must be an edible non-material that is either used or
// starts a food sequence.
func (f *relevanceFilter) tryAddButcherRecipes(ent *ResolvedEntity) bool {
	b := ent.Butcherable
	if b == nil || b.Tool != DefaultButcheringType || b.Spawned == nil || !f.usedEntities.Has(ent.ID) {
		return false
	}

	spawns := f.guaranteedSpawns(ent.ID, b.Spawned)
	canUseOne := slices.ContainsFunc(spawns, func(s guaranteedSpawn) bool {
		spawned, _ := f.entities.Get(s.id)
		return isEdible(spawned) &&
			!spawned.Components.Has("Material") &&
			(f.usedEntities.Has(spawned.ID) || spawned.FoodSequenceStart != nil)
	})
	if !canUseOne {
		return false
	}

	added := false
	for _, spawn := range spawns {
		id := "butcher!" + string(ent.ID) + ":" + string(spawn.id)
		if f.specialRecipes.Has(id) {
			continue
		}

		builder := NewConstructRecipeBuilder("").
			WithSolidResult(spawn.id).
			WithResultQty(float64(spawn.amount)).
			StartWith(ent.ID).
			Cut()
		var others []EntityID
		for _, other := range spawns {
			if other.id != spawn.id {
				others = append(others, other.id)
			}
		}
		if ref := entityRefOf(others); ref != nil {
			builder.AlsoMakes(ref)
		}
		recipe, err := builder.ToRecipe()
		if err != nil {
			f.warnOnce(id, "%s: %v", id, err)
			continue
		}
		f.collectRefs(recipe)
		f.specialRecipes.Set(id, recipe)
		added = true
	}
	return added
}

// guaranteedSpawns filters a spawn table the way the game data has always
// been read here: an entry is kept if it has an ID, or no or-group, or a
// positive amount, or a probability other than one. Entries without a known
// entity are dropped.
func (f *relevanceFilter) guaranteedSpawns(butchered EntityID, spawned []EntitySpawnEntry) []guaranteedSpawn {
	var result []guaranteedSpawn
	for _, entry := range spawned {
		amount := 1
		if entry.Amount != nil {
			amount = *entry.Amount
		}
		prob := 1.0
		if entry.Prob != nil {
			prob = *entry.Prob
		}
		keep := entry.ID != "" || entry.OrGroup == "" || amount > 0 || prob != 1
		if !keep {
			continue
		}
		if entry.ID == "" {
			f.warnOnce("spawn-id:"+string(butchered),
				"entity '%s': butcher spawn entry has no entity ID", butchered)
			continue
		}
		if !f.entities.Has(entry.ID) {
			f.warnOnce("spawn:"+string(butchered)+":"+string(entry.ID),
				"entity '%s': butchering spawns unknown entity '%s'", butchered, entry.ID)
			continue
		}
		result = append(result, guaranteedSpawn{id: entry.ID, amount: amount})
	}
	return result
}

// isEdible checks both the legacy Food component and its replacement.
func isEdible(ent *ResolvedEntity) bool {
	return ent != nil && (ent.Components.Has("Food") || ent.Components.Has("Edible"))
}

func (f *relevanceFilter) tryAddConstructionRecipes(ent *ResolvedEntity) bool {
	added := false
	for _, recipe := range f.traverseConstructionGraph(ent.ID, ent.Construction) {
		var id string
		if recipe.MainVerb != nil {
			id = string(*recipe.MainVerb) + "!" + string(ent.ID)
		} else {
			id = "construct!" + string(ent.ID) + ":" + recipe.result()
		}
		if f.specialRecipes.Has(id) || f.params.IgnoredSpecialRecipes.Has(id) {
			continue
		}
		// Heating may produce things that are not ingredients, like steak.
		// Everything else must make an ingredient.
		isHeat := recipe.MainVerb != nil && *recipe.MainVerb == VerbHeat
		if !isHeat && !f.usedEntities.Has(*recipe.SolidResult) {
			continue
		}
		f.collectRefs(recipe)
		f.specialRecipes.Set(id, recipe)
		added = true
	}
	return added
}

// traverseConstructionGraph finds recipes along single-step, unconditional
// edges out of the entity's node that lead to a different entity. This is a
// small subset of what the game's construction system can do.
func (f *relevanceFilter) traverseConstructionGraph(entityID EntityID, con *ResolvedConstruction) []*Recipe {
	// Entities in the middle of construction can't be handled.
	if !con.atRest() {
		return nil
	}

	graph, ok := f.raw.ConstructionGraphs.Get(*con.Graph)
	if !ok {
		f.warnOnce("graph:"+string(entityID),
			"entity '%s': unknown construction graph: %s", entityID, *con.Graph)
		return nil
	}

	start := graph.node(*con.Node)
	if start == nil {
		return nil
	}

	var recipes []*Recipe
	for _, edge := range start.Edges {
		if edge.Conditions > 0 {
			continue
		}
		target := graph.node(edge.To)
		if target == nil || len(edge.Steps) != 1 || target.Entity == "" || target.Entity == entityID {
			continue
		}

		step := edge.Steps[0]
		newBuilder := func() *ConstructRecipeBuilder {
			return NewConstructRecipeBuilder("").
				WithSolidResult(target.Entity).
				StartWith(entityID)
		}

		if step.Tool == "Rolling" {
			recipes = f.appendBuilt(recipes, entityID, newBuilder().Roll())
		}
		if step.MinTemperature != nil && step.MaxTemperature == nil {
			recipes = f.appendBuilt(recipes, entityID, newBuilder().Heat(*step.MinTemperature))
		}
		if step.Tag != "" {
			if usable := f.findTargetEntityByTag(step.Tag); usable != nil {
				recipes = f.appendBuilt(recipes, entityID, newBuilder().AddSolid(usable, nil, nil))
			}
		}
	}
	return recipes
}

func (f *relevanceFilter) appendBuilt(recipes []*Recipe, entityID EntityID, b *ConstructRecipeBuilder) []*Recipe {
	recipe, err := b.ToRecipe()
	if err != nil {
		f.warnOnce("build:"+string(entityID), "entity '%s': %v", entityID, err)
		return recipes
	}
	return append(recipes, recipe)
}

// findTargetEntityByTag returns every entity with the tag, or nil if none has it.
func (f *relevanceFilter) findTargetEntityByTag(tag TagID) EntityRef {
	var matching []EntityID
	for ent := range f.entities.Values() {
		if ent.Tags.Has(tag) {
			matching = append(matching, ent.ID)
		}
	}
	return entityRefOf(matching)
}

// tryAddDeepFryRecipe is unconditional: anything that can be deep fried is
// shown. Frontier.
func (f *relevanceFilter) tryAddDeepFryRecipe(ent *ResolvedEntity) bool {
	if ent.DeepFryOutput == "" {
		return false
	}
	id := "deepFry!" + string(ent.ID)
	if f.specialRecipes.Has(id) {
		return false
	}

	output := ent.DeepFryOutput
	f.usedEntities.Add(ent.ID)
	f.usedEntities.Add(output)
	f.specialRecipes.Set(id, &Recipe{
		Method:      MethodDeepFry,
		SolidResult: &output,
		Solids:      map[EntityID]int{ent.ID: 1},
		Reagents:    map[ReagentID]ReagentIngredient{},
		Group:       DefaultRecipeGroup,
	})
	return true
}
