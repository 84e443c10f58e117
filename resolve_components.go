package main

import (
	"log"
	"maps"
	"slices"
)

// ResolveComponents resolves every non-abstract entity into a flat record,
// in load order.
func ResolveComponents(raw *RawGameData, logger *log.Logger) *OrderedMap[EntityID, *ResolvedEntity] {
	result := NewOrderedMap[EntityID, *ResolvedEntity]()
	for entity := range raw.Entities.Values() {
		if entity.Abstract {
			continue
		}
		resolved := resolveEntity(entity, raw, logger)
		result.Set(resolved.ID, resolved)
	}
	return result
}

// entityDraft is the mutable state of one entity while its ancestors are
// applied. It is frozen into a ResolvedEntity once the walk is done and is
// never shared between entities.
type entityDraft struct {
	e ResolvedEntity
}

func newEntityDraft(id EntityID) *entityDraft {
	return &entityDraft{e: ResolvedEntity{
		ID:         id,
		Name:       "(unknown name)",
		Reagents:   newSet[ReagentID](),
		Tags:       newSet[TagID](),
		Components: newSet[string](),
	}}
}

func (d *entityDraft) freeze() *ResolvedEntity {
	e := d.e
	// Post-processing: the entity's food reagents.
	if food, ok := e.Solution[FoodSolutionName]; ok && food.Reagents != nil {
		e.Reagents = make(Set[ReagentID], len(food.Reagents))
		for _, r := range food.Reagents {
			e.Reagents[r.ReagentID] = struct{}{}
		}
	}
	return &e
}

func resolveEntity(entity *EntityPrototype, raw *RawGameData, logger *log.Logger) *ResolvedEntity {
	d := newEntityDraft(entity.ID)

	for _, ent := range entityAndAncestors(entity, raw.Entities, logger) {
		if ent.Name != nil {
			d.e.Name = *ent.Name
		}

		for _, comp := range ent.Components {
			d.e.Components[comp.ComponentName()] = struct{}{}
			switch c := comp.(type) {
			case ButcherableComponent:
				d.applyButcherable(c)
			case ConstructionComponent:
				d.applyConstruction(c)
			case DeepFrySpawnComponent:
				d.e.DeepFryOutput = c.Output
			case ExtractableComponent:
				d.applyExtractable(c)
			case FoodSequenceElementComponent:
				d.applyFoodSequenceElement(c, raw.FoodSequenceElements)
			case FoodSequenceStartPointComponent:
				d.applyFoodSequenceStartPoint(c)
			case ProduceComponent:
				d.e.IsProduce = true
			case SliceableFoodComponent:
				d.applySliceableFood(c)
			case SolutionContainerManagerComponent:
				d.e.Solution = cloneSolutions(c.Solutions)
			case SpriteComponent:
				d.applySprite(c)
			case StomachComponent:
				d.applyStomach(c, ent.ID, logger)
			case TagComponent:
				if c.Tags != nil {
					d.e.Tags = newSet(c.Tags...)
				}
			case GenericComponent:
				// Name only.
			}
		}
	}

	return d.freeze()
}

func (d *entityDraft) applyButcherable(c ButcherableComponent) {
	if d.e.Butcherable == nil {
		d.e.Butcherable = &ResolvedButcherable{Tool: DefaultButcheringType}
	}
	if c.ButcheringType != "" {
		d.e.Butcherable.Tool = c.ButcheringType
	}
	if c.Spawned != nil {
		d.e.Butcherable.Spawned = slices.Clone(c.Spawned)
	}
}

func (d *entityDraft) applyConstruction(c ConstructionComponent) {
	if d.e.Construction == nil {
		d.e.Construction = &ResolvedConstruction{}
	}
	con := d.e.Construction
	if c.Graph != nil {
		con.Graph = c.Graph
	}
	if c.Node != nil {
		con.Node = c.Node
	}
	if c.Edge != nil {
		con.Edge = c.Edge
	}
	if c.Step != nil {
		con.Step = c.Step
	}
}

func (d *entityDraft) applyExtractable(c ExtractableComponent) {
	if d.e.Extractable == nil {
		d.e.Extractable = &ResolvedExtractable{}
	}
	if c.GrindableSolutionName != nil {
		d.e.Extractable.GrindSolutionName = *c.GrindableSolutionName
	}
	if c.JuiceSolution != nil {
		juice := cloneSolution(*c.JuiceSolution)
		d.e.Extractable.JuiceSolution = &juice
	}
}

func (d *entityDraft) applyFoodSequenceElement(c FoodSequenceElementComponent, elements *OrderedMap[FoodSequenceElementID, *FoodSequenceElement]) {
	if c.Entries == nil {
		return
	}
	entries := make(map[TagID]ResolvedFoodSequenceElement, c.Entries.Len())
	for key, elemID := range c.Entries.All() {
		final := false
		if elem, ok := elements.Get(elemID); ok {
			final = elem.Final
		}
		entries[key] = ResolvedFoodSequenceElement{Element: elemID, Final: final}
	}
	d.e.FoodSequenceElement = entries
}

func (d *entityDraft) applyFoodSequenceStartPoint(c FoodSequenceStartPointComponent) {
	if d.e.FoodSequenceStart == nil {
		d.e.FoodSequenceStart = &ResolvedFoodSequenceStart{MaxLayers: DefaultFoodSequenceMaxLayers}
	}
	if c.Key != nil {
		d.e.FoodSequenceStart.Key = *c.Key
	}
	if c.MaxLayers != nil {
		d.e.FoodSequenceStart.MaxLayers = *c.MaxLayers
	}
}

func (d *entityDraft) applySliceableFood(c SliceableFoodComponent) {
	if d.e.SliceableFood == nil {
		d.e.SliceableFood = &ResolvedSlice{Count: DefaultTotalSliceCount}
	}
	if c.Slice != nil {
		d.e.SliceableFood.Slice = *c.Slice
	}
	if c.Count != nil {
		d.e.SliceableFood.Count = *c.Count
	}
}

func (d *entityDraft) applySprite(c SpriteComponent) {
	sprite := &d.e.Sprite
	if c.Sprite != nil {
		sprite.Path = c.Sprite
	}
	if c.State != nil {
		sprite.State = c.State
	}
	if c.Color != nil {
		sprite.Color = c.Color
	}
	if c.Layers == nil {
		return
	}

	// Layers merge by index: a redeclared layer only patches the fields it
	// sets. Layers past the end of the new list are dropped.
	layers := make([]ResolvedSpriteLayer, len(c.Layers))
	for i, layer := range c.Layers {
		prev := ResolvedSpriteLayer{Visible: true}
		if i < len(sprite.Layers) {
			prev = sprite.Layers[i]
		}
		if layer.Sprite != nil {
			prev.Path = layer.Sprite
		}
		if layer.State != nil {
			prev.State = layer.State
		}
		if layer.Visible != nil {
			prev.Visible = *layer.Visible
		}
		if layer.Color != nil {
			prev.Color = layer.Color
		}
		layers[i] = prev
	}
	sprite.Layers = layers
}

func (d *entityDraft) applyStomach(c StomachComponent, declaredBy EntityID, logger *log.Logger) {
	if d.e.Stomach == nil {
		d.e.Stomach = &ResolvedStomach{Tags: []TagID{}, Components: []string{}}
	}
	wl := c.SpecialDigestible
	if wl == nil {
		return
	}
	if wl.Sizes != nil {
		logger.Printf("warning: entity '%s': Stomach has unsupported whitelist property: size", declaredBy)
	}
	if wl.Tags != nil {
		d.e.Stomach.Tags = slices.Clone(wl.Tags)
	}
	if wl.Components != nil {
		d.e.Stomach.Components = slices.Clone(wl.Components)
	}
}

func cloneSolution(s Solution) Solution {
	return Solution{Reagents: slices.Clone(s.Reagents)}
}

func cloneSolutions(m map[string]Solution) map[string]Solution {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, s := range out {
		out[k] = cloneSolution(s)
	}
	return out
}
