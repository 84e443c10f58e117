package main

import "errors"

var (
	// ErrConflictingResults is recorded when a recipe is given both a solid and a reagent result.
	ErrConflictingResults = errors.New("recipe can't have both solid and reagent result")
	// ErrNoResult is returned by ToRecipe when no result was set.
	ErrNoResult = errors.New("recipe has neither solid nor reagent result")
)

// presentReagent marks a reagent as used by a construct recipe. The amount
// is not a consumed quantity in these recipes, so it is left at zero.
var presentReagent = ReagentIngredient{}

// ConstructRecipeBuilder accumulates construction steps and keeps the
// recipe's ingredient tallies in step with them.
//
// Setting conflicting results does not panic: the first conflict is recorded
// and returned by Err and ToRecipe, so the fluent chain can continue.
type ConstructRecipeBuilder struct {
	group         string
	solidResult   *EntityID
	reagentResult *ReagentID
	resultQty     *float64
	solids        map[EntityID]int
	reagents      map[ReagentID]ReagentIngredient
	steps         []ConstructionStep
	err           error
}

// NewConstructRecipeBuilder returns an empty builder. An empty group uses DefaultRecipeGroup.
func NewConstructRecipeBuilder(group string) *ConstructRecipeBuilder {
	if group == "" {
		group = DefaultRecipeGroup
	}
	return &ConstructRecipeBuilder{
		group:    group,
		solids:   make(map[EntityID]int),
		reagents: make(map[ReagentID]ReagentIngredient),
	}
}

// Err returns the first error recorded by a setter, if any.
func (b *ConstructRecipeBuilder) Err() error { return b.err }

// Steps returns the steps pushed so far.
func (b *ConstructRecipeBuilder) Steps() []ConstructionStep { return b.steps }

// ToRecipe finishes the recipe.
func (b *ConstructRecipeBuilder) ToRecipe() (*Recipe, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.solidResult == nil && b.reagentResult == nil {
		return nil, ErrNoResult
	}
	return &Recipe{
		Method:        MethodConstruct,
		MainVerb:      b.MainVerb(),
		Group:         b.group,
		SolidResult:   b.solidResult,
		ReagentResult: b.reagentResult,
		ResultQty:     b.resultQty,
		Solids:        b.solids,
		Reagents:      b.reagents,
		Steps:         b.steps,
	}, nil
}

// MainVerb returns the single verb implied by the steps, or nil if there is
// none or the steps disagree.
func (b *ConstructRecipeBuilder) MainVerb() *ConstructVerb {
	var result ConstructVerb
	for _, step := range b.steps {
		var verb ConstructVerb
		switch step.Type {
		case StepMix, StepStir, StepShake:
			verb = VerbMix
		case StepHeat, StepHeatMixture:
			verb = VerbHeat
		case StepCut:
			verb = VerbCut
		case StepRoll:
			verb = VerbRoll
		default:
			continue
		}
		if result != "" && result != verb {
			return nil
		}
		result = verb
	}
	if result == "" {
		return nil
	}
	return &result
}

func (b *ConstructRecipeBuilder) WithSolidResult(id EntityID) *ConstructRecipeBuilder {
	if b.reagentResult != nil {
		b.fail(ErrConflictingResults)
		return b
	}
	b.solidResult = &id
	return b
}

func (b *ConstructRecipeBuilder) WithReagentResult(id ReagentID) *ConstructRecipeBuilder {
	if b.solidResult != nil {
		b.fail(ErrConflictingResults)
		return b
	}
	b.reagentResult = &id
	return b
}

func (b *ConstructRecipeBuilder) WithResultQty(qty float64) *ConstructRecipeBuilder {
	b.resultQty = &qty
	return b
}

// PushStep appends step and collects its ingredients.
func (b *ConstructRecipeBuilder) PushStep(step ConstructionStep) *ConstructRecipeBuilder {
	b.steps = append(b.steps, step)
	b.collectIngredients(step)
	return b
}

func (b *ConstructRecipeBuilder) StartWith(entity EntityID) *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepStart, Entity: oneEntity(entity)})
}

func (b *ConstructRecipeBuilder) EndWith(entity EntityRef) *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepEnd, Entity: entity})
}

func (b *ConstructRecipeBuilder) Mix(reagents map[ReagentID]ReagentIngredient) *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepMix, Reagents: reagents})
}

// AddSolid adds one of the given entities. Nil counts are omitted from the step.
func (b *ConstructRecipeBuilder) AddSolid(entity EntityRef, minCount, maxCount *int) *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{
		Type:     StepAdd,
		Entity:   entity,
		MinCount: minCount,
		MaxCount: maxCount,
	})
}

func (b *ConstructRecipeBuilder) AddReagent(reagent ReagentID, minCount, maxCount int) *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{
		Type:     StepAddReagent,
		Reagent:  reagent,
		MinCount: &minCount,
		MaxCount: &maxCount,
	})
}

func (b *ConstructRecipeBuilder) Heat(minTemp float64) *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepHeat, MinTemp: &minTemp})
}

// HeatMixture heats a solution; maxTemp may be nil.
func (b *ConstructRecipeBuilder) HeatMixture(minTemp float64, maxTemp *float64) *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepHeatMixture, MinTemp: &minTemp, MaxTemp: maxTemp})
}

func (b *ConstructRecipeBuilder) Cut() *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepCut})
}

func (b *ConstructRecipeBuilder) Roll() *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepRoll})
}

func (b *ConstructRecipeBuilder) Stir() *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepStir})
}

func (b *ConstructRecipeBuilder) Shake() *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepShake})
}

func (b *ConstructRecipeBuilder) AlsoMakes(entity EntityRef) *ConstructRecipeBuilder {
	return b.PushStep(ConstructionStep{Type: StepAlsoMakes, Entity: entity})
}

func (b *ConstructRecipeBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *ConstructRecipeBuilder) collectIngredients(step ConstructionStep) {
	switch step.Type {
	case StepStart, StepEnd, StepAdd:
		for _, id := range step.Entity {
			b.solids[id] = 1
		}
	case StepMix:
		for id := range step.Reagents {
			b.reagents[id] = presentReagent
		}
	case StepAddReagent:
		b.reagents[step.Reagent] = presentReagent
	case StepAlsoMakes, StepHeat, StepHeatMixture, StepCut, StepRoll, StepStir, StepShake:
		// No ingredients
	}
}
