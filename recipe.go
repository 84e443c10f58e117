package main

import (
	"encoding/json"
	"fmt"
)

type CookingMethod string

const (
	MethodMicrowave   CookingMethod = "microwave"
	MethodMix         CookingMethod = "mix"
	MethodConstruct   CookingMethod = "construct"
	MethodCut         CookingMethod = "cut"
	MethodRoll        CookingMethod = "roll"
	MethodHeat        CookingMethod = "heat"
	MethodHeatMixture CookingMethod = "heatMixture"
	MethodStir        CookingMethod = "stir"
	MethodShake       CookingMethod = "shake"
	MethodDeepFry     CookingMethod = "deepFry"
)

// ConstructVerb is the main verb shown beside a construct recipe.
type ConstructVerb string

const (
	VerbMix  ConstructVerb = "mix"
	VerbHeat ConstructVerb = "heat"
	VerbCut  ConstructVerb = "cut"
	VerbRoll ConstructVerb = "roll"
)

type StepType string

const (
	StepStart       StepType = "start"
	StepEnd         StepType = "end"
	StepAdd         StepType = "add"
	StepAddReagent  StepType = "addReagent"
	StepMix         StepType = "mix"
	StepHeat        StepType = "heat"
	StepHeatMixture StepType = "heatMixture"
	StepCut         StepType = "cut"
	StepRoll        StepType = "roll"
	StepStir        StepType = "stir"
	StepShake       StepType = "shake"
	StepAlsoMakes   StepType = "alsoMakes"
)

// EntityRef is one or more entities. A single entity serializes as a string.
type EntityRef []EntityID

func oneEntity(id EntityID) EntityRef { return EntityRef{id} }

// entityRefOf returns nil for no entities, so callers can tell "nothing
// matched" apart from a match.
func entityRefOf(ids []EntityID) EntityRef {
	if len(ids) == 0 {
		return nil
	}
	return EntityRef(ids)
}

func (r EntityRef) MarshalJSON() ([]byte, error) {
	if len(r) == 1 {
		return json.Marshal(r[0])
	}
	return json.Marshal([]EntityID(r))
}

func (r *EntityRef) UnmarshalJSON(data []byte) error {
	var one EntityID
	if err := json.Unmarshal(data, &one); err == nil {
		*r = EntityRef{one}
		return nil
	}
	var many []EntityID
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("entity ref: %w", err)
	}
	*r = many
	return nil
}

type ReagentIngredient struct {
	// Amount is zero for construct recipes, where only presence matters.
	Amount   float64 `json:"amount,omitempty"`
	Catalyst bool    `json:"catalyst,omitempty"`
}

// ConstructionStep is one instruction in a construct recipe. Which fields are
// set depends on Type.
type ConstructionStep struct {
	Type     StepType                        `json:"type"`
	Entity   EntityRef                       `json:"entity,omitempty"`
	Reagents map[ReagentID]ReagentIngredient `json:"reagents,omitempty"`
	Reagent  ReagentID                       `json:"reagent,omitempty"`
	MinCount *int                            `json:"minCount,omitempty"`
	MaxCount *int                            `json:"maxCount,omitempty"`
	MinTemp  *float64                        `json:"minTemp,omitempty"`
	MaxTemp  *float64                        `json:"maxTemp,omitempty"`
}

// Subtype is a Frontier microwave recipe subtype: one or more machine kinds.
type Subtype []string

func (s Subtype) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// Recipe is the uniform recipe shape. Method decides which of the
// method-specific fields apply.
type Recipe struct {
	Method        CookingMethod
	SolidResult   *EntityID
	ReagentResult *ReagentID
	ResultQty     *float64
	Solids        map[EntityID]int
	Reagents      map[ReagentID]ReagentIngredient
	Group         string

	// microwave
	Time    float64
	Subtype Subtype

	// mix
	MinTemp float64
	MaxTemp *float64

	// construct
	MainVerb *ConstructVerb
	Steps    []ConstructionStep
}

// result returns the recipe's result ID, solid or reagent.
func (r *Recipe) result() string {
	switch {
	case r.SolidResult != nil:
		return string(*r.SolidResult)
	case r.ReagentResult != nil:
		return string(*r.ReagentResult)
	}
	return ""
}

type recipeBase struct {
	Method        CookingMethod                   `json:"method"`
	SolidResult   *EntityID                       `json:"solidResult"`
	ReagentResult *ReagentID                      `json:"reagentResult"`
	ResultQty     *float64                        `json:"resultQty,omitempty"`
	Solids        map[EntityID]int                `json:"solids"`
	Reagents      map[ReagentID]ReagentIngredient `json:"reagents"`
	Group         string                          `json:"group"`
}

func (r *Recipe) MarshalJSON() ([]byte, error) {
	base := recipeBase{
		Method:        r.Method,
		SolidResult:   r.SolidResult,
		ReagentResult: r.ReagentResult,
		ResultQty:     r.ResultQty,
		Solids:        r.Solids,
		Reagents:      r.Reagents,
		Group:         r.Group,
	}
	if base.Solids == nil {
		base.Solids = map[EntityID]int{}
	}
	if base.Reagents == nil {
		base.Reagents = map[ReagentID]ReagentIngredient{}
	}

	switch r.Method {
	case MethodMicrowave:
		return json.Marshal(struct {
			recipeBase
			Time    float64 `json:"time"`
			Subtype Subtype `json:"subtype,omitempty"`
		}{base, r.Time, r.Subtype})
	case MethodMix:
		return json.Marshal(struct {
			recipeBase
			MinTemp float64  `json:"minTemp"`
			MaxTemp *float64 `json:"maxTemp"`
		}{base, r.MinTemp, r.MaxTemp})
	case MethodConstruct:
		steps := r.Steps
		if steps == nil {
			steps = []ConstructionStep{}
		}
		return json.Marshal(struct {
			recipeBase
			MainVerb *ConstructVerb     `json:"mainVerb"`
			Steps    []ConstructionStep `json:"steps"`
		}{base, r.MainVerb, steps})
	case MethodDeepFry:
		return json.Marshal(base)
	}
	return nil, fmt.Errorf("recipe: unknown method %q", r.Method)
}
