package main

import "math"

type (
	EntityID              string
	ReagentID             string
	TagID                 string
	StackID               string
	ConstructionGraphID   string
	FoodSequenceElementID string
	MetamorphRecipeID     string
	MicrowaveRecipeID     string
	ReactionID            string
)

// ── Prototype kinds ─────────────────────────────────────────────────

type PrototypeKind int

const (
	KindNone PrototypeKind = iota
	KindEntity
	KindReagent
	KindStack
	KindConstructionGraph
	KindMetamorphRecipe
	KindFoodSequenceElement
	KindMicrowaveRecipe
	KindReaction
)

func parsePrototypeKind(s string) PrototypeKind {
	switch s {
	case "entity":
		return KindEntity
	case "reagent":
		return KindReagent
	case "stack":
		return KindStack
	case "constructionGraph":
		return KindConstructionGraph
	case "metamorphRecipe":
		return KindMetamorphRecipe
	case "foodSequenceElement":
		return KindFoodSequenceElement
	case "microwaveMealRecipe":
		return KindMicrowaveRecipe
	case "reaction":
		return KindReaction
	}
	return KindNone
}

// RuleKind discriminates food metamorph rules (`!type:` tags in the game data).
type RuleKind int

const (
	RuleUnknown RuleKind = iota
	RuleSequenceLength
	RuleLastElementHasTags
	RuleElementHasTags
	RuleFoodHasReagent
	RuleIngredientsWithTags
)

func parseRuleKind(s string) RuleKind {
	switch s {
	case "SequenceLength":
		return RuleSequenceLength
	case "LastElementHasTags":
		return RuleLastElementHasTags
	case "ElementHasTags":
		return RuleElementHasTags
	case "FoodHasReagent":
		return RuleFoodHasReagent
	case "IngredientsWithTags":
		return RuleIngredientsWithTags
	}
	return RuleUnknown
}

func (k RuleKind) String() string {
	switch k {
	case RuleSequenceLength:
		return "SequenceLength"
	case RuleLastElementHasTags:
		return "LastElementHasTags"
	case RuleElementHasTags:
		return "ElementHasTags"
	case RuleFoodHasReagent:
		return "FoodHasReagent"
	case RuleIngredientsWithTags:
		return "IngredientsWithTags"
	}
	return "Unknown"
}

// EffectKind discriminates reaction effects. Only entity-spawning effects
// matter to us; everything else is EffectOther.
type EffectKind int

const (
	EffectOther EffectKind = iota
	EffectCreateEntity
	EffectSpawnEntity
)

func parseEffectKind(s string) EffectKind {
	switch s {
	case "CreateEntityReactionEffect":
		return EffectCreateEntity
	case "SpawnEntity":
		return EffectSpawnEntity
	}
	return EffectOther
}

// ── Raw prototypes ──────────────────────────────────────────────────

type EntityPrototype struct {
	ID       EntityID
	Parents  []EntityID // leftmost has the highest priority
	Name     *string
	Abstract bool
	// Components are kept in declaration order.
	Components []Component
}

type ReagentPrototype struct {
	ID    ReagentID
	Name  string // locale key
	Color string // empty if unset
	Group string
}

type MicrowaveRecipe struct {
	ID     MicrowaveRecipeID
	Name   string
	Result EntityID
	Time   *float64
	// Either may be empty; solids keys may be stack IDs.
	Solids   map[EntityID]int
	Reagents map[ReagentID]float64
	Group    *string
	// RecipeType is nil when unset. A scalar in the data becomes a list of one. Frontier.
	RecipeType []string
	// ResultCount is Frontier only.
	ResultCount *int
}

type Reactant struct {
	Amount   float64
	Catalyst bool
}

type ReactionEffect struct {
	Kind EffectKind
	// Type is the raw `!type` value, empty when the effect had none.
	Type   string
	Entity EntityID
	Number *int
}

type ReactionPrototype struct {
	ID                      ReactionID
	Reactants               *OrderedMap[ReagentID, Reactant]
	RequiredMixerCategories []string
	MinTemp                 *float64
	MaxTemp                 *float64
	Products                *OrderedMap[ReagentID, float64]
	Effects                 []ReactionEffect
}

type StackPrototype struct {
	ID    StackID
	Spawn EntityID
}

type ConstructionGraph struct {
	ID    ConstructionGraphID
	Nodes []ConstructionGraphNode
}

// node returns the node with the given name, or nil.
func (g *ConstructionGraph) node(name string) *ConstructionGraphNode {
	for i := range g.Nodes {
		if g.Nodes[i].Node == name {
			return &g.Nodes[i]
		}
	}
	return nil
}

type ConstructionGraphNode struct {
	Node   string
	Edges  []ConstructionGraphEdge
	Entity EntityID // empty if the node has no entity
}

type ConstructionGraphEdge struct {
	To    string
	Steps []ConstructionGraphStep
	// Conditions is the number of conditions on the edge; we only care whether there are any.
	Conditions int
}

type ConstructionGraphStep struct {
	Tool           string
	MinTemperature *float64
	MaxTemperature *float64
	Tag            TagID
}

type FoodSequenceElement struct {
	ID    FoodSequenceElementID
	Tags  []TagID
	Final bool
}

// MinMax bounds; unset fields default to 0 in the game.
type MinMax struct {
	Min *int
	Max *int
}

func (m MinMax) minOrZero() int {
	if m.Min == nil {
		return 0
	}
	return *m.Min
}

func (m MinMax) maxOrZero() int {
	if m.Max == nil {
		return 0
	}
	return *m.Max
}

type MetamorphRule struct {
	Kind RuleKind
	// Type is the raw `!type` value, kept for diagnostics.
	Type          string
	Tags          []TagID
	NeedAll       bool // default true
	Count         MinMax
	Range         MinMax
	Reagent       ReagentID
	ElementNumber int
}

type MetamorphRecipe struct {
	ID     MetamorphRecipeID
	Key    TagID
	Result EntityID
	// Rules is nil when the data omits it.
	Rules []MetamorphRule
}

// RawGameData holds every prototype table for one fork, in load order.
type RawGameData struct {
	Entities             *OrderedMap[EntityID, *EntityPrototype]
	Reagents             *OrderedMap[ReagentID, *ReagentPrototype]
	Stacks               *OrderedMap[StackID, *StackPrototype]
	ConstructionGraphs   *OrderedMap[ConstructionGraphID, *ConstructionGraph]
	MetamorphRecipes     *OrderedMap[MetamorphRecipeID, *MetamorphRecipe]
	FoodSequenceElements *OrderedMap[FoodSequenceElementID, *FoodSequenceElement]
	Recipes              []*MicrowaveRecipe
	Reactions            []*ReactionPrototype
}

// NewRawGameData returns empty tables.
func NewRawGameData() *RawGameData {
	return &RawGameData{
		Entities:             NewOrderedMap[EntityID, *EntityPrototype](),
		Reagents:             NewOrderedMap[ReagentID, *ReagentPrototype](),
		Stacks:               NewOrderedMap[StackID, *StackPrototype](),
		ConstructionGraphs:   NewOrderedMap[ConstructionGraphID, *ConstructionGraph](),
		MetamorphRecipes:     NewOrderedMap[MetamorphRecipeID, *MetamorphRecipe](),
		FoodSequenceElements: NewOrderedMap[FoodSequenceElementID, *FoodSequenceElement](),
	}
}

// ── Resolved entities ───────────────────────────────────────────────

// ResolvedEntity is the flattened, inheritance-free view of an entity
// prototype: all component data the cookbook uses, with parents applied.
type ResolvedEntity struct {
	ID   EntityID
	Name string
	// IsProduce is true for things grown in a hydroponics tray.
	IsProduce bool
	Sprite    ResolvedSprite
	// Solution holds every named solution, or nil.
	Solution map[string]Solution
	// Reagents are the reagent IDs of the `food` solution.
	Reagents            Set[ReagentID]
	Extractable         *ResolvedExtractable
	FoodSequenceStart   *ResolvedFoodSequenceStart
	FoodSequenceElement map[TagID]ResolvedFoodSequenceElement
	SliceableFood       *ResolvedSlice
	Butcherable         *ResolvedButcherable
	Construction        *ResolvedConstruction
	DeepFryOutput       EntityID // Frontier; empty if none
	Stomach             *ResolvedStomach
	Tags                Set[TagID]
	Components          Set[string]
}

type ResolvedSprite struct {
	Path   *string
	State  *string
	Color  *string
	Layers []ResolvedSpriteLayer
}

type ResolvedSpriteLayer struct {
	Path    *string
	State   *string
	Color   *string
	Visible bool
}

type ResolvedExtractable struct {
	GrindSolutionName string
	// The juice solution is always inline in the component.
	JuiceSolution *Solution
}

type ResolvedSlice struct {
	Slice EntityID
	Count int
}

type ResolvedButcherable struct {
	Tool    string
	Spawned []EntitySpawnEntry
}

// ResolvedConstruction only describes a usable state when Edge and Step are nil.
type ResolvedConstruction struct {
	Graph *ConstructionGraphID
	Node  *string
	Edge  *int
	Step  *int
}

func (c *ResolvedConstruction) atRest() bool {
	return c != nil && c.Graph != nil && c.Node != nil && c.Edge == nil && c.Step == nil
}

type ResolvedStomach struct {
	Tags       []TagID
	Components []string
}

type ResolvedFoodSequenceStart struct {
	Key       TagID // empty if unset
	MaxLayers int
}

type ResolvedFoodSequenceElement struct {
	Element FoodSequenceElementID
	Final   bool
}

// nonZeroFinite reports whether v is set to a finite, non-zero value.
func nonZeroFinite(v *float64) bool {
	return v != nil && *v != 0 && !math.IsInf(*v, 0) && !math.IsNaN(*v)
}
