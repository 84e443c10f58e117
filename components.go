package main

// Component is one entry in an entity prototype's component list. The set of
// component kinds we read is closed; everything else is a GenericComponent,
// which only contributes its name.
type Component interface {
	ComponentName() string
}

type ReagentQuantity struct {
	ReagentID ReagentID
	Quantity  float64
}

// Solution is a named reagent pool. Reagents is nil when the data omits it.
type Solution struct {
	Reagents []ReagentQuantity
}

// EntitySpawnEntry is one row of a spawn table. Unset numbers are nil.
type EntitySpawnEntry struct {
	ID      EntityID
	Amount  *int
	Prob    *float64
	OrGroup string
}

type SpriteLayer struct {
	Sprite  *string
	State   *string
	Color   *string
	Visible *bool
}

type EntityWhitelist struct {
	Tags       []TagID
	Components []string
	Sizes      []string
}

type ButcherableComponent struct {
	ButcheringType string
	Spawned        []EntitySpawnEntry
}

type ConstructionComponent struct {
	Graph *ConstructionGraphID
	Node  *string
	Edge  *int
	Step  *int
}

type DeepFrySpawnComponent struct {
	Output EntityID
}

type ExtractableComponent struct {
	GrindableSolutionName *string
	JuiceSolution         *Solution
}

type FoodSequenceElementComponent struct {
	// Entries maps food sequence key to element. Nil when unset.
	Entries *OrderedMap[TagID, FoodSequenceElementID]
}

type FoodSequenceStartPointComponent struct {
	Key       *TagID
	MaxLayers *int
}

type ProduceComponent struct{}

type SliceableFoodComponent struct {
	Slice *EntityID
	Count *int
}

type SolutionContainerManagerComponent struct {
	Solutions map[string]Solution
}

type SpriteComponent struct {
	Sprite *string
	State  *string
	Color  *string
	// Layers is nil when the component does not declare any.
	Layers []SpriteLayer
}

type StomachComponent struct {
	SpecialDigestible *EntityWhitelist
}

type TagComponent struct {
	// Tags is nil when unset; an empty non-nil list clears the tags.
	Tags []TagID
}

type GenericComponent struct {
	Name string
}

func (ButcherableComponent) ComponentName() string              { return "Butcherable" }
func (ConstructionComponent) ComponentName() string             { return "Construction" }
func (DeepFrySpawnComponent) ComponentName() string             { return "DeepFrySpawn" }
func (ExtractableComponent) ComponentName() string              { return "Extractable" }
func (FoodSequenceElementComponent) ComponentName() string      { return "FoodSequenceElement" }
func (FoodSequenceStartPointComponent) ComponentName() string   { return "FoodSequenceStartPoint" }
func (ProduceComponent) ComponentName() string                  { return "Produce" }
func (SliceableFoodComponent) ComponentName() string            { return "SliceableFood" }
func (SolutionContainerManagerComponent) ComponentName() string { return "SolutionContainerManager" }
func (SpriteComponent) ComponentName() string                   { return "Sprite" }
func (StomachComponent) ComponentName() string                  { return "Stomach" }
func (TagComponent) ComponentName() string                      { return "Tag" }
func (c GenericComponent) ComponentName() string                { return c.Name }
