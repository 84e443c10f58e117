package main

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func ptr[T any](v T) *T { return &v }

// testLogger returns a logger writing into a buffer the test can inspect.
func testLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func proto(id EntityID, comps ...Component) *EntityPrototype {
	return &EntityPrototype{ID: id, Components: comps}
}

func named(id EntityID, name string, parents []EntityID, comps ...Component) *EntityPrototype {
	return &EntityPrototype{ID: id, Name: &name, Parents: parents, Components: comps}
}

func rawWith(entities ...*EntityPrototype) *RawGameData {
	raw := NewRawGameData()
	for _, e := range entities {
		raw.Entities.Set(e.ID, e)
	}
	return raw
}

func addReagent(raw *RawGameData, id ReagentID, group string) {
	raw.Reagents.Set(id, &ReagentPrototype{ID: id, Name: "reagent-name-" + strings.ToLower(string(id)), Group: group})
}

func food() Component { return GenericComponent{Name: "Food"} }

func tags(ts ...TagID) Component { return TagComponent{Tags: ts} }

func foodSolution(reagents ...ReagentID) Component {
	sol := Solution{Reagents: []ReagentQuantity{}}
	for _, r := range reagents {
		sol.Reagents = append(sol.Reagents, ReagentQuantity{ReagentID: r, Quantity: 5})
	}
	return SolutionContainerManagerComponent{Solutions: map[string]Solution{FoodSolutionName: sol}}
}

func sprite(path, state string) Component {
	return SpriteComponent{Sprite: &path, State: &state}
}

func construction(graph ConstructionGraphID, node string) Component {
	return ConstructionComponent{Graph: &graph, Node: &node}
}

// singleStepGraph is a graph with one edge from the start entity's node to
// the target entity's node.
func singleStepGraph(id ConstructionGraphID, from, to EntityID, step ConstructionGraphStep) *ConstructionGraph {
	return &ConstructionGraph{
		ID: id,
		Nodes: []ConstructionGraphNode{
			{Node: "start", Entity: from, Edges: []ConstructionGraphEdge{{To: "end", Steps: []ConstructionGraphStep{step}}}},
			{Node: "end", Entity: to},
		},
	}
}

func microwave(id MicrowaveRecipeID, result EntityID, solids map[EntityID]int, reagents map[ReagentID]float64) *MicrowaveRecipe {
	return &MicrowaveRecipe{ID: id, Name: string(id), Result: result, Solids: solids, Reagents: reagents}
}

func reaction(id ReactionID, reactants map[ReagentID]float64, products map[ReagentID]float64) *ReactionPrototype {
	r := &ReactionPrototype{
		ID:        id,
		Reactants: NewOrderedMap[ReagentID, Reactant](),
		Products:  NewOrderedMap[ReagentID, float64](),
	}
	for _, k := range sortedKeys(reactants) {
		r.Reactants.Set(k, Reactant{Amount: reactants[k]})
	}
	for _, k := range sortedKeys(products) {
		r.Products.Set(k, products[k])
	}
	return r
}

// runFilter resolves raw's entities and runs the relevance filter over them.
func runFilter(t *testing.T, raw *RawGameData, params FilterParams) (*PrunedGameData, *relevanceFilter, *bytes.Buffer) {
	t.Helper()
	logger, buf := testLogger()
	entities := ResolveComponents(raw, logger)
	f := newRelevanceFilter(raw, entities, params, logger)
	pruned, err := f.run()
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	return pruned, f, buf
}

func stepTypes(r *Recipe) []StepType {
	out := make([]StepType, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Type
	}
	return out
}
