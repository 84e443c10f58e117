package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// prototypeDump is a small fork: one microwave recipe, a sliceable result,
// a reaction that makes one of its reagents, and a metamorph recipe.
const prototypeDump = `[
  {"type": "entity", "id": "FoodBase", "abstract": true, "components": [
    {"type": "Food"},
    {"type": "Sprite", "sprite": "Objects/Consumable/Food/base.rsi"}
  ]},
  {"type": "entity", "id": "FoodDough", "parent": "FoodBase", "name": "dough", "components": [
    {"type": "Sprite", "state": "dough"},
    {"type": "SolutionContainerManager", "solutions": {"food": {"reagents": [
      {"ReagentId": "Nutriment", "Quantity": 3}
    ]}}}
  ]},
  {"type": "entity", "id": "FoodBread", "parent": ["FoodBase"], "name": "bread", "components": [
    {"type": "Sprite", "state": "bread"},
    {"type": "SliceableFood", "slice": "FoodBreadSlice", "count": 4},
    {"type": "Tag", "tags": ["Bread"]}
  ]},
  {"type": "entity", "id": "FoodBreadSlice", "parent": "FoodBase", "name": "bread slice", "components": [
    {"type": "Sprite", "layers": [{"state": "slice"}, {"state": "crumbs", "visible": false}]}
  ]},
  {"type": "entity", "id": "FoodBurgerBun", "parent": "FoodBase", "name": "bun", "components": [
    {"type": "Sprite", "state": "bun"},
    {"type": "FoodSequenceStartPoint", "key": "Burger", "maxLayers": 5}
  ]},
  {"type": "entity", "id": "FoodBurgerCustom", "parent": "FoodBase", "name": "custom burger", "components": [
    {"type": "Sprite", "state": "custom"}
  ]},
  {"type": "entity", "id": "FoodMeat", "parent": "FoodBase", "name": "meat", "components": [
    {"type": "Sprite", "state": "meat"},
    {"type": "FoodSequenceElement", "entries": {"Burger": "MeatElem"}}
  ]},
  {"type": "entity", "id": "KitchenMicrowave", "name": "microwave", "components": [
    {"type": "Sprite", "sprite": "Structures/Machines/microwave.rsi", "state": "mw"}
  ]},
  {"type": "entity", "id": "Beaker", "name": "beaker", "components": [
    {"type": "Sprite", "sprite": "Objects/Specific/Chemistry/beaker.rsi", "state": "beaker"}
  ]},
  {"type": "reagent", "id": "Nutriment", "name": "reagent-name-nutriment", "group": "Foods", "color": "#24591f"},
  {"type": "reagent", "id": "Flour", "name": "reagent-name-flour", "group": "Foods"},
  {"type": "reagent", "id": "Water", "name": "reagent-name-water", "group": "Drinks", "color": "#75b1f0"},
  {"type": "stack", "id": "DoughStack", "spawn": "FoodDough"},
  {"type": "microwaveMealRecipe", "id": "RecipeBread", "name": "bread recipe", "result": "FoodBread",
   "time": 15, "solids": {"FoodDough": 1}, "recipeType": "Oven"},
  {"type": "reaction", "id": "CreateDough", "reactants": {"Flour": {"amount": 15}, "Water": {"amount": 10}},
   "effects": [{"!type": "CreateEntityReactionEffect", "entity": "FoodDough"}, {"!type": "PopupMessage"}]},
  {"type": "foodSequenceElement", "id": "MeatElem", "tags": ["Meat"]},
  {"type": "metamorphRecipe", "id": "CustomBurger", "key": "Burger", "result": "FoodBurgerCustom", "rules": [
    {"!type": "IngredientsWithTags", "tags": ["Meat"], "count": {"min": 1}, "needAll": false},
    {"!type": "FoodHasReagent", "reagent": "Nutriment", "count": {"min": 2}},
    {"!type": "LastElementHasTags", "tags": ["Meat"]}
  ]},
  {"type": "constructionGraph", "id": "Dough", "graph": [
    {"node": "start", "entity": "FoodDough", "edges": [
      {"to": "flat", "conditions": [{"!type": "Whatever"}], "steps": [{"tool": "Rolling"}]}
    ]},
    {"node": "flat"}
  ]},
  {"type": "soundCollection", "id": "Ignored"},
  {"type": "entity", "name": "no id"},
  "not an object"
]`

func TestParseRawGameData(t *testing.T) {
	logger, buf := testLogger()
	raw, err := ParseRawGameData(prototypeDump, logger)
	if err != nil {
		t.Fatalf("ParseRawGameData: %v", err)
	}
	if got := buf.String(); got != "warning: reaction 'CreateDough': unknown effect type PopupMessage is ignored\n" {
		t.Errorf("unexpected output:\n%s", got)
	}

	if raw.Entities.Len() != 9 {
		t.Errorf("got %d entities: %v", raw.Entities.Len(), raw.Entities.Keys())
	}
	base, _ := raw.Entities.Get("FoodBase")
	if !base.Abstract || base.Name != nil {
		t.Errorf("FoodBase = %+v", base)
	}
	if c := base.Components[0]; c.ComponentName() != "Food" {
		t.Errorf("first component = %s, want Food", c.ComponentName())
	}

	dough, _ := raw.Entities.Get("FoodDough")
	if !slices.Equal(dough.Parents, []EntityID{"FoodBase"}) || *dough.Name != "dough" {
		t.Errorf("FoodDough = %+v", dough)
	}
	sol := dough.Components[1].(SolutionContainerManagerComponent).Solutions["food"]
	if len(sol.Reagents) != 1 || sol.Reagents[0] != (ReagentQuantity{"Nutriment", 3}) {
		t.Errorf("dough solution = %+v", sol)
	}

	bread, _ := raw.Entities.Get("FoodBread")
	slice := bread.Components[1].(SliceableFoodComponent)
	if *slice.Slice != "FoodBreadSlice" || *slice.Count != 4 {
		t.Errorf("slice = %+v", slice)
	}

	breadSlice, _ := raw.Entities.Get("FoodBreadSlice")
	layers := breadSlice.Components[0].(SpriteComponent).Layers
	if len(layers) != 2 || layers[0].Visible != nil || *layers[1].Visible {
		t.Errorf("layers = %+v", layers)
	}

	if s, ok := raw.Stacks.Get("DoughStack"); !ok || s.Spawn != "FoodDough" {
		t.Errorf("stack = %+v", s)
	}
	water, _ := raw.Reagents.Get("Water")
	if water.Group != "Drinks" || water.Color != "#75b1f0" || water.Name != "reagent-name-water" {
		t.Errorf("water = %+v", water)
	}

	if len(raw.Recipes) != 1 {
		t.Fatalf("got %d recipes", len(raw.Recipes))
	}
	recipe := raw.Recipes[0]
	if *recipe.Time != 15 || recipe.Solids["FoodDough"] != 1 || recipe.Reagents != nil || recipe.Group != nil {
		t.Errorf("recipe = %+v", recipe)
	}
	if !slices.Equal(recipe.RecipeType, []string{"Oven"}) {
		t.Errorf("recipe type = %v, want a list of one", recipe.RecipeType)
	}

	reaction := raw.Reactions[0]
	if got := reaction.Reactants.Keys(); !slices.Equal(got, []ReagentID{"Flour", "Water"}) {
		t.Errorf("reactants = %v", got)
	}
	if reaction.Products.Len() != 0 || reaction.MinTemp != nil {
		t.Errorf("reaction = %+v", reaction)
	}
	if len(reaction.Effects) != 2 || reaction.Effects[0].Kind != EffectCreateEntity || reaction.Effects[1].Kind != EffectOther {
		t.Errorf("effects = %+v", reaction.Effects)
	}
	if solid, ok := solidResult(reaction); !ok || solid != "FoodDough" {
		t.Errorf("solid result = %q %v", solid, ok)
	}

	meta, _ := raw.MetamorphRecipes.Get("CustomBurger")
	if len(meta.Rules) != 3 {
		t.Fatalf("rules = %+v", meta.Rules)
	}
	if r := meta.Rules[0]; r.Kind != RuleIngredientsWithTags || r.NeedAll || r.Count.minOrZero() != 1 {
		t.Errorf("rule 0 = %+v", r)
	}
	if r := meta.Rules[1]; r.Kind != RuleFoodHasReagent || r.Reagent != "Nutriment" || *r.Count.Min != 2 || r.Count.Max != nil || !r.NeedAll {
		t.Errorf("rule 1 = %+v", r)
	}
	if r := meta.Rules[2]; r.Kind != RuleLastElementHasTags || r.Type != "LastElementHasTags" {
		t.Errorf("rule 2 = %+v", r)
	}

	graph, _ := raw.ConstructionGraphs.Get("Dough")
	start := graph.node("start")
	if start == nil || start.Edges[0].Conditions != 1 || start.Edges[0].Steps[0].Tool != "Rolling" {
		t.Errorf("start node = %+v", start)
	}
	if flat := graph.node("flat"); flat == nil || flat.Entity != "" {
		t.Errorf("flat node = %+v", flat)
	}
	if elem, ok := raw.FoodSequenceElements.Get("MeatElem"); !ok || !slices.Equal(elem.Tags, []TagID{"Meat"}) {
		t.Errorf("element = %+v", elem)
	}
}

func TestParseRawGameDataEdgeCases(t *testing.T) {
	logger, buf := testLogger()

	raw, err := ParseRawGameData("\ufeff"+`[{"type": "reagent", "id": "Milk"}]`, logger)
	if err != nil {
		t.Fatalf("with BOM: %v", err)
	}
	if !raw.Reagents.Has("Milk") {
		t.Error("reagent after BOM not loaded")
	}

	if _, err := ParseRawGameData(`[{"type": "entity",`, logger); err == nil {
		t.Error("truncated JSON: got nil error")
	}

	raw, err = ParseRawGameData(`{"type": "entity", "id": "Lonely"}`, logger)
	if err != nil {
		t.Fatalf("object at top level: %v", err)
	}
	if raw.Entities.Len() != 0 {
		t.Error("loaded prototypes from a non-array document")
	}
	if !strings.Contains(buf.String(), "warning: <input>: top-level structure is not an array") {
		t.Errorf("missing warning in:\n%s", buf)
	}

	// Unknown reaction effects warn once per type.
	buf.Reset()
	ParseRawGameData(`[
		{"type": "reaction", "id": "R1", "effects": [{"!type": "Emote"}, {"!type": "SpawnEntity", "entity": "X"}]},
		{"type": "reaction", "id": "R2", "effects": [{"!type": "Emote"}, {"!type": "Flash"}]}
	]`, logger)
	if n := strings.Count(buf.String(), "warning: "); n != 2 {
		t.Errorf("got %d warnings, want 2:\n%s", n, buf)
	}
	if !strings.Contains(buf.String(), "warning: reaction 'R1': unknown effect type Emote is ignored") {
		t.Errorf("missing effect warning in:\n%s", buf)
	}

	// Tag lists: unset, empty and set are all distinct.
	raw, _ = ParseRawGameData(`[{"type": "entity", "id": "A", "components": [
		{"type": "Tag"}, {"type": "Tag", "tags": []}, {"type": "Tag", "tags": ["X"]}
	]}]`, logger)
	a, _ := raw.Entities.Get("A")
	got := []int{-1, -1, -1}
	for i, c := range a.Components {
		if tc := c.(TagComponent); tc.Tags != nil {
			got[i] = len(tc.Tags)
		}
	}
	if !slices.Equal(got, []int{-1, 0, 1}) {
		t.Errorf("tag list lengths = %v, want [-1 0 1]", got)
	}
}

func TestLoadRawGameDataDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.json", `[{"type": "reagent", "id": "Milk", "color": "#ffffff"}]`)
	write("b/c.json", `[{"type": "reagent", "id": "Milk", "color": "#fffff0"}, {"type": "reagent", "id": "Cream"}]`)
	write("notes.txt", `not json`)

	logger, _ := testLogger()
	raw, err := LoadRawGameData(dir, logger)
	if err != nil {
		t.Fatalf("LoadRawGameData: %v", err)
	}
	if got := raw.Reagents.Keys(); !slices.Equal(got, []ReagentID{"Milk", "Cream"}) {
		t.Errorf("reagents = %v", got)
	}
	if milk, _ := raw.Reagents.Get("Milk"); milk.Color != "#fffff0" {
		t.Errorf("milk color = %s, want the later file's", milk.Color)
	}

	if _, err := LoadRawGameData(filepath.Join(dir, "missing"), logger); err == nil {
		t.Error("missing path: got nil error")
	}
}
