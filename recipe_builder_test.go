package main

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/tidwall/gjson"
)

func TestBuilderConflictingResults(t *testing.T) {
	b := NewConstructRecipeBuilder("").WithReagentResult("Soup").WithSolidResult("Bowl")
	if !errors.Is(b.Err(), ErrConflictingResults) {
		t.Errorf("reagent then solid: got %v, want ErrConflictingResults", b.Err())
	}
	if _, err := b.ToRecipe(); !errors.Is(err, ErrConflictingResults) {
		t.Errorf("ToRecipe: got %v, want ErrConflictingResults", err)
	}

	b = NewConstructRecipeBuilder("").WithSolidResult("Bowl").WithReagentResult("Soup")
	if !errors.Is(b.Err(), ErrConflictingResults) {
		t.Errorf("solid then reagent: got %v, want ErrConflictingResults", b.Err())
	}
}

func TestBuilderNoResult(t *testing.T) {
	_, err := NewConstructRecipeBuilder("").StartWith("Dough").Roll().ToRecipe()
	if !errors.Is(err, ErrNoResult) {
		t.Errorf("got %v, want ErrNoResult", err)
	}
}

func TestBuilderCollectsIngredients(t *testing.T) {
	recipe, err := NewConstructRecipeBuilder("Breakfast").
		WithSolidResult("Omelette").
		StartWith("Pan").
		AddSolid(EntityRef{"Egg", "DuckEgg"}, ptr(2), nil).
		Mix(map[ReagentID]ReagentIngredient{"Milk": {Amount: 5}}).
		AddReagent("Salt", 1, 3).
		EndWith(oneEntity("Cheese")).
		ToRecipe()
	if err != nil {
		t.Fatalf("ToRecipe: %v", err)
	}

	for _, id := range []EntityID{"Pan", "Egg", "DuckEgg", "Cheese"} {
		if recipe.Solids[id] != 1 {
			t.Errorf("solids[%s] = %d, want 1", id, recipe.Solids[id])
		}
	}
	if len(recipe.Solids) != 4 {
		t.Errorf("got %d solids, want 4", len(recipe.Solids))
	}
	for _, id := range []ReagentID{"Milk", "Salt"} {
		got, ok := recipe.Reagents[id]
		if !ok || got != presentReagent {
			t.Errorf("reagents[%s] = %+v (present %v), want zero ingredient", id, got, ok)
		}
	}
	if recipe.Group != "Breakfast" {
		t.Errorf("group = %q, want Breakfast", recipe.Group)
	}
	if recipe.Method != MethodConstruct {
		t.Errorf("method = %q, want construct", recipe.Method)
	}
}

func TestBuilderDefaultGroup(t *testing.T) {
	recipe, err := NewConstructRecipeBuilder("").WithSolidResult("X").ToRecipe()
	if err != nil {
		t.Fatalf("ToRecipe: %v", err)
	}
	if recipe.Group != DefaultRecipeGroup {
		t.Errorf("group = %q, want %q", recipe.Group, DefaultRecipeGroup)
	}
}

func TestBuilderMainVerb(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *ConstructRecipeBuilder)
		want  ConstructVerb // empty means nil
	}{
		{"no verb steps", func(b *ConstructRecipeBuilder) { b.StartWith("A").AddSolid(oneEntity("B"), nil, nil) }, ""},
		{"heat only", func(b *ConstructRecipeBuilder) { b.Heat(400).Heat(500) }, VerbHeat},
		{"heat and heat mixture", func(b *ConstructRecipeBuilder) { b.Heat(400).HeatMixture(300, nil) }, VerbHeat},
		{"cut and roll", func(b *ConstructRecipeBuilder) { b.Cut().Roll() }, ""},
		{"stir then shake", func(b *ConstructRecipeBuilder) { b.Stir().Shake() }, VerbMix},
		{"mix with stir", func(b *ConstructRecipeBuilder) { b.Mix(nil).Stir() }, VerbMix},
		{"mix and heat mixture", func(b *ConstructRecipeBuilder) { b.Mix(nil).HeatMixture(300, nil) }, ""},
		{"cut with also makes", func(b *ConstructRecipeBuilder) { b.StartWith("Loaf").Cut().AlsoMakes(oneEntity("Crumbs")) }, VerbCut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewConstructRecipeBuilder("")
			tt.build(b)
			got := b.MainVerb()
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("got %q, want nil", *got)
			case tt.want != "" && got == nil:
				t.Errorf("got nil, want %q", tt.want)
			case tt.want != "" && *got != tt.want:
				t.Errorf("got %q, want %q", *got, tt.want)
			}
		})
	}
}

func TestConstructRecipeJSON(t *testing.T) {
	recipe, err := NewConstructRecipeBuilder("").
		WithSolidResult("BreadSlice").
		WithResultQty(4).
		StartWith("Bread").
		Cut().
		AlsoMakes(EntityRef{"Crumbs", "Crust"}).
		ToRecipe()
	if err != nil {
		t.Fatalf("ToRecipe: %v", err)
	}
	data, err := json.Marshal(recipe)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc := gjson.ParseBytes(data)

	if got := doc.Get("method").String(); got != "construct" {
		t.Errorf("method = %q, want construct", got)
	}
	if got := doc.Get("mainVerb").String(); got != "cut" {
		t.Errorf("mainVerb = %q, want cut", got)
	}
	if got := doc.Get("solidResult").String(); got != "BreadSlice" {
		t.Errorf("solidResult = %q, want BreadSlice", got)
	}
	if got := doc.Get("reagentResult"); got.Type != gjson.Null {
		t.Errorf("reagentResult = %s, want null", got.Raw)
	}
	if got := doc.Get("resultQty").Float(); got != 4 {
		t.Errorf("resultQty = %v, want 4", got)
	}
	// A single entity is a string, several are a list.
	if got := doc.Get("steps.0.entity"); got.Type != gjson.String || got.String() != "Bread" {
		t.Errorf("start entity = %s, want \"Bread\"", got.Raw)
	}
	if got := doc.Get("steps.2.entity").Array(); len(got) != 2 {
		t.Errorf("alsoMakes entity = %s, want two entries", doc.Get("steps.2.entity").Raw)
	}
	var types []string
	doc.Get("steps.#.type").ForEach(func(_, v gjson.Result) bool {
		types = append(types, v.String())
		return true
	})
	if want := []string{"start", "cut", "alsoMakes"}; !slices.Equal(types, want) {
		t.Errorf("step types = %v, want %v", types, want)
	}
}

func TestRecipeJSONPerMethod(t *testing.T) {
	result := EntityID("Pizza")
	reagent := ReagentID("Sauce")
	tests := []struct {
		recipe   *Recipe
		present  []string
		excluded []string
	}{
		{
			&Recipe{Method: MethodMicrowave, SolidResult: &result, Time: 10, Subtype: Subtype{"oven"}},
			[]string{"time", "subtype"},
			[]string{"minTemp", "steps", "mainVerb"},
		},
		{
			&Recipe{Method: MethodMix, ReagentResult: &reagent, MinTemp: 300},
			[]string{"minTemp", "maxTemp"},
			[]string{"time", "steps"},
		},
		{
			&Recipe{Method: MethodDeepFry, SolidResult: &result},
			[]string{"solids", "reagents", "group"},
			[]string{"time", "minTemp", "steps"},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.recipe.Method), func(t *testing.T) {
			data, err := json.Marshal(tt.recipe)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			doc := gjson.ParseBytes(data)
			for _, key := range tt.present {
				if !doc.Get(key).Exists() {
					t.Errorf("missing %q in %s", key, data)
				}
			}
			for _, key := range tt.excluded {
				if doc.Get(key).Exists() {
					t.Errorf("unexpected %q in %s", key, data)
				}
			}
		})
	}

	if got := gjson.Get(mustMarshal(t, &Recipe{Method: MethodMicrowave, Subtype: Subtype{"oven"}}), "subtype"); got.Type != gjson.String {
		t.Errorf("single subtype = %s, want a string", got.Raw)
	}
	if _, err := json.Marshal(&Recipe{Method: "boil"}); err == nil {
		t.Error("unknown method: got nil error")
	}
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}
