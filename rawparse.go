package main

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// The loader reads prototype dumps: JSON arrays of prototype documents, the
// game's YAML converted one-to-one. A `!type:T` tag on a mapping becomes a
// `"!type": "T"` key.

// LoadRawGameData reads one dump file, or every *.json file under a
// directory in lexical order. Later prototypes with the same ID replace
// earlier ones.
func LoadRawGameData(path string, logger *log.Logger) (*RawGameData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	paths := []string{path}
	if info.IsDir() {
		paths, err = findPrototypeFiles(path)
		if err != nil {
			return nil, err
		}
	}

	raw := NewRawGameData()
	loader := newRawLoader(raw, logger)
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		if err := loader.load(p, string(src)); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func findPrototypeFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".json") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find prototypes in %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// ParseRawGameData parses a single dump held in memory.
func ParseRawGameData(src string, logger *log.Logger) (*RawGameData, error) {
	raw := NewRawGameData()
	if err := newRawLoader(raw, logger).load("<input>", src); err != nil {
		return nil, err
	}
	return raw, nil
}

type rawLoader struct {
	raw    *RawGameData
	logger *log.Logger
	// unknownEffects is used to warn once per unknown reaction effect type.
	unknownEffects Set[string]
}

func newRawLoader(raw *RawGameData, logger *log.Logger) *rawLoader {
	return &rawLoader{raw: raw, logger: logger, unknownEffects: newSet[string]()}
}

func (l *rawLoader) load(name, src string) error {
	src = strings.TrimPrefix(src, "\ufeff")
	if !gjson.Valid(src) {
		return fmt.Errorf("%s: not valid JSON", name)
	}
	doc := gjson.Parse(src)
	if !doc.IsArray() {
		l.logger.Printf("warning: %s: top-level structure is not an array, ignoring", name)
		return nil
	}

	doc.ForEach(func(_, node gjson.Result) bool {
		id := node.Get("id")
		if !node.IsObject() || id.Type != gjson.String {
			return true
		}
		switch parsePrototypeKind(node.Get("type").String()) {
		case KindEntity:
			ent := parseEntity(node)
			l.raw.Entities.Set(ent.ID, ent)
		case KindReagent:
			r := parseReagent(node)
			l.raw.Reagents.Set(r.ID, r)
		case KindStack:
			s := &StackPrototype{ID: StackID(id.String()), Spawn: EntityID(node.Get("spawn").String())}
			l.raw.Stacks.Set(s.ID, s)
		case KindConstructionGraph:
			g := parseConstructionGraph(node)
			l.raw.ConstructionGraphs.Set(g.ID, g)
		case KindMetamorphRecipe:
			m := parseMetamorphRecipe(node)
			l.raw.MetamorphRecipes.Set(m.ID, m)
		case KindFoodSequenceElement:
			e := &FoodSequenceElement{
				ID:    FoodSequenceElementID(id.String()),
				Tags:  readIDs[TagID](node.Get("tags")),
				Final: node.Get("final").Bool(),
			}
			l.raw.FoodSequenceElements.Set(e.ID, e)
		case KindMicrowaveRecipe:
			l.raw.Recipes = append(l.raw.Recipes, parseMicrowaveRecipe(node))
		case KindReaction:
			l.raw.Reactions = append(l.raw.Reactions, l.parseReaction(node))
		case KindNone:
		}
		return true
	})
	return nil
}

// ── Entities ────────────────────────────────────────────────────────

func parseEntity(v gjson.Result) *EntityPrototype {
	ent := &EntityPrototype{
		ID:       EntityID(v.Get("id").String()),
		Parents:  readIDs[EntityID](v.Get("parent")),
		Name:     optString(v.Get("name")),
		Abstract: v.Get("abstract").Bool(),
	}
	v.Get("components").ForEach(func(_, c gjson.Result) bool {
		if comp := parseComponent(c); comp != nil {
			ent.Components = append(ent.Components, comp)
		}
		return true
	})
	return ent
}

func parseComponent(c gjson.Result) Component {
	typ := c.Get("type").String()
	switch typ {
	case "":
		return nil
	case "Butcherable":
		comp := ButcherableComponent{ButcheringType: c.Get("butcheringType").String()}
		if spawned := c.Get("spawned"); spawned.IsArray() {
			comp.Spawned = parseSpawnEntries(spawned)
		}
		return comp
	case "Construction":
		comp := ConstructionComponent{
			Node: optString(c.Get("node")),
			Edge: optInt(c.Get("edge")),
			Step: optInt(c.Get("step")),
		}
		if g := c.Get("graph"); g.Exists() && g.Type != gjson.Null {
			id := ConstructionGraphID(g.String())
			comp.Graph = &id
		}
		return comp
	case "DeepFrySpawn":
		return DeepFrySpawnComponent{Output: EntityID(c.Get("output").String())}
	case "Extractable":
		return ExtractableComponent{
			GrindableSolutionName: optString(c.Get("grindableSolutionName")),
			JuiceSolution:         parseSolutionPtr(c.Get("juiceSolution")),
		}
	case "FoodSequenceElement":
		var comp FoodSequenceElementComponent
		if entries := c.Get("entries"); entries.IsObject() {
			comp.Entries = NewOrderedMap[TagID, FoodSequenceElementID]()
			entries.ForEach(func(k, e gjson.Result) bool {
				comp.Entries.Set(TagID(k.String()), FoodSequenceElementID(e.String()))
				return true
			})
		}
		return comp
	case "FoodSequenceStartPoint":
		var comp FoodSequenceStartPointComponent
		if k := c.Get("key"); k.Exists() && k.Type != gjson.Null {
			key := TagID(k.String())
			comp.Key = &key
		}
		comp.MaxLayers = optInt(c.Get("maxLayers"))
		return comp
	case "Produce":
		return ProduceComponent{}
	case "SliceableFood":
		comp := SliceableFoodComponent{Count: optInt(c.Get("count"))}
		if s := c.Get("slice"); s.Exists() && s.Type != gjson.Null {
			slice := EntityID(s.String())
			comp.Slice = &slice
		}
		return comp
	case "SolutionContainerManager":
		var comp SolutionContainerManagerComponent
		if sols := c.Get("solutions"); sols.IsObject() {
			comp.Solutions = make(map[string]Solution)
			sols.ForEach(func(k, s gjson.Result) bool {
				comp.Solutions[k.String()] = parseSolution(s)
				return true
			})
		}
		return comp
	case "Sprite":
		comp := SpriteComponent{
			Sprite: optString(c.Get("sprite")),
			State:  optString(c.Get("state")),
			Color:  optString(c.Get("color")),
		}
		if layers := c.Get("layers"); layers.IsArray() {
			comp.Layers = []SpriteLayer{}
			layers.ForEach(func(_, l gjson.Result) bool {
				comp.Layers = append(comp.Layers, SpriteLayer{
					Sprite:  optString(l.Get("sprite")),
					State:   optString(l.Get("state")),
					Color:   optString(l.Get("color")),
					Visible: optBool(l.Get("visible")),
				})
				return true
			})
		}
		return comp
	case "Stomach":
		var comp StomachComponent
		if wl := c.Get("specialDigestible"); wl.IsObject() {
			comp.SpecialDigestible = &EntityWhitelist{
				Tags:       readIDs[TagID](wl.Get("tags")),
				Components: readIDs[string](wl.Get("components")),
				Sizes:      readIDs[string](wl.Get("sizes")),
			}
		}
		return comp
	case "Tag":
		var comp TagComponent
		if tags := c.Get("tags"); tags.IsArray() {
			comp.Tags = readIDs[TagID](tags)
			if comp.Tags == nil {
				comp.Tags = []TagID{}
			}
		}
		return comp
	}
	return GenericComponent{Name: typ}
}

func parseSpawnEntries(v gjson.Result) []EntitySpawnEntry {
	entries := []EntitySpawnEntry{}
	v.ForEach(func(_, e gjson.Result) bool {
		entry := EntitySpawnEntry{
			ID:      EntityID(e.Get("id").String()),
			Amount:  optInt(e.Get("amount")),
			OrGroup: e.Get("orGroup").String(),
		}
		if p := e.Get("prob"); p.Type == gjson.Number {
			prob := p.Float()
			entry.Prob = &prob
		}
		entries = append(entries, entry)
		return true
	})
	return entries
}

func parseSolution(v gjson.Result) Solution {
	var sol Solution
	if reagents := v.Get("reagents"); reagents.IsArray() {
		sol.Reagents = []ReagentQuantity{}
		reagents.ForEach(func(_, r gjson.Result) bool {
			sol.Reagents = append(sol.Reagents, ReagentQuantity{
				ReagentID: ReagentID(r.Get("ReagentId").String()),
				Quantity:  r.Get("Quantity").Float(),
			})
			return true
		})
	}
	return sol
}

func parseSolutionPtr(v gjson.Result) *Solution {
	if !v.IsObject() {
		return nil
	}
	sol := parseSolution(v)
	return &sol
}

// ── Reagents and recipes ────────────────────────────────────────────

func parseReagent(v gjson.Result) *ReagentPrototype {
	return &ReagentPrototype{
		ID:    ReagentID(v.Get("id").String()),
		Name:  v.Get("name").String(),
		Color: v.Get("color").String(),
		Group: v.Get("group").String(),
	}
}

func parseMicrowaveRecipe(v gjson.Result) *MicrowaveRecipe {
	r := &MicrowaveRecipe{
		ID:          MicrowaveRecipeID(v.Get("id").String()),
		Name:        v.Get("name").String(),
		Result:      EntityID(v.Get("result").String()),
		Time:        optFloat(v.Get("time")),
		Group:       optString(v.Get("group")),
		RecipeType:  readIDs[string](v.Get("recipeType")),
		ResultCount: optInt(v.Get("resultCount")),
	}
	if solids := v.Get("solids"); solids.IsObject() {
		r.Solids = make(map[EntityID]int)
		solids.ForEach(func(k, n gjson.Result) bool {
			r.Solids[EntityID(k.String())] = int(n.Int())
			return true
		})
	}
	if reagents := v.Get("reagents"); reagents.IsObject() {
		r.Reagents = make(map[ReagentID]float64)
		reagents.ForEach(func(k, n gjson.Result) bool {
			r.Reagents[ReagentID(k.String())] = n.Float()
			return true
		})
	}
	return r
}

func (l *rawLoader) parseReaction(v gjson.Result) *ReactionPrototype {
	r := &ReactionPrototype{
		ID:                      ReactionID(v.Get("id").String()),
		Reactants:               NewOrderedMap[ReagentID, Reactant](),
		RequiredMixerCategories: readIDs[string](v.Get("requiredMixerCategories")),
		MinTemp:                 optFloat(v.Get("minTemp")),
		MaxTemp:                 optFloat(v.Get("maxTemp")),
		Products:                NewOrderedMap[ReagentID, float64](),
	}
	v.Get("reactants").ForEach(func(k, re gjson.Result) bool {
		r.Reactants.Set(ReagentID(k.String()), Reactant{
			Amount:   re.Get("amount").Float(),
			Catalyst: re.Get("catalyst").Bool(),
		})
		return true
	})
	v.Get("products").ForEach(func(k, n gjson.Result) bool {
		r.Products.Set(ReagentID(k.String()), n.Float())
		return true
	})
	v.Get("effects").ForEach(func(_, e gjson.Result) bool {
		typ := e.Get(`\!type`).String()
		effect := ReactionEffect{
			Kind:   parseEffectKind(typ),
			Type:   typ,
			Entity: EntityID(e.Get("entity").String()),
			Number: optInt(e.Get("number")),
		}
		if effect.Kind == EffectOther && typ != "" && !l.unknownEffects.Has(typ) {
			l.unknownEffects[typ] = struct{}{}
			l.logger.Printf("warning: reaction '%s': unknown effect type %s is ignored", r.ID, typ)
		}
		r.Effects = append(r.Effects, effect)
		return true
	})
	return r
}

// ── Construction graphs and metamorph recipes ───────────────────────

func parseConstructionGraph(v gjson.Result) *ConstructionGraph {
	g := &ConstructionGraph{ID: ConstructionGraphID(v.Get("id").String())}
	v.Get("graph").ForEach(func(_, n gjson.Result) bool {
		node := ConstructionGraphNode{
			Node:   n.Get("node").String(),
			Entity: EntityID(n.Get("entity").String()),
		}
		n.Get("edges").ForEach(func(_, e gjson.Result) bool {
			edge := ConstructionGraphEdge{
				To:         e.Get("to").String(),
				Conditions: len(e.Get("conditions").Array()),
			}
			e.Get("steps").ForEach(func(_, s gjson.Result) bool {
				edge.Steps = append(edge.Steps, ConstructionGraphStep{
					Tool:           s.Get("tool").String(),
					MinTemperature: optFloat(s.Get("minTemperature")),
					MaxTemperature: optFloat(s.Get("maxTemperature")),
					Tag:            TagID(s.Get("tag").String()),
				})
				return true
			})
			node.Edges = append(node.Edges, edge)
			return true
		})
		g.Nodes = append(g.Nodes, node)
		return true
	})
	return g
}

func parseMetamorphRecipe(v gjson.Result) *MetamorphRecipe {
	m := &MetamorphRecipe{
		ID:     MetamorphRecipeID(v.Get("id").String()),
		Key:    TagID(v.Get("key").String()),
		Result: EntityID(v.Get("result").String()),
	}
	if rules := v.Get("rules"); rules.IsArray() {
		m.Rules = []MetamorphRule{}
		rules.ForEach(func(_, r gjson.Result) bool {
			m.Rules = append(m.Rules, parseMetamorphRule(r))
			return true
		})
	}
	return m
}

func parseMetamorphRule(r gjson.Result) MetamorphRule {
	typ := r.Get(`\!type`).String()
	rule := MetamorphRule{
		Kind:          parseRuleKind(typ),
		Type:          typ,
		Tags:          readIDs[TagID](r.Get("tags")),
		NeedAll:       true,
		Count:         parseMinMax(r.Get("count")),
		Range:         parseMinMax(r.Get("range")),
		Reagent:       ReagentID(r.Get("reagent").String()),
		ElementNumber: int(r.Get("elementNumber").Int()),
	}
	if na := r.Get("needAll"); na.Exists() && na.Type != gjson.Null {
		rule.NeedAll = na.Bool()
	}
	return rule
}

func parseMinMax(v gjson.Result) MinMax {
	return MinMax{Min: optInt(v.Get("min")), Max: optInt(v.Get("max"))}
}

// ── Optional values ─────────────────────────────────────────────────

func optString(v gjson.Result) *string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	s := v.String()
	return &s
}

func optInt(v gjson.Result) *int {
	if v.Type != gjson.Number {
		return nil
	}
	n := int(v.Int())
	return &n
}

func optFloat(v gjson.Result) *float64 {
	if v.Type != gjson.Number {
		return nil
	}
	f := v.Float()
	return &f
}

func optBool(v gjson.Result) *bool {
	if v.Type != gjson.True && v.Type != gjson.False {
		return nil
	}
	b := v.Bool()
	return &b
}
