package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/gjson"
)

// Game defaults. These mirror field defaults of the game's prototypes and
// components and must be kept in sync with them.
const (
	// MicrowaveMealRecipePrototype.CookTime
	DefaultCookTime = 5
	// MicrowaveMealRecipePrototype.Group
	DefaultRecipeGroup = "Other"
	// SliceableFoodComponent.TotalCount
	DefaultTotalSliceCount = 5
	// FoodSequenceStartPointComponent.MaxLayers
	DefaultFoodSequenceMaxLayers = 10
	// ButcherableComponent.Type
	DefaultButcheringType = "Knife"
)

// FoodSolutionName is the solution holding all food reagents. The Food
// component could tell us, but in practice every food uses this name.
const FoodSolutionName = "food"

const DefaultReagentColor = "#ffffff"

// Mixer categories we can show as a recipe step, in output order.
var mixerCategorySteps = []struct {
	Category string
	Step     StepType
}{
	{"Stir", StepStir},
	{"Shake", StepShake},
}

func mixerCategoryStep(category string) (StepType, bool) {
	for _, m := range mixerCategorySteps {
		if m.Category == category {
			return m.Step, true
		}
	}
	return "", false
}

// Verbose controls whether detailed build progress is printed to stderr.
var Verbose bool

// ── Filter parameters ───────────────────────────────────────────────

// FilterParams tunes the relevance filter per fork. It is configuration only:
// ignore lists and forced inclusions, never control flow.
type FilterParams struct {
	IgnoredRecipes              Set[MicrowaveRecipeID]
	IgnoredSpecialRecipes       Set[string]
	IgnoredFoodSequenceElements Set[EntityID]
	IgnoreSourcesOf             Set[ReagentID]
	ForceIncludeReagentSources  *OrderedMap[ReagentID, []EntityID]
}

// ── Fork configuration ──────────────────────────────────────────────

// MethodEntities maps a cooking method to the entity that represents it.
// A nil value means the method is explicitly unsupported on the fork.
type MethodEntities = OrderedMap[CookingMethod, *EntityID]

// MicrowaveRecipeType describes a Frontier microwave recipe subtype.
type MicrowaveRecipeType struct {
	Default       bool
	Machine       EntityID
	Verb          string
	FilterSummary string
}

type MicrowaveRecipeTypes = OrderedMap[string, MicrowaveRecipeType]

type SpecialCommon struct {
	Color         string
	Hint          string
	FilterName    string
	FilterSummary string
}

// SpecialDiet highlights foods a particular stomach can digest.
type SpecialDiet struct {
	SpecialCommon
	// Organ must have a Stomach component that filters by tag or component.
	Organ            EntityID
	ExcludeFoodsWith []ReagentID // Impstation
}

// SpecialReagent highlights foods containing a reagent.
type SpecialReagent struct {
	SpecialCommon
	ID ReagentID
}

// ForkConfig is one entry of the fork list.
type ForkConfig struct {
	ID          string
	Name        string
	Description string
	Hidden      bool
	Default     bool
	Repo        string
	Commit      string
	// PrototypesPath points at the JSON prototype dump.
	PrototypesPath string
	// LocalePath points at a JSON object of locale key to message. Optional.
	LocalePath string
	// MixFillState is the sprite state drawn for a filled mix vessel. Optional.
	MixFillState string

	SpecialDiets         []SpecialDiet
	SpecialReagents      []SpecialReagent
	MethodEntities       *MethodEntities
	MicrowaveRecipeTypes *MicrowaveRecipeTypes // nil unless Frontier
	SortingIDRewrites    map[string]string
	Filter               FilterParams
}

// LoadForkList reads the fork list file: a JSON object of fork ID to config.
func LoadForkList(path string) ([]*ForkConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseForkList(string(raw))
}

func parseForkList(src string) ([]*ForkConfig, error) {
	if !gjson.Valid(src) {
		return nil, fmt.Errorf("fork list is not valid JSON")
	}
	root := gjson.Parse(src)
	if !root.IsObject() {
		return nil, fmt.Errorf("fork list must be an object")
	}
	var forks []*ForkConfig
	var err error
	root.ForEach(func(k, v gjson.Result) bool {
		var fork *ForkConfig
		fork, err = parseForkConfig(k.String(), v)
		if err != nil {
			return false
		}
		if fork.PrototypesPath == "" {
			err = fmt.Errorf("fork %s: missing prototypes path", fork.ID)
			return false
		}
		forks = append(forks, fork)
		return true
	})
	if err != nil {
		return nil, err
	}
	return forks, nil
}

func parseForkConfig(id string, v gjson.Result) (*ForkConfig, error) {
	fork := &ForkConfig{
		ID:             id,
		Name:           v.Get("name").String(),
		Description:    v.Get("description").String(),
		Hidden:         v.Get("hidden").Bool(),
		Default:        v.Get("default").Bool(),
		Repo:           v.Get("repo").String(),
		Commit:         v.Get("commit").String(),
		PrototypesPath: v.Get("prototypes").String(),
		LocalePath:     v.Get("locale").String(),
		MixFillState:   v.Get("mixFillState").String(),
	}

	methods := v.Get("methodEntities")
	if !methods.IsObject() {
		return nil, fmt.Errorf("fork %s: methodEntities must be an object", id)
	}
	fork.MethodEntities = NewOrderedMap[CookingMethod, *EntityID]()
	methods.ForEach(func(k, m gjson.Result) bool {
		if m.Type == gjson.Null {
			fork.MethodEntities.Set(CookingMethod(k.String()), nil)
			return true
		}
		ent := EntityID(m.String())
		fork.MethodEntities.Set(CookingMethod(k.String()), &ent)
		return true
	})

	if types := v.Get("microwaveRecipeTypes"); types.IsObject() {
		fork.MicrowaveRecipeTypes = NewOrderedMap[string, MicrowaveRecipeType]()
		types.ForEach(func(k, t gjson.Result) bool {
			fork.MicrowaveRecipeTypes.Set(k.String(), MicrowaveRecipeType{
				Default:       t.Get("default").Bool(),
				Machine:       EntityID(t.Get("machine").String()),
				Verb:          t.Get("verb").String(),
				FilterSummary: t.Get("filterSummary").String(),
			})
			return true
		})
	}

	v.Get("specialDiets").ForEach(func(_, d gjson.Result) bool {
		fork.SpecialDiets = append(fork.SpecialDiets, SpecialDiet{
			SpecialCommon:    parseSpecialCommon(d),
			Organ:            EntityID(d.Get("organ").String()),
			ExcludeFoodsWith: readIDs[ReagentID](d.Get("excludeFoodsWith")),
		})
		return true
	})
	v.Get("specialReagents").ForEach(func(_, r gjson.Result) bool {
		fork.SpecialReagents = append(fork.SpecialReagents, SpecialReagent{
			SpecialCommon: parseSpecialCommon(r),
			ID:            ReagentID(r.Get("id").String()),
		})
		return true
	})

	if rw := v.Get("sortingIdRewrites"); rw.IsObject() {
		fork.SortingIDRewrites = make(map[string]string)
		rw.ForEach(func(k, val gjson.Result) bool {
			fork.SortingIDRewrites[k.String()] = val.String()
			return true
		})
	}

	fork.Filter = FilterParams{
		IgnoredRecipes:              newSet(readIDs[MicrowaveRecipeID](v.Get("ignoredRecipes"))...),
		IgnoredSpecialRecipes:       newSet(readIDs[string](v.Get("ignoredSpecialRecipes"))...),
		IgnoredFoodSequenceElements: newSet(readIDs[EntityID](v.Get("ignoredFoodSequenceElements"))...),
		IgnoreSourcesOf:             newSet(readIDs[ReagentID](v.Get("ignoreSourcesOf"))...),
		ForceIncludeReagentSources:  NewOrderedMap[ReagentID, []EntityID](),
	}
	v.Get("forceIncludeReagentSources").ForEach(func(k, ids gjson.Result) bool {
		fork.Filter.ForceIncludeReagentSources.Set(ReagentID(k.String()), readIDs[EntityID](ids))
		return true
	})

	return fork, nil
}

func parseSpecialCommon(v gjson.Result) SpecialCommon {
	return SpecialCommon{
		Color:         v.Get("color").String(),
		Hint:          v.Get("hint").String(),
		FilterName:    v.Get("filterName").String(),
		FilterSummary: v.Get("filterSummary").String(),
	}
}

// readIDs reads a string or array of strings. A missing value yields nil.
func readIDs[T ~string](v gjson.Result) []T {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if !v.IsArray() {
		return []T{T(v.String())}
	}
	arr := v.Array()
	out := make([]T, len(arr))
	for i, item := range arr {
		out[i] = T(item.String())
	}
	return out
}

// ── Blob store configuration ────────────────────────────────────────

// Environment variables:
//
//	COOKBOOK_BLOB_DRIVER=fs|s3|memory (default fs)
//	COOKBOOK_BLOB_FS_ROOT=<dir> (default public)
//	COOKBOOK_BLOB_S3_BUCKET=<bucket> (required for s3)
//	COOKBOOK_BLOB_S3_REGION=<region> (default us-east-1)
//	COOKBOOK_BLOB_S3_ENDPOINT=<url> (optional, e.g. MinIO)
//	COOKBOOK_BLOB_S3_PATH_STYLE=true|false (default false)
type StoreConfig struct {
	Driver     StoreDriver
	FSRoot     string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	PathStyle  bool
}

// StoreConfigFromEnv reads StoreConfig from the environment.
func StoreConfigFromEnv() StoreConfig {
	cfg := StoreConfig{
		Driver:     StoreDriver(os.Getenv("COOKBOOK_BLOB_DRIVER")),
		FSRoot:     os.Getenv("COOKBOOK_BLOB_FS_ROOT"),
		S3Bucket:   os.Getenv("COOKBOOK_BLOB_S3_BUCKET"),
		S3Region:   os.Getenv("COOKBOOK_BLOB_S3_REGION"),
		S3Endpoint: os.Getenv("COOKBOOK_BLOB_S3_ENDPOINT"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverFilesystem
	}
	if cfg.FSRoot == "" {
		cfg.FSRoot = "public"
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	if ps, err := strconv.ParseBool(os.Getenv("COOKBOOK_BLOB_S3_PATH_STYLE")); err == nil {
		cfg.PathStyle = ps
	}
	return cfg
}
