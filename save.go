package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/pretty"
)

const (
	forkIndexKey    = "data/index.json"
	jsonContentType = "application/json"
)

func gameDataKey(forkID, hash string) string {
	return fmt.Sprintf("data/data_%s.%s.json", forkID, hash)
}

// ProcessedGameData is everything needed to write one fork's data file.
type ProcessedGameData struct {
	Fork     *ForkConfig
	Resolved *ResolvedGameData

	FoodSequenceStartPoints *OrderedMap[TagID, []EntityID]
	FoodSequenceElements    *OrderedMap[TagID, []EntityID]
	FoodSequenceEndPoints   *OrderedMap[TagID, []EntityID]

	Specials          []*Special
	Sprites           *SpriteData
	SortingIDRewrites map[string]string
}

// ── Output format ───────────────────────────────────────────────────

type GameData struct {
	Entities    []entityOut  `json:"entities"`
	Reagents    []reagentOut `json:"reagents"`
	Ingredients []EntityID   `json:"ingredients"`
	Recipes     []recipeOut  `json:"recipes"`

	FoodSequenceStartPoints map[TagID][]EntityID `json:"foodSequenceStartPoints"`
	FoodSequenceElements    map[TagID][]EntityID `json:"foodSequenceElements"`
	FoodSequenceEndPoints   map[TagID][]EntityID `json:"foodSequenceEndPoints"`

	MethodSprites        map[CookingMethod]int             `json:"methodSprites"`
	BeakerFill           *int                              `json:"beakerFill"`
	MicrowaveRecipeTypes map[string]microwaveRecipeTypeOut `json:"microwaveRecipeTypes"`
	Sprites              [][]SpriteLayerRef                `json:"sprites"`
	SortingIDRewrites    map[string]string                 `json:"sortingIdRewrites"`
	SpecialTraits        []specialTraitOut                 `json:"specialTraits"`
}

type seqStartOut struct {
	Key      TagID `json:"key"`
	MaxCount int   `json:"maxCount"`
}

type entityOut struct {
	ID       EntityID     `json:"id"`
	Name     string       `json:"name"`
	Sprite   int          `json:"sprite"`
	Traits   uint32       `json:"traits"`
	SeqStart *seqStartOut `json:"seqStart,omitempty"`
	SeqElem  []TagID      `json:"seqElem,omitempty"`
	SeqEnd   []TagID      `json:"seqEnd,omitempty"`
}

type reagentOut struct {
	ID      ReagentID  `json:"id"`
	Name    string     `json:"name"`
	Color   string     `json:"color"`
	Sources []EntityID `json:"sources"`
}

// recipeOut is a recipe with its ID as the first field.
type recipeOut struct {
	ID     string
	Recipe *Recipe
}

func (r recipeOut) MarshalJSON() ([]byte, error) {
	body, err := r.Recipe.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", r.ID, err)
	}
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	buf.Write(id)
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	return buf.Bytes(), nil
}

type microwaveRecipeTypeOut struct {
	Sprite        int    `json:"sprite"`
	Verb          string `json:"verb"`
	FilterSummary string `json:"filterSummary"`
}

type specialTraitOut struct {
	Mask          uint32 `json:"mask"`
	Hint          string `json:"hint"`
	Color         string `json:"color"`
	FilterName    string `json:"filterName"`
	FilterSummary string `json:"filterSummary"`
}

// ForkIndexEntry is one row of the fork index.
type ForkIndexEntry struct {
	ID          string   `json:"id"`
	Hash        string   `json:"hash"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Default     bool     `json:"default"`
	Hidden      bool     `json:"hidden,omitempty"`
	Meta        ForkMeta `json:"meta"`
}

type ForkMeta struct {
	Commit string `json:"commit"`
	Repo   string `json:"repo"`
	// Date is the build time in Unix milliseconds.
	Date int64 `json:"date"`
}

// NewGameData assembles the data file contents.
func NewGameData(d *ProcessedGameData) *GameData {
	gd := &GameData{
		Entities:                []entityOut{},
		Reagents:                []reagentOut{},
		Ingredients:             []EntityID{},
		Recipes:                 []recipeOut{},
		FoodSequenceStartPoints: toMap(d.FoodSequenceStartPoints),
		FoodSequenceElements:    toMap(d.FoodSequenceElements),
		FoodSequenceEndPoints:   toMap(d.FoodSequenceEndPoints),
		MethodSprites:           toMap(d.Sprites.Methods),
		BeakerFill:              d.Sprites.BeakerFill,
		Sprites:                 d.Sprites.Manifest.Sprites,
		SortingIDRewrites:       d.SortingIDRewrites,
		SpecialTraits:           []specialTraitOut{},
	}
	if gd.SortingIDRewrites == nil {
		gd.SortingIDRewrites = map[string]string{}
	}

	res := d.Resolved
	for id, ent := range res.Entities.All() {
		sprite, _ := d.Sprites.Entities.Get(id)
		out := entityOut{
			ID:     id,
			Name:   ent.Name,
			Sprite: sprite,
			Traits: specialsMask(ent, d.Specials),
		}
		if start := ent.FoodSequenceStart; start != nil && start.Key != "" {
			out.SeqStart = &seqStartOut{Key: start.Key, MaxCount: start.MaxLayers}
		}
		// An element is only shown as such if its sequence can be started.
		for _, key := range sortedKeys(ent.FoodSequenceElement) {
			if !d.FoodSequenceStartPoints.Has(key) {
				continue
			}
			if ent.FoodSequenceElement[key].Final {
				out.SeqEnd = append(out.SeqEnd, key)
			} else {
				out.SeqElem = append(out.SeqElem, key)
			}
		}
		gd.Entities = append(gd.Entities, out)
	}

	for id, reagent := range res.Reagents.All() {
		sources, _ := res.ReagentSources.Get(id)
		if sources == nil {
			sources = []EntityID{}
		}
		gd.Reagents = append(gd.Reagents, reagentOut{
			ID:      id,
			Name:    reagent.Name,
			Color:   reagent.Color,
			Sources: sources,
		})
	}

	ingredients := newOrderedSet[EntityID]()
	for id, recipe := range res.Recipes.All() {
		gd.Recipes = append(gd.Recipes, recipeOut{ID: id, Recipe: recipe})
		for _, solid := range sortedKeys(recipe.Solids) {
			ingredients.Add(solid)
		}
	}
	gd.Ingredients = append(gd.Ingredients, ingredients.Items()...)

	if types := d.Fork.MicrowaveRecipeTypes; types != nil && d.Sprites.MicrowaveRecipeTypes != nil {
		gd.MicrowaveRecipeTypes = make(map[string]microwaveRecipeTypeOut)
		for subtype, sprite := range d.Sprites.MicrowaveRecipeTypes.All() {
			def, _ := types.Get(subtype)
			gd.MicrowaveRecipeTypes[subtype] = microwaveRecipeTypeOut{
				Sprite:        sprite,
				Verb:          def.Verb,
				FilterSummary: def.FilterSummary,
			}
		}
	}

	for _, s := range d.Specials {
		gd.SpecialTraits = append(gd.SpecialTraits, specialTraitOut{
			Mask:          s.Mask,
			Hint:          s.Hint,
			Color:         s.Color,
			FilterName:    s.FilterName,
			FilterSummary: s.FilterSummary,
		})
	}
	return gd
}

func toMap[K comparable, V any](o *OrderedMap[K, V]) map[K]V {
	m := make(map[K]V, o.Len())
	for k, v := range o.All() {
		m[k] = v
	}
	return m
}

// ── Writer ──────────────────────────────────────────────────────────

// DataWriter writes data files and the fork index to a blob store.
type DataWriter struct {
	store  BlobStore
	logger *log.Logger
	// Pretty indents the written JSON. The hash is always of the compact form.
	Pretty bool
	// Brotli also writes a compressed copy next to each data file.
	Brotli bool
	now    func() time.Time
}

func NewDataWriter(store BlobStore, logger *log.Logger) *DataWriter {
	return &DataWriter{store: store, logger: logger, now: time.Now}
}

// contentHash is the xxhash64 of data, in hex.
func contentHash(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// WriteFork writes the fork's data file and returns its index entry.
func (w *DataWriter) WriteFork(ctx context.Context, d *ProcessedGameData) (ForkIndexEntry, error) {
	data, err := json.Marshal(NewGameData(d))
	if err != nil {
		return ForkIndexEntry{}, fmt.Errorf("encode %s: %w", d.Fork.ID, err)
	}
	hash := contentHash(data)
	key := gameDataKey(d.Fork.ID, hash)

	if err := w.put(ctx, key, data); err != nil {
		return ForkIndexEntry{}, err
	}
	if w.Brotli {
		compressed, err := compressBrotli(data)
		if err != nil {
			return ForkIndexEntry{}, fmt.Errorf("compress %s: %w", key, err)
		}
		if err := w.store.Put(ctx, key+".br", compressed, jsonContentType); err != nil {
			return ForkIndexEntry{}, fmt.Errorf("write %s.br: %w", key, err)
		}
	}
	if Verbose {
		w.logger.Printf("wrote %s (%d bytes)", key, len(data))
	}

	return ForkIndexEntry{
		ID:          d.Fork.ID,
		Hash:        hash,
		Name:        d.Fork.Name,
		Description: d.Fork.Description,
		Default:     d.Fork.Default,
		Hidden:      d.Fork.Hidden,
		Meta: ForkMeta{
			Commit: d.Fork.Commit,
			Repo:   d.Fork.Repo,
			Date:   w.now().UnixMilli(),
		},
	}, nil
}

// WriteIndex replaces the fork index.
func (w *DataWriter) WriteIndex(ctx context.Context, entries []ForkIndexEntry) error {
	if entries == nil {
		entries = []ForkIndexEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode fork index: %w", err)
	}
	return w.put(ctx, forkIndexKey, data)
}

func (w *DataWriter) put(ctx context.Context, key string, data []byte) error {
	if w.Pretty {
		data = pretty.Pretty(data)
	}
	if err := w.store.Put(ctx, key, data, jsonContentType); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func compressBrotli(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := bw.Write(data); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// printJSON writes v to stdout, indented with pretty.
func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(pretty.Pretty(data))
	return err
}
