package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// ErrNoSpriteLayers is returned for an entity that has nothing to render.
var ErrNoSpriteLayers = errors.New("no layers to render")

// SpriteLayerRef is one drawable layer: an RSI path, a state within it, and
// a tint. The front-end composes the layers in order.
type SpriteLayerRef struct {
	Path  string `json:"path"`
	State string `json:"state"`
	Color string `json:"color,omitempty"`
}

// SpriteManifest is the deduplicated list of sprites. Entities with the same
// layers share one entry.
type SpriteManifest struct {
	Sprites [][]SpriteLayerRef
	byKey   map[string]int
}

func newSpriteManifest() *SpriteManifest {
	return &SpriteManifest{byKey: make(map[string]int)}
}

// add returns the index of the sprite, adding it if it is new. Sprites are
// keyed by their serialized layers, so equal content always collides.
func (m *SpriteManifest) add(layers []SpriteLayerRef) int {
	key, _ := json.Marshal(layers)
	if i, ok := m.byKey[string(key)]; ok {
		return i
	}
	i := len(m.Sprites)
	m.Sprites = append(m.Sprites, layers)
	m.byKey[string(key)] = i
	return i
}

func (m *SpriteManifest) Len() int { return len(m.Sprites) }

// SpriteData maps everything that is drawn to its manifest index.
type SpriteData struct {
	Manifest *SpriteManifest
	Entities *OrderedMap[EntityID, int]
	Methods  *OrderedMap[CookingMethod, int]
	// BeakerFill is the mix vessel's fill layer, or nil.
	BeakerFill *int
	// MicrowaveRecipeTypes is nil unless the fork has recipe types. Frontier.
	MicrowaveRecipeTypes *OrderedMap[string, int]
}

// BuildSprites collects the sprite of every pruned entity, method entity and
// microwave recipe type machine.
func BuildSprites(resolved *ResolvedGameData, mixFillState string, logger *log.Logger) (*SpriteData, error) {
	data := &SpriteData{
		Manifest: newSpriteManifest(),
		Entities: NewOrderedMap[EntityID, int](),
		Methods:  NewOrderedMap[CookingMethod, int](),
	}
	byEntity := make(map[EntityID]int)
	collect := func(ent *ResolvedEntity) (int, error) {
		if i, ok := byEntity[ent.ID]; ok {
			return i, nil
		}
		layers, err := entitySpriteLayers(ent, logger)
		if err != nil {
			return 0, err
		}
		i := data.Manifest.add(layers)
		byEntity[ent.ID] = i
		return i, nil
	}

	for ent := range resolved.Entities.Values() {
		i, err := collect(ent)
		if err != nil {
			return nil, err
		}
		data.Entities.Set(ent.ID, i)
	}
	for method, ent := range resolved.MethodEntities.All() {
		i, err := collect(ent)
		if err != nil {
			return nil, err
		}
		data.Methods.Set(method, i)
	}
	if resolved.MicrowaveRecipeTypeEntities != nil {
		data.MicrowaveRecipeTypes = NewOrderedMap[string, int]()
		for subtype, ent := range resolved.MicrowaveRecipeTypeEntities.All() {
			i, err := collect(ent)
			if err != nil {
				return nil, err
			}
			data.MicrowaveRecipeTypes.Set(subtype, i)
		}
	}

	// The beaker fill uses the mix vessel's RSI with a different state.
	if beaker, ok := resolved.MethodEntities.Get(MethodMix); ok && mixFillState != "" {
		vessel := data.Manifest.Sprites[byEntity[beaker.ID]]
		fill := data.Manifest.add([]SpriteLayerRef{{Path: vessel[0].Path, State: mixFillState}})
		data.BeakerFill = &fill
	}
	return data, nil
}

// entitySpriteLayers returns the layers to draw for the entity: the sprite's
// own state if it has one, followed by every visible layer with a state.
// A layer without a state is assigned one at runtime and can't be drawn.
func entitySpriteLayers(ent *ResolvedEntity, logger *log.Logger) ([]SpriteLayerRef, error) {
	sprite := ent.Sprite
	basePath := deref(sprite.Path)
	baseColor := deref(sprite.Color)

	var layers []SpriteLayerRef
	if basePath != "" && deref(sprite.State) != "" {
		layers = append(layers, SpriteLayerRef{Path: basePath, State: *sprite.State, Color: baseColor})
	}

	for i, layer := range sprite.Layers {
		state := deref(layer.State)
		if !layer.Visible || state == "" {
			continue
		}
		path := deref(layer.Path)
		if path == "" {
			path = basePath
		}
		if path == "" {
			logger.Printf("warning: entity '%s': sprite layer %d has no RSI path", ent.ID, i)
			continue
		}
		color := deref(layer.Color)
		if color == "" {
			color = baseColor
		}
		layers = append(layers, SpriteLayerRef{Path: path, State: state, Color: color})
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("entity '%s': %w", ent.ID, ErrNoSpriteLayers)
	}
	return layers, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
