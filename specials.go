package main

import "fmt"

// MaxSpecialCount bounds the number of specials, which are stored as bits
// of a trait mask. The front-end reads the mask as a signed 32-bit integer.
const MaxSpecialCount = 31

// Special is a special diet or reagent, resolved to a trait bit.
type Special struct {
	Mask          uint32
	Hint          string
	Color         string
	FilterName    string
	FilterSummary string

	matches func(*ResolvedEntity) bool
}

// Matches reports whether the entity has the special's trait.
func (s *Special) Matches(ent *ResolvedEntity) bool { return s.matches(ent) }

// ResolveSpecials assigns a trait bit to every special diet, then every
// special reagent, in order.
func ResolveSpecials(
	entities *OrderedMap[EntityID, *ResolvedEntity],
	diets []SpecialDiet,
	reagents []SpecialReagent,
) ([]*Special, error) {
	total := len(diets) + len(reagents)
	if total >= MaxSpecialCount {
		return nil, fmt.Errorf("can't have more than %d special diets and special reagents in total; got %d",
			MaxSpecialCount-1, total)
	}

	result := make([]*Special, 0, total)
	next := func(c SpecialCommon, matches func(*ResolvedEntity) bool) *Special {
		return &Special{
			Mask:          1 << len(result),
			Hint:          c.Hint,
			Color:         c.Color,
			FilterName:    c.FilterName,
			FilterSummary: c.FilterSummary,
			matches:       matches,
		}
	}

	for _, diet := range diets {
		organ, ok := entities.Get(diet.Organ)
		if !ok {
			return nil, fmt.Errorf("special diet: %w: %s", ErrUnresolvedEntity, diet.Organ)
		}
		if organ.Stomach == nil || len(organ.Stomach.Tags) == 0 && len(organ.Stomach.Components) == 0 {
			return nil, fmt.Errorf("organ %s has no tags or components to filter by", diet.Organ)
		}
		tags := organ.Stomach.Tags
		comps := organ.Stomach.Components
		exclude := newSet(diet.ExcludeFoodsWith...)

		result = append(result, next(diet.SpecialCommon, func(ent *ResolvedEntity) bool {
			digestible := false
			for _, t := range tags {
				if ent.Tags.Has(t) {
					digestible = true
					break
				}
			}
			if !digestible {
				for _, c := range comps {
					if ent.Components.Has(c) {
						digestible = true
						break
					}
				}
			}
			if !digestible {
				return false
			}
			for r := range exclude {
				if ent.Reagents.Has(r) {
					return false
				}
			}
			return true
		}))
	}

	for _, reagent := range reagents {
		id := reagent.ID
		result = append(result, next(reagent.SpecialCommon, func(ent *ResolvedEntity) bool {
			return ent.Reagents.Has(id)
		}))
	}
	return result, nil
}

// specialsMask returns the union of the masks of every special the entity has.
func specialsMask(ent *ResolvedEntity, specials []*Special) uint32 {
	var mask uint32
	for _, s := range specials {
		if s.Matches(ent) {
			mask |= s.Mask
		}
	}
	return mask
}
