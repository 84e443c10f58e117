package main

import (
	"log"
	"strings"

	"github.com/agnivade/levenshtein"
)

// entityAndAncestors returns the entity's ancestors depth-first followed by
// the entity itself, so that later entries override earlier ones.
//
// The game processes parents from right to left: the leftmost parent takes
// precedence over the rightmost, so it is visited last.
//
// An ancestor reachable along two paths appears twice. A parent already on
// the current path is a cycle; that edge is skipped with a warning.
func entityAndAncestors(
	entity *EntityPrototype,
	all *OrderedMap[EntityID, *EntityPrototype],
	logger *log.Logger,
) []*EntityPrototype {
	var chain []*EntityPrototype
	onPath := newSet[EntityID]()
	var walk func(ent *EntityPrototype)
	walk = func(ent *EntityPrototype) {
		onPath[ent.ID] = struct{}{}
		for i := len(ent.Parents) - 1; i >= 0; i-- {
			parentID := ent.Parents[i]
			parent, ok := all.Get(parentID)
			if !ok {
				logger.Printf("warning: entity '%s' has unknown parent '%s'%s",
					ent.ID, parentID, didYouMean(string(parentID), all.Keys()))
				continue
			}
			if onPath.Has(parentID) {
				logger.Printf("warning: entity '%s' has a parent cycle through '%s'", ent.ID, parentID)
				continue
			}
			walk(parent)
		}
		delete(onPath, ent.ID)
		chain = append(chain, ent)
	}
	walk(entity)
	return chain
}

// didYouMean returns a hint naming the closest known ID, or "" if nothing is close.
func didYouMean[T ~string](unknown string, known []T) string {
	if len(unknown) < 3 {
		return ""
	}
	best := ""
	bestDist := levenshteinLimit(len(unknown)) + 1
	lower := strings.ToLower(unknown)
	for _, k := range known {
		cand := string(k)
		dist := levenshtein.ComputeDistance(lower, strings.ToLower(cand))
		if dist < bestDist || dist == bestDist && best != "" && cand < best {
			best, bestDist = cand, dist
		}
	}
	if best == "" {
		return ""
	}
	return " (did you mean '" + best + "'?)"
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
