package main

// reagentResult returns the reaction's only product, if it has exactly one.
func reagentResult(r *ReactionPrototype) (ReagentID, float64, bool) {
	if r.Products.Len() != 1 {
		return "", 0, false
	}
	for id, amount := range r.Products.All() {
		return id, amount, true
	}
	return "", 0, false
}

// solidResult returns the entity spawned by the reaction, if it spawns
// exactly one kind of entity.
func solidResult(r *ReactionPrototype) (EntityID, bool) {
	var result EntityID
	found := 0
	for _, effect := range r.Effects {
		switch effect.Kind {
		case EffectCreateEntity, EffectSpawnEntity:
			if effect.Entity == "" {
				continue
			}
			result = effect.Entity
			found++
		case EffectOther:
		}
	}
	if found != 1 {
		return "", false
	}
	return result, true
}

// hasSupportedMixerCategory reports whether the reaction can happen in a
// mixer we show as a step. Reactions without categories happen anywhere.
func hasSupportedMixerCategory(r *ReactionPrototype) bool {
	if len(r.RequiredMixerCategories) == 0 {
		return true
	}
	for _, c := range r.RequiredMixerCategories {
		if _, ok := mixerCategoryStep(c); ok {
			return true
		}
	}
	return false
}

func isFoodRelatedReagent(r *ReagentPrototype) bool {
	return r != nil && (r.Group == "Foods" || r.Group == "Drinks")
}
