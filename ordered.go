package main

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// OrderedMap is a map that remembers insertion order. Prototype tables and
// closure sets are scanned repeatedly, and every scan must see the same order
// so that output is reproducible between builds.
type OrderedMap[K comparable, V any] struct {
	keys []K
	m    map[K]V
}

// NewOrderedMap returns an empty map.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{m: make(map[K]V)}
}

// Set inserts or replaces the value at key. Replacing keeps the original position.
func (o *OrderedMap[K, V]) Set(key K, value V) {
	if _, ok := o.m[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.m[key] = value
}

// Get and Has treat a nil map as empty.
func (o *OrderedMap[K, V]) Get(key K) (V, bool) {
	if o == nil {
		var zero V
		return zero, false
	}
	v, ok := o.m[key]
	return v, ok
}

func (o *OrderedMap[K, V]) Has(key K) bool {
	if o == nil {
		return false
	}
	_, ok := o.m[key]
	return ok
}

func (o *OrderedMap[K, V]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (o *OrderedMap[K, V]) Keys() []K {
	if o == nil {
		return nil
	}
	return o.keys
}

// All iterates over key/value pairs in insertion order.
func (o *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.m[k]) {
				return
			}
		}
	}
}

// Values iterates over values in insertion order.
func (o *OrderedMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(o.m[k]) {
				return
			}
		}
	}
}

// appendAt appends value to the list stored at key, creating it if needed.
func appendAt[K comparable, V any](o *OrderedMap[K, []V], key K, value V) {
	values, _ := o.Get(key)
	o.Set(key, append(values, value))
}

// orderedSet is an insertion-ordered set. It only ever grows.
type orderedSet[T comparable] struct {
	items []T
	index map[T]struct{}
}

func newOrderedSet[T comparable]() *orderedSet[T] {
	return &orderedSet[T]{index: make(map[T]struct{})}
}

// Add inserts item and reports whether it was not already present.
func (s *orderedSet[T]) Add(item T) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

func (s *orderedSet[T]) Has(item T) bool {
	_, ok := s.index[item]
	return ok
}

func (s *orderedSet[T]) Len() int { return len(s.items) }

// Items returns the members in insertion order. The slice must not be modified.
func (s *orderedSet[T]) Items() []T { return s.items }

// Set is an unordered, read-only membership set used on resolved records.
type Set[T comparable] map[T]struct{}

func newSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func (s Set[T]) Has(item T) bool {
	_, ok := s[item]
	return ok
}

// sortedKeys returns the map's keys in ascending order.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
