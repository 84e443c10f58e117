package main

import (
	"fmt"
	"os"

	"github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
)

// Localizer looks up display strings by locale key.
type Localizer interface {
	Message(key string) (string, bool)
}

// LocaleTable is a flat key to message table. Message patterns are taken
// as-is; placeables are not evaluated.
//
// Keys are looked up lazily in the source document and memoized, misses
// included. A table is immutable apart from its memo, so forks that share a
// locale file can share the table.
type LocaleTable struct {
	src     string
	size    int
	lookups *cache.Cache
}

func newLocaleTable(src string, size int) *LocaleTable {
	return &LocaleTable{src: src, size: size, lookups: cache.New(cache.NoExpiration, 0)}
}

// LoadLocaleTable reads a JSON object of key to message. An empty path
// yields an empty table, so every lookup falls back to its ID.
func LoadLocaleTable(path string) (*LocaleTable, error) {
	if path == "" {
		return newLocaleTable("", 0), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", path, err)
	}
	return ParseLocaleTable(string(raw))
}

// ParseLocaleTable checks that src is a JSON object of key to message.
// Non-string values are ignored; for a repeated key the first one wins.
func ParseLocaleTable(src string) (*LocaleTable, error) {
	if src == "" {
		return newLocaleTable("", 0), nil
	}
	if !gjson.Valid(src) {
		return nil, fmt.Errorf("locale table is not valid JSON")
	}
	root := gjson.Parse(src)
	if !root.IsObject() {
		return nil, fmt.Errorf("locale table must be an object")
	}
	size := 0
	root.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			size++
		}
		return true
	})
	return newLocaleTable(src, size), nil
}

type localeEntry struct {
	msg string
	ok  bool
}

func (t *LocaleTable) Message(key string) (string, bool) {
	if t.src == "" {
		return "", false
	}
	if v, found := t.lookups.Get(key); found {
		e := v.(localeEntry)
		return e.msg, e.ok
	}
	var e localeEntry
	if v := gjson.Get(t.src, gjson.Escape(key)); v.Type == gjson.String && v.Str != "" {
		e = localeEntry{v.Str, true}
	}
	t.lookups.Set(key, e, cache.NoExpiration)
	return e.msg, e.ok
}

// Len is the number of string messages in the table.
func (t *LocaleTable) Len() int { return t.size }

// localeLoader hands out one table per locale path.
type localeLoader struct {
	tables *cache.Cache
}

func newLocaleLoader() *localeLoader {
	return &localeLoader{tables: cache.New(cache.NoExpiration, 0)}
}

// Load returns the table for path, reading it on first use. Failed reads
// are not remembered.
func (l *localeLoader) Load(path string) (*LocaleTable, error) {
	if v, found := l.tables.Get(path); found {
		return v.(*LocaleTable), nil
	}
	t, err := LoadLocaleTable(path)
	if err != nil {
		return nil, err
	}
	l.tables.Set(path, t, cache.NoExpiration)
	return t, nil
}

// localizedName returns the message for key, or fallback if there is none.
func localizedName(l Localizer, key, fallback string) string {
	if msg, ok := l.Message(key); ok {
		return msg
	}
	return fallback
}
