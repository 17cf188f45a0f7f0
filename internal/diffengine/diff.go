// Package diffengine compares two configuration revision snapshots and
// produces an ordered, deterministic list of change records. It is pure and
// stateless; callers may invoke it from any number of goroutines.
package diffengine

import (
	"errors"
	"reflect"
	"sort"

	"github.com/clusterscope/evidence-core/internal/models"
)

// ErrNotATree is returned when a diff root is not a key-value tree (for
// example a bare scalar or a list at the top level).
var ErrNotATree = errors.New("diff root is not a configuration tree")

// Diff walks new's keys in lexicographic order, recursing into nested trees,
// then walks old's keys for removals. Added and Changed records (depth-first,
// lexicographic) precede all Removed records. Lists are compared by whole
// value; an unequal list yields a single Changed record for its path.
// Element-level list diffing is intentionally not performed.
func Diff(oldTree, newTree models.ConfigTree) []models.ChangeRecord {
	var updates, removals []models.ChangeRecord
	walk(oldTree, newTree, "", &updates, &removals)
	out := make([]models.ChangeRecord, 0, len(updates)+len(removals))
	out = append(out, updates...)
	out = append(out, removals...)
	return out
}

// DiffValues is Diff over untyped roots, as decoded from YAML or JSON.
// Both roots must be key-value trees.
func DiffValues(oldRoot, newRoot interface{}) ([]models.ChangeRecord, error) {
	oldTree, ok := asTree(oldRoot)
	if !ok {
		return nil, ErrNotATree
	}
	newTree, ok := asTree(newRoot)
	if !ok {
		return nil, ErrNotATree
	}
	return Diff(oldTree, newTree), nil
}

func walk(oldTree, newTree models.ConfigTree, prefix string, updates, removals *[]models.ChangeRecord) {
	for _, key := range sortedKeys(newTree) {
		path := joinPath(prefix, key)
		newVal := newTree[key]
		oldVal, present := oldTree[key]
		if !present {
			*updates = append(*updates, models.ChangeRecord{
				Path:     path,
				Kind:     models.ChangeAdded,
				NewValue: newVal,
			})
			continue
		}

		oldSub, oldIsTree := asTree(oldVal)
		newSub, newIsTree := asTree(newVal)
		switch {
		case oldIsTree && newIsTree:
			walk(oldSub, newSub, path, updates, removals)
		case oldIsTree != newIsTree:
			// Scalar on one side, tree on the other: a single Changed
			// record, no structural comparison across the mismatch.
			*updates = append(*updates, models.ChangeRecord{
				Path:     path,
				Kind:     models.ChangeChanged,
				OldValue: oldVal,
				NewValue: newVal,
			})
		default:
			if !reflect.DeepEqual(oldVal, newVal) {
				*updates = append(*updates, models.ChangeRecord{
					Path:     path,
					Kind:     models.ChangeChanged,
					OldValue: oldVal,
					NewValue: newVal,
				})
			}
		}
	}

	for _, key := range sortedKeys(oldTree) {
		if _, present := newTree[key]; !present {
			*removals = append(*removals, models.ChangeRecord{
				Path:     joinPath(prefix, key),
				Kind:     models.ChangeRemoved,
				OldValue: oldTree[key],
			})
		}
	}
}

// asTree reports whether v is a key-value tree, normalizing the map shapes
// produced by the YAML and JSON decoders.
func asTree(v interface{}) (models.ConfigTree, bool) {
	switch t := v.(type) {
	case models.ConfigTree:
		return t, true
	case map[string]interface{}:
		return models.ConfigTree(t), true
	default:
		return nil, false
	}
}

func sortedKeys(t models.ConfigTree) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
