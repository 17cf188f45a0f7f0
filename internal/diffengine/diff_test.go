package diffengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusterscope/evidence-core/internal/models"
)

func TestDiff_Identity(t *testing.T) {
	trees := []models.ConfigTree{
		{},
		{"replicas": 2},
		{
			"replicas": 2,
			"resources": map[string]interface{}{
				"limits": map[string]interface{}{"memory": "128Mi", "cpu": "500m"},
			},
			"args": []interface{}{"--verbose", "--port=8080"},
		},
		{"a": map[string]interface{}{"b": map[string]interface{}{"c": map[string]interface{}{"d": 1}}}},
	}

	for _, tree := range trees {
		assert.Empty(t, Diff(tree, tree))
	}
}

func TestDiff_ReleaseUpgradeExample(t *testing.T) {
	oldTree := models.ConfigTree{
		"replicas": 2,
		"resources": map[string]interface{}{
			"limits": map[string]interface{}{"memory": "128Mi"},
		},
	}
	newTree := models.ConfigTree{
		"replicas": 3,
		"resources": map[string]interface{}{
			"limits": map[string]interface{}{"memory": "256Mi"},
		},
		"image": "v2",
	}

	changes := Diff(oldTree, newTree)
	require.Len(t, changes, 3)

	assert.Equal(t, models.ChangeRecord{Path: "image", Kind: models.ChangeAdded, NewValue: "v2"}, changes[0])
	assert.Equal(t, models.ChangeRecord{Path: "replicas", Kind: models.ChangeChanged, OldValue: 2, NewValue: 3}, changes[1])
	assert.Equal(t, models.ChangeRecord{Path: "resources.limits.memory", Kind: models.ChangeChanged, OldValue: "128Mi", NewValue: "256Mi"}, changes[2])
}

func TestDiff_RemovalsComeLast(t *testing.T) {
	oldTree := models.ConfigTree{
		"dropped": "gone",
		"kept":    map[string]interface{}{"inner": 1, "stale": true},
	}
	newTree := models.ConfigTree{
		"added": "new",
		"kept":  map[string]interface{}{"inner": 2},
	}

	changes := Diff(oldTree, newTree)
	require.Len(t, changes, 4)

	assert.Equal(t, "added", changes[0].Path)
	assert.Equal(t, models.ChangeAdded, changes[0].Kind)
	assert.Equal(t, "kept.inner", changes[1].Path)
	assert.Equal(t, models.ChangeChanged, changes[1].Kind)

	// Removed records trail all Added/Changed records.
	assert.Equal(t, models.ChangeRemoved, changes[2].Kind)
	assert.Equal(t, models.ChangeRemoved, changes[3].Kind)
	removedPaths := []string{changes[2].Path, changes[3].Path}
	assert.Contains(t, removedPaths, "dropped")
	assert.Contains(t, removedPaths, "kept.stale")
}

func TestDiff_TypeMismatchIsSingleChange(t *testing.T) {
	oldTree := models.ConfigTree{"limits": "unset"}
	newTree := models.ConfigTree{"limits": map[string]interface{}{"memory": "128Mi"}}

	changes := Diff(oldTree, newTree)
	require.Len(t, changes, 1)
	assert.Equal(t, "limits", changes[0].Path)
	assert.Equal(t, models.ChangeChanged, changes[0].Kind)
	assert.Equal(t, "unset", changes[0].OldValue)
	// No recursion into the mismatched tree side.
	assert.Equal(t, newTree["limits"], changes[0].NewValue)
}

func TestDiff_ListsCompareAsWholeValues(t *testing.T) {
	oldTree := models.ConfigTree{"args": []interface{}{"a", "b"}}

	t.Run("unequal list is one changed record", func(t *testing.T) {
		newTree := models.ConfigTree{"args": []interface{}{"a", "c"}}
		changes := Diff(oldTree, newTree)
		require.Len(t, changes, 1)
		assert.Equal(t, "args", changes[0].Path)
		assert.Equal(t, models.ChangeChanged, changes[0].Kind)
	})

	t.Run("equal list emits nothing", func(t *testing.T) {
		newTree := models.ConfigTree{"args": []interface{}{"a", "b"}}
		assert.Empty(t, Diff(oldTree, newTree))
	})
}

func TestDiff_Symmetry(t *testing.T) {
	a := models.ConfigTree{
		"replicas": 2,
		"only_a":   "x",
		"nested":   map[string]interface{}{"shared": 1, "a_only": true},
	}
	b := models.ConfigTree{
		"replicas": 5,
		"only_b":   "y",
		"nested":   map[string]interface{}{"shared": 2, "b_only": false},
	}

	forward := Diff(a, b)
	backward := Diff(b, a)
	require.Equal(t, len(forward), len(backward))

	backByPath := map[string]models.ChangeRecord{}
	for _, rec := range backward {
		backByPath[rec.Path] = rec
	}

	for _, rec := range forward {
		mirror, ok := backByPath[rec.Path]
		require.True(t, ok, "path %s missing from reverse diff", rec.Path)
		switch rec.Kind {
		case models.ChangeAdded:
			assert.Equal(t, models.ChangeRemoved, mirror.Kind)
			assert.Equal(t, rec.NewValue, mirror.OldValue)
		case models.ChangeRemoved:
			assert.Equal(t, models.ChangeAdded, mirror.Kind)
			assert.Equal(t, rec.OldValue, mirror.NewValue)
		case models.ChangeChanged:
			assert.Equal(t, models.ChangeChanged, mirror.Kind)
			assert.Equal(t, rec.OldValue, mirror.NewValue)
			assert.Equal(t, rec.NewValue, mirror.OldValue)
		}
	}
}

func TestDiffValues_RejectsNonTreeRoots(t *testing.T) {
	_, err := DiffValues("scalar", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrNotATree)

	_, err = DiffValues(map[string]interface{}{}, []interface{}{"list"})
	assert.ErrorIs(t, err, ErrNotATree)
}

func TestDiffValues_AcceptsDecodedMaps(t *testing.T) {
	oldRoot := map[string]interface{}{"replicas": 2}
	newRoot := map[string]interface{}{"replicas": 3}

	changes, err := DiffValues(oldRoot, newRoot)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "replicas", changes[0].Path)
}
