package models

// ConfigTree is one named revision's deployed configuration values: string
// keys mapping to scalars, nested trees, or lists. Trees are captured
// externally and treated as immutable once handed to the diff engine.
type ConfigTree map[string]interface{}

// ChangeKind classifies a single configuration change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeChanged ChangeKind = "changed"
)

// ChangeRecord is one entry in a revision diff. Path is dot-delimited from
// the root; OldValue/NewValue carry whichever sides exist for the kind.
type ChangeRecord struct {
	Path     string      `json:"path"`
	Kind     ChangeKind  `json:"kind"`
	OldValue interface{} `json:"old_value,omitempty"`
	NewValue interface{} `json:"new_value,omitempty"`
}
