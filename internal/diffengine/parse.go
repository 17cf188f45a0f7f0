package diffengine

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clusterscope/evidence-core/internal/models"
)

// ParseConfigTree decodes a YAML revision snapshot into a ConfigTree. An
// empty document or an explicit null (what `helm get values` prints for a
// release with no overrides) parses as an empty tree; any other non-mapping
// root is rejected.
func ParseConfigTree(data []byte) (models.ConfigTree, error) {
	if strings.TrimSpace(string(data)) == "" {
		return models.ConfigTree{}, nil
	}

	var root interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse revision snapshot: %w", err)
	}
	if root == nil {
		return models.ConfigTree{}, nil
	}

	tree, ok := asTree(root)
	if !ok {
		return nil, fmt.Errorf("%w: root is %T", ErrNotATree, root)
	}
	return tree, nil
}
