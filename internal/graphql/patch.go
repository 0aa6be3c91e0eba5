package graphql

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

// Patch re-encodes src with the string values that were rewritten in doc, a decoded copy of src.
// Object keys keep their order in src and values that were not rewritten keep their source text.
// Only string replacements are carried over: keys are never added or removed.
func Patch(src []byte, doc any) ([]byte, error) {
	root, err := sonic.Get(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	if err := patchNode(&root, doc); err != nil {
		return nil, err
	}

	return root.MarshalJSON()
}

func patchNode(n *ast.Node, v any) error {
	switch val := v.(type) {
	case map[string]any:
		if n.TypeSafe() != ast.V_OBJECT {
			return nil
		}
		for key, child := range val {
			node := n.Get(key)
			if !node.Exists() {
				continue
			}
			s, ok := child.(string)
			if !ok {
				if err := patchNode(node, child); err != nil {
					return err
				}
				continue
			}
			if sameString(node, s) {
				continue
			}
			if _, err := n.Set(key, ast.NewString(s)); err != nil {
				return fmt.Errorf("failed to set '%s': %w", key, err)
			}
		}
	case []any:
		if n.TypeSafe() != ast.V_ARRAY {
			return nil
		}
		for idx, child := range val {
			node := n.Index(idx)
			if !node.Exists() {
				continue
			}
			s, ok := child.(string)
			if !ok {
				if err := patchNode(node, child); err != nil {
					return err
				}
				continue
			}
			if sameString(node, s) {
				continue
			}
			if _, err := n.SetByIndex(idx, ast.NewString(s)); err != nil {
				return fmt.Errorf("failed to set index %d: %w", idx, err)
			}
		}
	}

	return nil
}

func sameString(n *ast.Node, s string) bool {
	if n.TypeSafe() != ast.V_STRING {
		return false
	}
	cur, err := n.String()
	return err == nil && cur == s
}
