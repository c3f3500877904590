package focus

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export renders s in the given format. YAML output keeps the JSON member
// order, including decision and session order.
func Export(s *State, format string) ([]byte, error) {
	data, err := Encode(s)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON, "":
		return data, nil
	case FormatYAML:
		return toYAML(data)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// toYAML re-encodes JSON as block-style YAML. JSON is valid YAML, so the
// document is parsed into a node tree, which preserves member order, and
// the flow styles inherited from JSON syntax are cleared.
func toYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse record as yaml: %w", err)
	}
	clearStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// clearStyle resets every node to the default style. The encoder re-quotes
// strings that would otherwise read back as another type.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
