package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AttrLevels is the ordered attribute→levels mapping of a study. On the wire
// it is a mapping whose key order is the attribute order:
//
//	attrlevels:
//	  price: ["$1", "$2", "$3"]
//	  brand: 4            # shorthand for levels "1".."4"
//
// A list of {name, levels} objects is also accepted.
type AttrLevels []Attribute

// Names returns attribute names in order.
func (a AttrLevels) Names() []string {
	names := make([]string, len(a))
	for i, attr := range a {
		names[i] = attr.Name
	}
	return names
}

// LevelsFromValue converts a decoded levels value (a list of labels or a
// level count) into level labels.
func LevelsFromValue(attr string, v any) ([]string, error) {
	switch x := v.(type) {
	case []any:
		levels := make([]string, 0, len(x))
		for _, item := range x {
			label, err := levelLabel(item)
			if err != nil {
				return nil, NewConfigurationError("attrlevels."+attr, "%v", err)
			}
			levels = append(levels, label)
		}
		return levels, nil
	case []string:
		return append([]string(nil), x...), nil
	case int:
		return countOrError(attr, int64(x))
	case int64:
		return countOrError(attr, x)
	case float64:
		if x != float64(int64(x)) {
			return nil, NewConfigurationError("attrlevels."+attr, "level count must be an integer, got %v", x)
		}
		return countOrError(attr, int64(x))
	default:
		return nil, NewConfigurationError("attrlevels."+attr, "levels must be a list or a count, got %T", v)
	}
}

func countOrError(attr string, n int64) ([]string, error) {
	if n < 1 {
		return nil, NewConfigurationError("attrlevels."+attr, "level count must be at least 1, got %d", n)
	}
	return CountLevels(int(n)), nil
}

func levelLabel(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("unsupported level label type %T", v)
	}
}

// MarshalJSON writes the mapping form, preserving attribute order.
func (a AttrLevels) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Name)
		if err != nil {
			return nil, err
		}
		levels := attr.Levels
		if levels == nil {
			levels = []string{}
		}
		val, err := json.Marshal(levels)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the mapping form in key order, or the list form.
func (a *AttrLevels) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Attribute
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return NewConfigurationError("attrlevels", "%v", err)
		}
		*a = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return NewConfigurationError("attrlevels", "%v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return NewConfigurationError("attrlevels", "must be a mapping of attribute to levels")
	}

	var out AttrLevels
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return NewConfigurationError("attrlevels", "%v", err)
		}
		name, _ := keyTok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return NewConfigurationError("attrlevels."+name, "%v", err)
		}
		levels, err := LevelsFromValue(name, normalizeJSONNumbers(raw))
		if err != nil {
			return err
		}
		out = append(out, Attribute{Name: name, Levels: levels})
	}
	if _, err := dec.Token(); err != nil {
		return NewConfigurationError("attrlevels", "%v", err)
	}

	*a = out
	return nil
}

// normalizeJSONNumbers turns json.Number values into int64 or float64.
func normalizeJSONNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = normalizeJSONNumbers(x[i])
		}
		return x
	default:
		return v
	}
}

// MarshalYAML writes the mapping form, preserving attribute order.
func (a AttrLevels) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, attr := range a {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, l := range attr.Levels {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: l})
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: attr.Name},
			seq,
		)
	}
	return node, nil
}

// UnmarshalYAML reads the mapping form in key order, or the list form.
func (a *AttrLevels) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []Attribute
		if err := value.Decode(&list); err != nil {
			return NewConfigurationError("attrlevels", "%v", err)
		}
		*a = list
		return nil
	case yaml.MappingNode:
	default:
		return NewConfigurationError("attrlevels", "must be a mapping of attribute to levels (line %d)", value.Line)
	}

	out := make(AttrLevels, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		var raw any
		if err := value.Content[i+1].Decode(&raw); err != nil {
			return NewConfigurationError("attrlevels."+name, "%v", err)
		}
		levels, err := LevelsFromValue(name, raw)
		if err != nil {
			return err
		}
		out = append(out, Attribute{Name: name, Levels: levels})
	}
	*a = out
	return nil
}
