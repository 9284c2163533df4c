package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// OriginPerfSpect marks a reconciled metric that has no counterpart in the
// translated perfmon set and was carried over from the existing file.
const OriginPerfSpect = "perfspect"

// MetricDefinition is a perfspect-style metric: a name and a formula whose
// events are written as [EVENT] or [EVENT:modifier].
//
// Fields other than name, expression and origin are preserved in Extra so a
// record read from an existing metrics file can be written back unchanged.
type MetricDefinition struct {
	Name       string                     `json:"name" yaml:"name"`
	Expression string                     `json:"expression" yaml:"expression"`
	Origin     string                     `json:"origin,omitempty" yaml:"origin,omitempty"`
	Extra      map[string]json.RawMessage `json:"-" yaml:"-"`

	// keys is the field order of a decoded record; nil for records built in code.
	keys []string
}

// UnmarshalJSON decodes a metric record, keeping unknown fields in Extra and
// remembering the order the fields appeared in.
func (m *MetricDefinition) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("metric record must be an object")
	}
	keys, err := objectKeys(data)
	if err != nil {
		return err
	}

	*m = MetricDefinition{keys: keys}
	for key, raw := range fields {
		var err error
		switch key {
		case "name":
			err = json.Unmarshal(raw, &m.Name)
		case "expression":
			err = json.Unmarshal(raw, &m.Expression)
		case "origin":
			err = json.Unmarshal(raw, &m.Origin)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]json.RawMessage)
			}
			m.Extra[key] = raw
		}
		if err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
	}
	return nil
}

// objectKeys lists the keys of a JSON object in document order. A repeated
// key keeps its first position.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in metric record", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// MarshalJSON writes a decoded record's fields in their original order, with
// fields added since decoding (such as origin) appended. A record built in
// code is written as name, expression, extra fields in sorted key order, then
// origin when set.
func (m MetricDefinition) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	written := make(map[string]bool, len(m.keys)+3)
	emit := func(key string, value any) error {
		if err := writeField(&buf, key, value, len(written) > 0); err != nil {
			return err
		}
		written[key] = true
		return nil
	}

	for _, k := range m.keys {
		var err error
		switch k {
		case "name":
			err = emit(k, m.Name)
		case "expression":
			err = emit(k, m.Expression)
		case "origin":
			err = emit(k, m.Origin)
		default:
			if raw, ok := m.Extra[k]; ok {
				err = emit(k, raw)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if !written["name"] {
		if err := emit("name", m.Name); err != nil {
			return nil, err
		}
	}
	if !written["expression"] && (m.keys == nil || m.Expression != "") {
		if err := emit("expression", m.Expression); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		if !written[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := emit(k, m.Extra[k]); err != nil {
			return nil, err
		}
	}

	if !written["origin"] && m.Origin != "" {
		if err := emit("origin", m.Origin); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, value any, comma bool) error {
	if comma {
		buf.WriteByte(',')
	}
	if err := encodeNoEscape(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return encodeNoEscape(buf, value)
}

// encodeNoEscape encodes v without HTML escaping so formulas keep their
// comparison operators readable.
func encodeNoEscape(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// AliasRef binds a formula alias to a canonical event or constant name.
type AliasRef struct {
	Alias string `json:"Alias"`
	Name  string `json:"Name"`
}

// PerfmonMetric is one entry of a perfmon metrics file.
type PerfmonMetric struct {
	LegacyName string     `json:"LegacyName"`
	Events     []AliasRef `json:"Events"`
	Constants  []AliasRef `json:"Constants"`
	Formula    string     `json:"Formula"`
}

// PerfmonDocument is the top level of a perfmon metrics file. Metrics is nil
// when the document has no Metrics field.
type PerfmonDocument struct {
	Metrics []PerfmonMetric `json:"Metrics"`
}
