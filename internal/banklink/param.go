package banklink

import "fmt"

// Parameter is a single name/value pair carried by a packet. Values are
// opaque text; only algorithms and output renderers ever interpret them.
type Parameter struct {
	Name  string
	Value string
}

// ValueRule validates a parameter value before it is stored. Deployments can
// swap in stricter rules (bank-specific charsets etc.); the default forbids
// control characters, which break both the canonical string and the audit log.
type ValueRule func(name, value string) error

// DefaultValueRule rejects ASCII control characters.
func DefaultValueRule(name, value string) error {
	for _, r := range value {
		if r < 0x20 && r != '\t' {
			return fmt.Errorf("control character 0x%02x in value of %q", r, name)
		}
	}
	return nil
}

// ParameterMap is an insertion-ordered, uniquely-keyed parameter container.
// Order is semantically significant: it defines the canonical byte sequence
// fed to the signing algorithm, so two maps holding the same pairs in a
// different order sign differently. Re-setting a name updates the value in
// place without moving its position.
//
// Not safe for concurrent use; a packet belongs to one request.
type ParameterMap struct {
	entries []Parameter
	index   map[string]int
	rule    ValueRule
}

func NewParameterMap(rule ValueRule) *ParameterMap {
	if rule == nil {
		rule = DefaultValueRule
	}
	return &ParameterMap{index: make(map[string]int), rule: rule}
}

// Reset drops every entry but keeps the value rule.
func (m *ParameterMap) Reset() {
	m.entries = m.entries[:0]
	m.index = make(map[string]int)
}

// Set inserts or overwrites a parameter. The name must be non-empty and the
// value must pass the map's rule; a failing pair is rejected with
// *InvalidParameterError before it becomes visible to any reader.
func (m *ParameterMap) Set(name, value string) error {
	if name == "" {
		return &InvalidParameterError{Name: name, Reason: "empty parameter name"}
	}
	if err := m.rule(name, value); err != nil {
		return &InvalidParameterError{Name: name, Reason: err.Error()}
	}
	if i, ok := m.index[name]; ok {
		m.entries[i].Value = value
		return nil
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, Parameter{Name: name, Value: value})
	return nil
}

// Get returns the value stored under name.
func (m *ParameterMap) Get(name string) (string, bool) {
	i, ok := m.index[name]
	if !ok {
		return "", false
	}
	return m.entries[i].Value, true
}

func (m *ParameterMap) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Parameters returns the entries in insertion order. The slice is a copy;
// mutating it does not affect the map.
func (m *ParameterMap) Parameters() []Parameter {
	out := make([]Parameter, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *ParameterMap) Len() int { return len(m.entries) }
