package core

import (
	"fmt"
	"sort"
	"sync"
)

// SourceKind tells the driver how an entity's raw input is read.
type SourceKind int

const (
	// SourceTabular entities are read as delimited files with a header row.
	SourceTabular SourceKind = iota
	// SourceDerived entities are produced by flattening another entity's feed.
	SourceDerived
	// SourceEvents entities are read as a nested record feed.
	SourceEvents
)

// EntityInfo contains identifying information about an entity.
type EntityInfo struct {
	Key    string     // Output name: "employees"
	Label  string     // Display name: "Employee"
	Source string     // Raw object name: "employees.csv"
	Kind   SourceKind // How the raw input is obtained
	Order  int        // Position in the output set
}

// ColumnSpec declares one canonical column of an entity.
type ColumnSpec struct {
	Name        string    // Column header name (must match the source exactly)
	Type        FieldType // Declared output type
	NonNegative bool      // Negative parses fall back to the default
}

// EntityDefinition contains everything needed to normalize one entity.
type EntityDefinition struct {
	Info    EntityInfo
	Columns []ColumnSpec

	// Project restricts the output to exactly Columns, in order. When false
	// every column that survives the earlier steps is retained.
	Project bool

	// MergeName derives Full_Name from First_Name and Last_Name.
	MergeName bool

	// Contacts enables Email/Phone defaulting and validation.
	Contacts bool
}

// Spec returns the declared column spec for name.
func (d EntityDefinition) Spec(name string) (ColumnSpec, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// DeclaredColumns returns the declared columns as canonical Columns.
func (d EntityDefinition) DeclaredColumns() []Column {
	cols := make([]Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = Column{Name: c.Name, Type: c.Type}
	}
	return cols
}

var (
	registry   = make(map[string]EntityDefinition)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if an entity with the same key is already registered.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Info.Key))
	}

	registry[def.Info.Key] = def
}

// Get returns an entity definition by key.
// Returns false if not found.
func Get(key string) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// MustGet returns an entity definition by key and panics if it is missing.
// A missing definition is a wiring defect, not a data condition.
func MustGet(key string) EntityDefinition {
	def, ok := Get(key)
	if !ok {
		panic(fmt.Sprintf("entity not registered: %s", key))
	}
	return def
}

// All returns all registered entity definitions in output order.
func All() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Order != result[j].Info.Order {
			return result[i].Info.Order < result[j].Info.Order
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// Keys returns all registered entity keys in output order.
func Keys() []string {
	defs := All()
	keys := make([]string, len(defs))
	for i, def := range defs {
		keys[i] = def.Info.Key
	}
	return keys
}

// EntityCount returns the number of registered entities.
func EntityCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
