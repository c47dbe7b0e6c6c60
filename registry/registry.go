// Package registry replaces bdsim's import-time blocklist side effect
// (components.py's @block decorator appending to a module-level list) with
// an explicit, process-wide table populated by each block variant's own
// init(). Registration order is preserved and is the load order Design
// Note "Dynamic registration of block variants" calls for.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sarchlab/bdcore/bdcoreerr"
	"github.com/sarchlab/bdcore/block"
)

// Params carries constructor arguments to a Factory, playing the role the
// original's **kwargs played for block constructors.
type Params map[string]interface{}

// Float returns params[key] as a float64, or def if absent.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

// Floats returns params[key] as a []float64, or nil if absent.
func (p Params) Floats(key string) []float64 {
	if v, ok := p[key]; ok {
		if f, ok := v.([]float64); ok {
			return f
		}
	}
	return nil
}

// String returns params[key] as a string, or def if absent.
func (p Params) String(key string, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Int returns params[key] as an int, or def if absent.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		if i, ok := v.(int); ok {
			return i
		}
	}
	return def
}

// Factory constructs an unbound block instance from params. The caller
// (normally Diagram.New) is responsible for assigning the block an id,
// default name, and diagram back-reference.
type Factory func(params Params) (block.Block, error)

type entry struct {
	typeName string
	kind     block.Kind
	factory  Factory
}

var (
	mu      sync.RWMutex
	entries []entry
	byName  = map[string]int{} // typeName -> index into entries
)

// blockName converts a variant's class/type name to its registered BLOCK
// name: upper-cased, with leading/trailing underscores removed, per the
// block plugin contract.
func blockName(raw string) string {
	return strings.ToUpper(strings.Trim(raw, "_"))
}

// Register appends a variant to the registry in load order. typeName is
// normalized through blockName before being indexed, so callers may pass
// either the already-normalized name or the raw type/class name.
func Register(typeName string, kind block.Kind, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	name := blockName(typeName)
	if _, exists := byName[name]; exists {
		panic(fmt.Sprintf("registry: block type %q already registered", name))
	}
	entries = append(entries, entry{typeName: name, kind: kind, factory: factory})
	byName[name] = len(entries) - 1
}

// Lookup finds the factory registered for typeName (normalized the same
// way Register normalizes it).
func Lookup(typeName string) (Factory, block.Kind, error) {
	mu.RLock()
	defer mu.RUnlock()

	name := blockName(typeName)
	idx, ok := byName[name]
	if !ok {
		return nil, 0, bdcoreerr.New(bdcoreerr.BlockCheck, "no block type registered as %q", name)
	}
	e := entries[idx]
	return e.factory, e.kind, nil
}

// Names returns every registered type name, in registration order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.typeName
	}
	return names
}

// SortedNames returns every registered type name in lexical order, useful
// for deterministic diagnostic listings.
func SortedNames() []string {
	names := Names()
	sort.Strings(names)
	return names
}
