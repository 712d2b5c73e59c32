package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[ProductType]CategoryDefinition)
	registryMu sync.RWMutex
)

// Register adds a category definition to the registry.
// Panics if the category is already registered or has no processor.
func Register(def CategoryDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Type]; exists {
		panic(fmt.Sprintf("category already registered: %s", def.Info.Type))
	}
	if def.Process == nil {
		panic(fmt.Sprintf("category %s has no row processor", def.Info.Type))
	}

	// Fill template labels from the alias table if not set
	for i, spec := range def.Fields {
		if spec.Label == "" {
			if aliases := FieldAliases[spec.Field]; len(aliases) > 0 {
				def.Fields[i].Label = aliases[0]
			}
		}
	}

	registry[def.Info.Type] = def
}

// Get returns a category definition by product type.
// Returns false if not found.
func Get(t ProductType) (CategoryDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[t]
	return def, ok
}

// All returns all registered categories sorted by product type.
func All() []CategoryDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]CategoryDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Type < result[j].Info.Type
	})

	return result
}

// CategoryCount returns the number of registered categories.
func CategoryCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered categories.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[ProductType]CategoryDefinition)
}
