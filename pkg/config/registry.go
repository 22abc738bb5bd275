package config

// AnalyzerRegistry is an immutable, ordered collection of analyzer configs.
// Order is configuration order; detection extraction iterates it so that vote
// tie resolution is reproducible for a given input.
type AnalyzerRegistry struct {
	byID  map[string]*AnalyzerConfig
	order []string
}

// NewAnalyzerRegistry builds a registry preserving the given order.
func NewAnalyzerRegistry(analyzers []AnalyzerConfig) *AnalyzerRegistry {
	r := &AnalyzerRegistry{
		byID:  make(map[string]*AnalyzerConfig, len(analyzers)),
		order: make([]string, 0, len(analyzers)),
	}
	for i := range analyzers {
		a := analyzers[i]
		if _, dup := r.byID[a.ID]; dup {
			continue // first definition wins
		}
		r.byID[a.ID] = &a
		r.order = append(r.order, a.ID)
	}
	return r
}

// Get returns the analyzer with the given id.
func (r *AnalyzerRegistry) Get(id string) (*AnalyzerConfig, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// IDs returns analyzer ids in configuration order.
func (r *AnalyzerRegistry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns analyzers in configuration order.
func (r *AnalyzerRegistry) All() []*AnalyzerConfig {
	out := make([]*AnalyzerConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ByCategory returns analyzers of the given category, in configuration order.
func (r *AnalyzerRegistry) ByCategory(c Category) []*AnalyzerConfig {
	var out []*AnalyzerConfig
	for _, id := range r.order {
		if r.byID[id].Category == c {
			out = append(out, r.byID[id])
		}
	}
	return out
}

// Len returns the number of registered analyzers.
func (r *AnalyzerRegistry) Len() int {
	return len(r.order)
}
