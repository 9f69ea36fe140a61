// Package labels owns the label keys used for workload classification and
// the translator contract used to render them.
package labels

// Label keys. The set is fixed; translators may map any subset.
const (
	StatusAvailable   = "status_available"
	StatusOverloaded  = "status_overloaded"
	StatusPartial     = "status_partial"
	StatusBusy        = "status_busy"
	StatusDistributed = "status_distributed"

	WorkloadOverload    = "workload_overload"
	WorkloadNormal      = "workload_normal"
	WorkloadDistributed = "workload_distributed"
)

// Keys lists every label key in a stable order.
func Keys() []string {
	return []string{
		StatusAvailable,
		StatusOverloaded,
		StatusPartial,
		StatusBusy,
		StatusDistributed,
		WorkloadOverload,
		WorkloadNormal,
		WorkloadDistributed,
	}
}

// Translator renders a label key into display text.
type Translator func(key string) string

// Catalog is a static key -> text table.
type Catalog map[string]string

var english = Catalog{
	StatusAvailable:     "Available",
	StatusOverloaded:    "Overloaded",
	StatusPartial:       "Partially allocated",
	StatusBusy:          "Fully allocated",
	StatusDistributed:   "Distributed",
	WorkloadOverload:    "Overload",
	WorkloadNormal:      "Normal",
	WorkloadDistributed: "Distributed",
}

// Default returns a copy of the built-in English catalog.
func Default() Catalog {
	return english.WithOverrides(nil)
}

// WithOverrides returns a new catalog with the given texts replacing the
// built-in ones. Empty override texts are ignored.
func (c Catalog) WithOverrides(overrides map[string]string) Catalog {
	out := make(Catalog, len(c)+len(overrides))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Translate returns the text for key, or the key itself when unmapped.
func (c Catalog) Translate(key string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return key
}

// Translator adapts the catalog to the Translator contract.
func (c Catalog) Translator() Translator {
	return c.Translate
}

// Identity returns keys unchanged. Useful when the caller localizes later.
func Identity(key string) string { return key }
