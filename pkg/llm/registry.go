package llm

import "strings"

// Registry resolves a model-selector token to a provider and request options.
type Registry struct {
	providers   map[string]Provider
	defaultName string
}

// NewRegistry registers providers by Name. defaultName must be one of them; otherwise
// the first provider becomes the default.
func NewRegistry(defaultName string, providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	defaultName = strings.ToLower(strings.TrimSpace(defaultName))
	if _, ok := r.providers[defaultName]; !ok && len(providers) > 0 {
		defaultName = providers[0].Name()
	}
	r.defaultName = defaultName
	return r
}

// Default returns the fallback provider.
func (r *Registry) Default() Provider {
	return r.providers[r.defaultName]
}

// Resolve maps a selector onto a provider:
//
//	""                 -> default provider, its default model
//	"gemini"           -> named provider, its default model
//	"gemini:<model>"   -> named provider, model override
//	anything else      -> default provider with the selector as model name
func (r *Registry) Resolve(selector string) (Provider, Options) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return r.Default(), Options{}
	}
	if p, ok := r.providers[strings.ToLower(selector)]; ok {
		return p, Options{}
	}
	if name, model, found := strings.Cut(selector, ":"); found {
		if p, ok := r.providers[strings.ToLower(name)]; ok {
			return p, Options{Model: model}
		}
	}
	return r.Default(), Options{Model: selector}
}
