package angzarr

import (
	"fmt"
	"strings"
	"sync"
)

// typeRegistry tracks the type_url suffixes registered on one router (a
// CommandRouter, EventRouter, or one of the OO base types) and rejects a
// registration the moment it would make dispatch ambiguous: suffix matching
// means a command or event could match two different handlers whenever one
// registered suffix is itself a suffix of another (or vice versa). Catching
// this at registration time, rather than at the first ambiguous dispatch,
// is what lets component authors find the mistake on startup instead of in
// production traffic.
type typeRegistry struct {
	mu       sync.Mutex
	suffixes []string
}

// register adds suffix to the registry, or returns an error describing
// which previously-registered suffix it collides with.
func (r *typeRegistry) register(suffix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.suffixes {
		if existing == suffix {
			return fmt.Errorf("angzarr: type_url suffix %q already registered", suffix)
		}
		if strings.HasSuffix(existing, suffix) || strings.HasSuffix(suffix, existing) {
			return fmt.Errorf("angzarr: type_url suffix %q is ambiguous with already-registered suffix %q: "+
				"a type_url could match either, so dispatch cannot be made deterministic", suffix, existing)
		}
	}
	r.suffixes = append(r.suffixes, suffix)
	return nil
}

// mustRegister panics on a collision. Handler registration happens during
// component construction (init-time, not request-time), so the OO base
// types use this to fail fast rather than thread an error return through
// every fluent builder method.
func (r *typeRegistry) mustRegister(suffix string) {
	if err := r.register(suffix); err != nil {
		panic(err)
	}
}
