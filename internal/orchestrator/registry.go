package orchestrator

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/community-cli/internal/community"
)

// Registry holds the primary provider and, when the structured-text
// provider is primary, the place-search provider as its secondary.
// Place-search primary has no fallback.
type Registry struct {
	primary   community.Provider
	secondary community.Provider
}

// NewRegistry selects the primary by name ("places" or "structured").
func NewRegistry(primary string, places, structured community.Provider) (*Registry, error) {
	switch primary {
	case "places", "":
		if places == nil {
			return nil, eris.New("orchestrator: places provider is not configured")
		}
		return &Registry{primary: places}, nil
	case "structured":
		if structured == nil {
			return nil, eris.New("orchestrator: structured provider is not configured")
		}
		return &Registry{primary: structured, secondary: places}, nil
	default:
		return nil, eris.Errorf("orchestrator: unknown primary provider %q", primary)
	}
}

// Primary returns the primary provider.
func (r *Registry) Primary() community.Provider { return r.primary }

// Secondary returns the fallback provider, or nil.
func (r *Registry) Secondary() community.Provider { return r.secondary }

// events returns the first registered provider that can list monthly events.
func (r *Registry) events() community.EventsProvider {
	for _, p := range []community.Provider{r.primary, r.secondary} {
		if ep, ok := p.(community.EventsProvider); ok {
			return ep
		}
	}
	return nil
}
