package provider

import (
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// Registry holds the closed set of adapter instances the router
// dispatches between.
type Registry struct {
	providers map[models.ProviderID]FaceProvider
}

// NewRegistry builds a registry over the given adapters.
func NewRegistry(providers ...FaceProvider) *Registry {
	r := &Registry{providers: make(map[models.ProviderID]FaceProvider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the adapter for the given backend, nil if unknown.
func (r *Registry) Get(id models.ProviderID) FaceProvider {
	return r.providers[id]
}

// Other returns the alternate backend's adapter, used for fallback.
func (r *Registry) Other(id models.ProviderID) FaceProvider {
	for name, p := range r.providers {
		if name != id {
			return p
		}
	}
	return nil
}
