package adapter

import (
	_ "embed"
	"errors"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/interview-crawler/internal/model"
)

// ErrUnknownSite is returned for site ids with no registered adapter.
var ErrUnknownSite = errors.New("unknown site")

//go:embed sites.yaml
var builtinSites []byte

// Registry maps site ids to their adapters.
type Registry struct {
	adapters map[string]Adapter
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter to the registry. Registering an id twice replaces
// the earlier adapter but keeps its position.
func (r *Registry) Register(a Adapter) {
	id := a.ID()
	if _, exists := r.adapters[id]; !exists {
		r.order = append(r.order, id)
	}
	r.adapters[id] = a
}

// Get returns the adapter for a site id.
func (r *Registry) Get(id string) (Adapter, error) {
	a, ok := r.adapters[id]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownSite, "adapter: %q", id)
	}
	return a, nil
}

// All returns all adapters in registration order.
func (r *Registry) All() []Adapter {
	result := make([]Adapter, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.adapters[id])
	}
	return result
}

// IDs returns all registered site ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// BuildSearchURL resolves the adapter for id and builds its search URL.
func (r *Registry) BuildSearchURL(id, keyword string) (string, error) {
	a, err := r.Get(id)
	if err != nil {
		return "", err
	}
	return a.SearchURL(keyword)
}

// ExtractRawItems resolves the adapter for id and extracts items from html.
func (r *Registry) ExtractRawItems(id, html string) ([]model.RawItem, error) {
	a, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return a.ExtractItems(html)
}

type sitesFile struct {
	Sites []model.SiteConfig `yaml:"sites"`
}

// ParseSites decodes a YAML site list.
func ParseSites(data []byte) ([]model.SiteConfig, error) {
	var f sitesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "adapter: parse sites")
	}
	if len(f.Sites) == 0 {
		return nil, eris.New("adapter: no sites defined")
	}
	return f.Sites, nil
}

// NewRegistryFromConfigs builds a registry with one SelectorAdapter per site.
func NewRegistryFromConfigs(sites []model.SiteConfig) (*Registry, error) {
	reg := NewRegistry()
	for _, sc := range sites {
		a, err := NewSelectorAdapter(sc)
		if err != nil {
			return nil, err
		}
		reg.Register(a)
	}
	return reg, nil
}

// Default returns a registry of the built-in sites.
func Default() (*Registry, error) {
	sites, err := ParseSites(builtinSites)
	if err != nil {
		return nil, err
	}
	return NewRegistryFromConfigs(sites)
}

// Load returns the registry from a YAML file at path, or the built-in sites
// when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "adapter: read sites file %s", path)
	}
	sites, err := ParseSites(data)
	if err != nil {
		return nil, err
	}
	return NewRegistryFromConfigs(sites)
}
