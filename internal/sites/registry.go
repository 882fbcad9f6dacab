package sites

import (
	"fmt"
	"sort"
	"sync"
)

// Site is a source marketplace the search API can scrape.
type Site struct {
	ID      string
	Label   string
	Default bool
}

var (
	registry = make(map[string]Site)
	mu       sync.RWMutex
)

func init() {
	register(Site{ID: "gsmarena", Label: "GSMArena", Default: true})
	register(Site{ID: "kimovil", Label: "Kimovil"})
	register(Site{ID: "mobiles91", Label: "91mobiles"})
}

func register(site Site) {
	mu.Lock()
	defer mu.Unlock()
	registry[site.ID] = site
}

func Get(id string) (Site, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[id]
	if !ok {
		return Site{}, fmt.Errorf("site %q not registered", id)
	}
	return s, nil
}

// List returns all registered sites ordered by ID.
func List() []Site {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Site, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Defaults returns the IDs of sites selected when the user picks none explicitly.
func Defaults() []string {
	var ids []string
	for _, s := range List() {
		if s.Default {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
