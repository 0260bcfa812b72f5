package geo

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"rail_distance/internal/stationname"
)

//go:embed corridors.yaml
var defaultCorridors []byte

// Corridors maps origin regions to the ordered stations a route passes on
// its way into a hub region.
type Corridors struct {
	Hubs   []string            `yaml:"hubs" validate:"min=1,dive,required"`
	Routes map[string][]string `yaml:"corridors" validate:"dive,keys,required,endkeys,min=1,dive,required"`

	hubs   map[string]struct{}
	routes map[string][]string
}

// DefaultCorridors returns the built-in corridor table.
func DefaultCorridors() (*Corridors, error) {
	return ParseCorridors(defaultCorridors)
}

// LoadCorridors reads a corridor table from a YAML file. An empty path
// selects the built-in table.
func LoadCorridors(path string) (*Corridors, error) {
	if path == "" {
		return DefaultCorridors()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corridors %s: %w", path, err)
	}
	return ParseCorridors(data)
}

// ParseCorridors decodes and validates a corridor table. Keys and names are
// stored in CleanName form.
func ParseCorridors(data []byte) (*Corridors, error) {
	var c Corridors
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corridors: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("invalid corridors: %w", err)
	}

	c.hubs = make(map[string]struct{}, len(c.Hubs))
	for _, h := range c.Hubs {
		c.hubs[stationname.CleanName(h)] = struct{}{}
	}
	c.routes = make(map[string][]string, len(c.Routes))
	for origin, waypoints := range c.Routes {
		cleaned := make([]string, len(waypoints))
		for i, w := range waypoints {
			cleaned[i] = stationname.CleanName(w)
		}
		c.routes[stationname.CleanName(origin)] = cleaned
	}
	return &c, nil
}

// IsHub reports whether the station belongs to a hub region.
func (c *Corridors) IsHub(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.hubs[stationname.CleanName(name)]
	return ok
}

// Waypoints returns the corridor configured for origin, with destination
// appended, when destination is a hub.
func (c *Corridors) Waypoints(origin, destination string) ([]string, bool) {
	if c == nil || !c.IsHub(destination) {
		return nil, false
	}
	route, ok := c.routes[stationname.CleanName(origin)]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(route)+1)
	out = append(out, route...)
	out = append(out, stationname.CleanName(destination))
	return out, true
}
