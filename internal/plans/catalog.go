package plans

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Plan struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	PriceUSD    float64  `yaml:"price_usd" json:"price_usd"`
	Period      string   `yaml:"period" json:"period"`
	Description string   `yaml:"description" json:"description"`
	Features    []string `yaml:"features" json:"features"`
	Limitations []string `yaml:"limitations,omitempty" json:"limitations,omitempty"`
	MaxListings int      `yaml:"max_listings,omitempty" json:"max_listings,omitempty"`
}

// Catalog is the static plan list loaded at boot. Plans are config, not data:
// changing them is a deploy, so there is no store round trip.
type Catalog struct {
	plans []Plan
	byID  map[string]Plan
}

func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if len(doc.Plans) == 0 {
		return nil, fmt.Errorf("no plans defined in %s", path)
	}
	c := &Catalog{plans: doc.Plans, byID: make(map[string]Plan, len(doc.Plans))}
	for _, p := range doc.Plans {
		if p.ID == "" || p.PriceUSD <= 0 {
			return nil, fmt.Errorf("plan %q invalid: id and positive price required", p.Name)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		c.byID[p.ID] = p
	}
	return c, nil
}

func (c *Catalog) All() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

func (c *Catalog) Get(id string) (Plan, bool) {
	p, ok := c.byID[id]
	return p, ok
}
