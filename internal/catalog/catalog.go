// Package catalog is the read-only country reference the API joins against.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"riskwatch/internal/model"
)

type Catalog struct {
	byCode map[string]model.Country
}

// Load reads a YAML country list. An empty path yields an empty catalog;
// the engine only uses codes as keys, so an unlisted country still scores.
func Load(path string) (*Catalog, error) {
	c := &Catalog{byCode: make(map[string]model.Country)}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Countries []model.Country `yaml:"countries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, country := range doc.Countries {
		code := strings.ToUpper(strings.TrimSpace(country.Code))
		if code == "" {
			continue
		}
		country.Code = code
		c.byCode[code] = country
	}
	return c, nil
}

func (c *Catalog) Get(code string) (model.Country, bool) {
	country, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return country, ok
}

func (c *Catalog) All() []model.Country {
	out := make([]model.Country, 0, len(c.byCode))
	for _, country := range c.byCode {
		out = append(out, country)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (c *Catalog) Len() int {
	return len(c.byCode)
}
