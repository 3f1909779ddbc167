// Package category tracks per-category scan performance and picks which
// categories a cycle should probe.
package category

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"product-scout/internal/domain"
)

var ErrEmptyCatalog = errors.New("catalog has no categories")

// Entry is one category and its keywords as written in a catalog file.
type Entry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type catalogFile struct {
	Categories []Entry `yaml:"categories"`
}

// Catalog is the ordered set of categories and the keywords scanned for each.
type Catalog struct {
	names    []string
	keywords map[string][]string
}

// NewCatalog validates entries. Every category needs a unique non-empty name
// and at least one keyword.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{keywords: make(map[string][]string, len(entries))}
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d: missing name", i)
		}
		if _, dup := c.keywords[name]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate category %q", i, name)
		}
		var kws []string
		for _, kw := range e.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("catalog entry %d: category %q has no keywords", i, name)
		}
		c.names = append(c.names, name)
		c.keywords[name] = kws
	}
	return c, nil
}

// LoadCatalogFile reads a YAML catalog:
//
//	categories:
//	  - name: Pet Supplies
//	    keywords: [pet hair remover, dog chew toys]
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(file.Categories)
}

func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.keywords[name]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.names)
}

// Keywords expands categories to keyword refs in the given category order.
// Unknown categories contribute nothing.
func (c *Catalog) Keywords(categories []string) []domain.KeywordRef {
	var refs []domain.KeywordRef
	for _, cat := range categories {
		for _, kw := range c.keywords[cat] {
			refs = append(refs, domain.KeywordRef{Keyword: kw, Category: cat})
		}
	}
	return refs
}

// DefaultCatalog is the built-in set of eight categories.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultEntries)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultEntries = []Entry{
	{Name: "Electronics & Accessories", Keywords: []string{
		"phone ring holder", "usb c cable 3 pack", "wireless phone charger", "bluetooth earbuds", "phone camera lens kit",
	}},
	{Name: "Beauty & Personal Care", Keywords: []string{
		"magnetic eyelashes", "makeup brush set", "hair scrunchies velvet", "jade roller face", "nail art kit",
	}},
	{Name: "Home & Garden", Keywords: []string{
		"led strip lights", "drawer organizer", "plant grow light", "door draft stopper", "shower caddy corner",
	}},
	{Name: "Sports & Outdoors", Keywords: []string{
		"resistance bands set", "yoga mat thick", "foam roller muscle", "jump rope weighted", "water bottle motivational",
	}},
	{Name: "Toys & Hobbies", Keywords: []string{
		"fidget spinner metal", "slime kit diy", "puzzle 1000 piece", "play dough set", "building blocks educational",
	}},
	{Name: "Video Games & Consoles", Keywords: []string{
		"ps5 controller skin", "nintendo switch case", "gaming mouse pad large", "controller grips", "headset stand rgb",
	}},
	{Name: "Fashion & Accessories", Keywords: []string{
		"sunglasses polarized", "crossbody bag small", "baseball cap unisex", "face mask reusable", "watch band leather",
	}},
	{Name: "Pet Supplies", Keywords: []string{
		"pet hair remover", "dog chew toys", "cat laser toy", "pet water fountain", "dog poop bags holder",
	}},
}
