package core

import (
	"sort"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// Catalog is the immutable list of purchasable gifts.
type Catalog struct {
	byName  map[string]domain.Gift
	ordered []domain.Gift
	// FanClubGift is the gift whose purchase grants fan-club membership.
	FanClubGift string
}

func NewCatalog(gifts []domain.Gift, fanClubGift string) *Catalog {
	c := &Catalog{byName: make(map[string]domain.Gift, len(gifts)), FanClubGift: fanClubGift}
	for _, g := range gifts {
		if g.Name == "" || g.Price < 0 {
			continue
		}
		if _, dup := c.byName[g.Name]; dup {
			continue
		}
		c.byName[g.Name] = g
		c.ordered = append(c.ordered, g)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool { return c.ordered[i].Price < c.ordered[j].Price })
	return c
}

func (c *Catalog) Lookup(name string) (domain.Gift, bool) {
	g, ok := c.byName[name]
	return g, ok
}

func (c *Catalog) List() []domain.Gift {
	return append([]domain.Gift(nil), c.ordered...)
}

// DefaultGifts is the built-in catalog used when config lists none.
func DefaultGifts() []domain.Gift {
	return []domain.Gift{
		{Name: "Rosa", Price: 5, Category: "popular"},
		{Name: "Heart", Price: 10, Category: "popular"},
		{Name: "Fan Club", Price: 30, Category: "exclusive", TriggersAutoFollow: true},
		{Name: "Perfume", Price: 99, Category: "popular"},
		{Name: "Sports Car", Price: 1000, Category: "luxury", Effect: "fullscreen"},
		{Name: "Rocket", Price: 5000, Category: "luxury", Effect: "fullscreen", TriggersAutoFollow: true},
	}
}
