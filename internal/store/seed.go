package store

import (
	"fmt"
	"os"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"gopkg.in/yaml.v3"
)

const defaultSeedYAML = `# starter catalog used when the store has no products yet
products:
  - id: p1
    name: Royal Oak Skeleton
    brand: Audemars Piguet
    category: Luxury
    description: A masterpiece of Swiss horology with skeletonized dial and self-winding mechanism.
    price: 45000
    stock: 5
    colors: [Silver, Gold]
    age_group: Adult
    image_url: https://images.unsplash.com/photo-1523170335258-f5ed11844a49?auto=format&fit=crop&q=80&w=800
  - id: p2
    name: G-Shock Mudmaster
    brand: Casio
    category: Sports
    description: Engineered for extreme environments with dirt resistance and triple sensor technology.
    price: 12000
    stock: 20
    colors: [Black, Olive, Sand]
    age_group: All Ages
    image_url: https://images.unsplash.com/photo-1547996160-81dfa63595aa?auto=format&fit=crop&q=80&w=800
  - id: p3
    name: Classic Heritage
    brand: Tissot
    category: Formal
    description: Minimalist design with leather strap for professional elegance.
    price: 8500
    stock: 12
    colors: [Brown, Black]
    age_group: Adult
    image_url: https://images.unsplash.com/photo-1524805444758-089113d48a6d?auto=format&fit=crop&q=80&w=800

offers:
  - id: off1
    title: Grand Launch Sale
    description: Get 20% off on all Luxury items.
    image_url: https://picsum.photos/1200/400?random=1
  - id: off2
    title: Eid Collection
    description: Special formal watches for special moments.
    image_url: https://picsum.photos/1200/400?random=2

merchant:
  bkash: "01712345678"
  nagad: "01912345678"
`

type SeedProduct struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Brand       string   `yaml:"brand"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Price       int      `yaml:"price"`
	Stock       int      `yaml:"stock"`
	Colors      []string `yaml:"colors"`
	AgeGroup    string   `yaml:"age_group"`
	ImageURL    string   `yaml:"image_url"`
}

type SeedOffer struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
	Type        string `yaml:"type,omitempty"`
}

// Seed is what an empty store starts from.
type Seed struct {
	Products []SeedProduct `yaml:"products"`
	Offers   []SeedOffer   `yaml:"offers"`
	Merchant struct {
		Bkash string `yaml:"bkash"`
		Nagad string `yaml:"nagad"`
	} `yaml:"merchant"`
}

func DefaultSeed() Seed {
	s, err := ParseSeed([]byte(defaultSeedYAML))
	if err != nil {
		panic(fmt.Sprintf("store: default seed: %v", err))
	}
	return s
}

// LoadSeed reads a seed document from path. An empty path yields the
// built-in catalog.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("store: read seed: %w", err)
	}
	return ParseSeed(b)
}

func ParseSeed(b []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Seed{}, fmt.Errorf("store: parse seed: %w", err)
	}
	for _, p := range s.products() {
		if err := p.Validate(); err != nil {
			return Seed{}, fmt.Errorf("store: seed product %s: %w", p.ID, err)
		}
	}
	return s, nil
}

func (s Seed) products() []orders.Product {
	out := make([]orders.Product, 0, len(s.Products))
	for _, p := range s.Products {
		out = append(out, orders.Product{
			ID:          p.ID,
			Name:        p.Name,
			Brand:       p.Brand,
			Category:    orders.Category(p.Category),
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			Colors:      append([]string(nil), p.Colors...),
			AgeGroup:    p.AgeGroup,
			ImageURL:    p.ImageURL,
		})
	}
	return out
}

func (s Seed) offers() []orders.Offer {
	out := make([]orders.Offer, 0, len(s.Offers))
	for _, o := range s.Offers {
		out = append(out, orders.Offer{
			ID:          o.ID,
			Title:       o.Title,
			Description: o.Description,
			ImageURL:    o.ImageURL,
			Type:        orders.OfferType(o.Type),
		})
	}
	return out
}
