package entity

import (
	"strings"
	"time"
)

// Product is one recommended piece of gear. JSON tags follow the backend contract.
type Product struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	PriceRange  string   `json:"priceRange"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	Highlight   string   `json:"highlight"`
	StoreLinks  []string `json:"storeLink,omitempty"`
}

func (p Product) HasStoreLinks() bool {
	return len(p.StoreLinks) > 0
}

// Category groups products under a title, in backend display order.
type Category struct {
	Title    string    `json:"categoryTitle"`
	Products []Product `json:"products"`
}

// RecommendationSet is the full result returned for one submitted prompt.
type RecommendationSet struct {
	Categories []Category `json:"categories"`
	ID         string     `json:"id,omitempty"`
	PromptText string     `json:"prompt_text,omitempty"`
	CreatedAt  string     `json:"created_at,omitempty"`
}

// ProductCount returns the number of products across all categories.
func (r *RecommendationSet) ProductCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.Categories {
		n += len(c.Products)
	}
	return n
}

// HistoryItem is a summary row pointing at a stored RecommendationSet.
type HistoryItem struct {
	ID         string `json:"id"`
	PromptText string `json:"prompt_text"`
	CreatedAt  string `json:"created_at"`
}

var storeNames = []struct {
	host string
	name string
}{
	{"rei.com", "REI"},
	{"evo.com", "Evo"},
	{"backcountry.com", "Backcountry"},
}

// StoreName labels a store link by the retailer it points to.
func StoreName(link string) string {
	lower := strings.ToLower(link)
	for _, s := range storeNames {
		if strings.Contains(lower, s.host) {
			return s.name
		}
	}
	return "Store"
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

// ParseTimestamp reads the backend's created_at values. The backend emits naive
// ISO timestamps (no zone) which are treated as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
