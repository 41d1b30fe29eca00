package presenter

import (
	"github.com/wichananm65/slopeselector/internal/domain/entity"
	"github.com/wichananm65/slopeselector/internal/usecase"
)

const dateLayout = "Jan 2, 2006 at 3:04 PM"

// PageView is the read-only shape the templates draw.
type PageView struct {
	Page      usecase.Page
	Prompt    string
	Loading   bool
	CanSubmit bool
	Error     string

	Results       *ResultsView
	History       []HistoryRow
	HistoryLoaded bool
}

type ResultsView struct {
	PromptText string
	Categories []CategoryView
}

type CategoryView struct {
	Title    string
	Products []ProductView
}

type ProductView struct {
	Name        string
	Brand       string
	Highlight   string
	Description string
	PriceRange  string
	Pros        []string
	Cons        []string
	StoreLinks  []StoreLink
	// SearchSuggestion is set when the product has no store link.
	SearchSuggestion string
}

type StoreLink struct {
	Label string
	URL   string
}

// HistoryRow is one selectable history entry. Number is 1-based for display.
type HistoryRow struct {
	Number     int
	ID         string
	PromptText string
	When       string
}

func (p PageView) IsHome() bool    { return p.Page == usecase.PageHome }
func (p PageView) IsResults() bool { return p.Page == usecase.PageResults }
func (p PageView) IsHistory() bool { return p.Page == usecase.PageHistory }

// NewPageView maps controller state to its view model.
func NewPageView(s usecase.State) PageView {
	view := PageView{
		Page:          s.Page,
		Prompt:        s.Prompt,
		Loading:       s.Loading,
		CanSubmit:     s.CanSubmit(),
		Error:         s.Error,
		HistoryLoaded: s.HistoryLoaded,
		Results:       toResults(s.Results),
		History:       make([]HistoryRow, 0, len(s.History)),
	}
	for i, item := range s.History {
		view.History = append(view.History, HistoryRow{
			Number:     i + 1,
			ID:         item.ID,
			PromptText: item.PromptText,
			When:       FormatDate(item.CreatedAt),
		})
	}
	return view
}

func toResults(set *entity.RecommendationSet) *ResultsView {
	if set == nil {
		return nil
	}
	results := &ResultsView{
		PromptText: set.PromptText,
		Categories: make([]CategoryView, 0, len(set.Categories)),
	}
	for _, category := range set.Categories {
		cv := CategoryView{Title: category.Title, Products: make([]ProductView, 0, len(category.Products))}
		for _, product := range category.Products {
			cv.Products = append(cv.Products, toProduct(product))
		}
		results.Categories = append(results.Categories, cv)
	}
	return results
}

func toProduct(p entity.Product) ProductView {
	view := ProductView{
		Name:        p.Name,
		Brand:       p.Brand,
		Highlight:   p.Highlight,
		Description: p.Description,
		PriceRange:  p.PriceRange,
		Pros:        p.Pros,
		Cons:        p.Cons,
	}
	if !p.HasStoreLinks() {
		view.SearchSuggestion = p.Name
		return view
	}
	for _, link := range p.StoreLinks {
		view.StoreLinks = append(view.StoreLinks, StoreLink{Label: entity.StoreName(link), URL: link})
	}
	return view
}

// FormatDate renders a backend timestamp as date and time. Unparseable values are
// shown as sent.
func FormatDate(raw string) string {
	t, ok := entity.ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format(dateLayout)
}
