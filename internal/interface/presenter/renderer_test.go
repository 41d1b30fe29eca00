package presenter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wichananm65/slopeselector/internal/domain/entity"
	"github.com/wichananm65/slopeselector/internal/usecase"
)

func resultsState() usecase.State {
	s := usecase.InitialState()
	s.Page = usecase.PageResults
	s.Results = &entity.RecommendationSet{
		PromptText: "intermediate all-mountain skis",
		Categories: []entity.Category{{
			Title: "Skis",
			Products: []entity.Product{
				{Name: "Rossignol Experience 88", Brand: "Rossignol", Pros: []string{"stable"}, StoreLinks: []string{"https://www.rei.com/p/1", "https://shop.example.com/x"}},
				{Name: "Burton Custom", Brand: "Burton", Cons: []string{"stiff"}},
			},
		}},
	}
	return s
}

func mustRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	return r
}

func TestNewPageView_StoreLinksAndSuggestion(t *testing.T) {
	view := NewPageView(resultsState())
	products := view.Results.Categories[0].Products

	links := products[0].StoreLinks
	if len(links) != 2 || links[0].Label != "REI" || links[1].Label != "Store" {
		t.Fatalf("unexpected store links %+v", links)
	}
	if products[0].SearchSuggestion != "" {
		t.Fatalf("expected no suggestion when links exist")
	}
	if products[1].SearchSuggestion != "Burton Custom" || len(products[1].StoreLinks) != 0 {
		t.Fatalf("expected search fallback, got %+v", products[1])
	}
}

func TestNewPageView_HistoryRows(t *testing.T) {
	s := usecase.InitialState()
	s.History = []entity.HistoryItem{
		{ID: "a", PromptText: "powder", CreatedAt: "2025-01-02T15:04:05.123456"},
		{ID: "b", PromptText: "park", CreatedAt: "not a date"},
	}
	rows := NewPageView(s).History
	if rows[0].Number != 1 || rows[0].When != "Jan 2, 2025 at 3:04 PM" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].When != "not a date" {
		t.Fatalf("expected raw timestamp fallback, got %q", rows[1].When)
	}
}

func TestRenderHTML_Results(t *testing.T) {
	var buf bytes.Buffer
	if err := mustRenderer(t).RenderHTML(&buf, resultsState()); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := buf.String()
	for _, want := range []string{"SlopeSelector AI", "Rossignol Experience 88", "https://www.rei.com/p/1", "Search for:</strong> Burton Custom", `action="/back"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
}

func TestRenderHTML_LoadingDisablesControls(t *testing.T) {
	s := usecase.InitialState()
	s.Prompt = "skis"
	s.Loading = true

	var buf bytes.Buffer
	if err := mustRenderer(t).RenderHTML(&buf, s); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := buf.String()
	if !strings.Contains(body, "Getting Recommendations...") || !strings.Contains(body, "disabled") {
		t.Fatalf("expected disabled loading form, got:\n%s", body)
	}
	if !strings.Contains(body, `http-equiv="refresh"`) {
		t.Fatalf("expected refresh while loading")
	}
}

func TestRenderHTML_EscapesError(t *testing.T) {
	s := usecase.InitialState()
	s.Error = "<script>alert(1)</script>"

	var buf bytes.Buffer
	if err := mustRenderer(t).RenderHTML(&buf, s); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Fatalf("error banner must be escaped")
	}
}

func TestRenderText_History(t *testing.T) {
	r := mustRenderer(t)
	s := usecase.InitialState()
	s.Page = usecase.PageHistory
	s.HistoryLoaded = true

	var empty bytes.Buffer
	if err := r.RenderText(&empty, s); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(empty.String(), "No History Yet") {
		t.Fatalf("expected empty state, got:\n%s", empty.String())
	}

	s.History = []entity.HistoryItem{{ID: "a", PromptText: "powder skis", CreatedAt: "2025-01-02T03:04:05Z"}}
	var list bytes.Buffer
	if err := r.RenderText(&list, s); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(list.String(), "1. powder skis") {
		t.Fatalf("expected numbered row, got:\n%s", list.String())
	}
}

func TestRenderHTML_HistoryNotLoadedIsNotEmpty(t *testing.T) {
	r := mustRenderer(t)
	s := usecase.InitialState()
	s.Page = usecase.PageHistory
	s.Error = usecase.MsgHistoryFailed

	var failed bytes.Buffer
	if err := r.RenderHTML(&failed, s); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(failed.String(), "No History Yet") || !strings.Contains(failed.String(), "Try again") {
		t.Fatalf("expected retry control for an unloaded history, got:\n%s", failed.String())
	}

	s.Error = ""
	s.HistoryLoaded = true
	var empty bytes.Buffer
	if err := r.RenderHTML(&empty, s); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(empty.String(), "No History Yet") {
		t.Fatalf("expected empty state for a loaded empty history, got:\n%s", empty.String())
	}
}
