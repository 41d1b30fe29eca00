package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/slopeselector/internal/domain/entity"
	"github.com/wichananm65/slopeselector/internal/interface/presenter"
	"github.com/wichananm65/slopeselector/internal/usecase"
)

type cliRepo struct {
	opened []string
}

func (r *cliRepo) SubmitPrompt(ctx context.Context, prompt, userID string) (*entity.RecommendationSet, error) {
	return &entity.RecommendationSet{PromptText: prompt, Categories: []entity.Category{{
		Title:    "Skis",
		Products: []entity.Product{{Name: "Rossignol Experience 88", StoreLinks: []string{"https://www.evo.com/x"}}},
	}}}, nil
}

func (r *cliRepo) ListHistory(ctx context.Context, userID string) ([]entity.HistoryItem, error) {
	return []entity.HistoryItem{{ID: "abc123", PromptText: "powder skis", CreatedAt: "2025-01-02T03:04:05Z"}}, nil
}

func (r *cliRepo) GetRecommendationSet(ctx context.Context, id string) (*entity.RecommendationSet, error) {
	r.opened = append(r.opened, id)
	return &entity.RecommendationSet{ID: id, Categories: []entity.Category{{Title: "Boards", Products: []entity.Product{{Name: "Burton Custom"}}}}}, nil
}

func runScript(t *testing.T, repo *cliRepo, script string) (string, *usecase.Controller) {
	t.Helper()
	log := logrus.New()
	log.Out = io.Discard
	renderer, err := presenter.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	ctrl := usecase.NewController("user-1", repo, log, time.Second)

	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(script), &out, ctrl, renderer, log); err != nil {
		t.Fatalf("run: %v", err)
	}
	ctrl.Wait()
	return out.String(), ctrl
}

func TestRun_SubmitShowsProducts(t *testing.T) {
	out, ctrl := runScript(t, &cliRepo{}, "all-mountain skis\n")
	if !strings.Contains(out, "Rossignol Experience 88") || !strings.Contains(out, "Evo: https://www.evo.com/x") {
		t.Fatalf("expected product output, got:\n%s", out)
	}
	if ctrl.State().Page != usecase.PageResults {
		t.Fatalf("expected results page, got %s", ctrl.State().Page)
	}
}

func TestRun_OpenHistoryEntry(t *testing.T) {
	repo := &cliRepo{}
	out, ctrl := runScript(t, repo, "/open 1\n/history\n/open 9\n/open 1\n")
	if !strings.Contains(out, "open the history first") {
		t.Fatalf("expected history hint, got:\n%s", out)
	}
	if !strings.Contains(out, "1. powder skis") || !strings.Contains(out, "no history entry 9") {
		t.Fatalf("expected history listing and range error, got:\n%s", out)
	}
	if len(repo.opened) != 1 || repo.opened[0] != "abc123" {
		t.Fatalf("expected abc123 opened once, got %v", repo.opened)
	}
	if !strings.Contains(out, "Burton Custom") || ctrl.State().Page != usecase.PageResults {
		t.Fatalf("expected reopened set, got:\n%s", out)
	}
}

func TestRun_QuitStopsReading(t *testing.T) {
	repo := &cliRepo{}
	out, ctrl := runScript(t, repo, "/help\n/quit\nskis\n")
	if !strings.Contains(out, "/open N") {
		t.Fatalf("expected help text, got:\n%s", out)
	}
	if ctrl.State().Page != usecase.PageHome {
		t.Fatalf("input after /quit must be ignored")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	out, _ := runScript(t, &cliRepo{}, "/frobnicate\n")
	if !strings.Contains(out, "unknown command /frobnicate") {
		t.Fatalf("expected unknown command message, got:\n%s", out)
	}
}
