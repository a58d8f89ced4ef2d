package database

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/spiderkit/internal/model"
)

func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return cdb
}

// TestOpenRequiresExisting tests the CreateIfNotExists option.
func TestOpenRequiresExisting(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
	if err == nil {
		t.Error("expected error opening a missing database without create")
	}
}

// TestSaveAndGetPages tests page persistence and the UPSERT on refetch.
func TestSaveAndGetPages(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	record := &model.PageRecord{
		URL:            "https://shop.example/p/42",
		StatusCode:     200,
		ContentType:    "text/html",
		Title:          "Blue Widget",
		Classification: model.PageTypeItem,
		Confidence:     0.93,
		Depth:          2,
		OriginDomain:   "shop.example",
		Hash:           "abc123",
	}
	if err := cdb.SavePage(ctx, "run-1", record); err != nil {
		t.Fatalf("SavePage returned error: %v", err)
	}

	// Saving the same URL again for the same run must update, not duplicate.
	record.Title = "Blue Widget v2"
	if err := cdb.SavePage(ctx, "run-1", record); err != nil {
		t.Fatalf("SavePage (update) returned error: %v", err)
	}

	// The same URL under another run is a separate row.
	if err := cdb.SavePage(ctx, "run-2", record); err != nil {
		t.Fatalf("SavePage (second run) returned error: %v", err)
	}

	pages, err := cdb.GetPages(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetPages returned error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages for run-1, want 1", len(pages))
	}
	if pages[0].Title != "Blue Widget v2" {
		t.Errorf("Title = %q, want the updated value", pages[0].Title)
	}
	if pages[0].PageType != "item" {
		t.Errorf("PageType = %q, want item", pages[0].PageType)
	}
	if pages[0].Depth != 2 {
		t.Errorf("Depth = %d, want 2", pages[0].Depth)
	}
}

// TestPageTypeCounts tests the per-run type distribution query.
func TestPageTypeCounts(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	records := []*model.PageRecord{
		{URL: "https://shop.example/", Classification: model.PageTypeNavigation, OriginDomain: "shop.example"},
		{URL: "https://shop.example/cat/1", Classification: model.PageTypeNavigation, OriginDomain: "shop.example"},
		{URL: "https://shop.example/p/1", Classification: model.PageTypeItem, OriginDomain: "shop.example"},
	}
	for _, r := range records {
		if err := cdb.SavePage(ctx, "run-1", r); err != nil {
			t.Fatalf("SavePage returned error: %v", err)
		}
	}

	counts, err := cdb.PageTypeCounts(ctx, "run-1")
	if err != nil {
		t.Fatalf("PageTypeCounts returned error: %v", err)
	}
	if counts["navigation"] != 2 || counts["item"] != 1 {
		t.Errorf("counts = %v, want 2 navigation / 1 item", counts)
	}
}

// TestSaveAndGetRun tests run summary round-tripping.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	summary := &model.RunSummary{
		RunID:             "run-9",
		Seeds:             []string{"https://shop.example/"},
		StrategyName:      "full",
		StartTime:         time.Now().Add(-time.Minute),
		EndTime:           time.Now(),
		PagesFetched:      7,
		PagesEmitted:      4,
		PagesByType:       map[string]int{"item": 4, "navigation": 3},
		TerminationReason: "frontier-empty",
	}
	if err := cdb.SaveRun(ctx, summary); err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}

	got, err := cdb.GetRun(ctx, "run-9")
	if err != nil {
		t.Fatalf("GetRun returned error: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil for a stored run")
	}
	if got.PagesFetched != 7 || got.PagesEmitted != 4 {
		t.Errorf("counters = %d/%d, want 7/4", got.PagesFetched, got.PagesEmitted)
	}
	if got.PagesByType["item"] != 4 {
		t.Errorf("PagesByType = %v, want 4 items", got.PagesByType)
	}
	if got.TerminationReason != "frontier-empty" {
		t.Errorf("TerminationReason = %q, want frontier-empty", got.TerminationReason)
	}

	missing, err := cdb.GetRun(ctx, "no-such-run")
	if err != nil {
		t.Fatalf("GetRun returned error for missing run: %v", err)
	}
	if missing != nil {
		t.Error("GetRun should return nil for an unknown run")
	}
}

// TestListRuns tests run history listing.
func TestListRuns(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		summary := &model.RunSummary{
			RunID:             id,
			StrategyName:      "full",
			StartTime:         base.Add(time.Duration(i) * time.Minute),
			EndTime:           base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			PagesFetched:      i + 1,
			TerminationReason: "frontier-empty",
		}
		if err := cdb.SaveRun(ctx, summary); err != nil {
			t.Fatalf("SaveRun returned error: %v", err)
		}
	}

	runs, err := cdb.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "run-c" {
		t.Errorf("newest run = %q, want run-c", runs[0].RunID)
	}

	all, err := cdb.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d runs, want all 3", len(all))
	}
}

// TestHasRecentFetch tests the cross-run refetch check.
func TestHasRecentFetch(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	record := &model.PageRecord{
		URL:            "https://shop.example/p/42",
		Classification: model.PageTypeItem,
		OriginDomain:   "shop.example",
	}
	if err := cdb.SavePage(ctx, "run-1", record); err != nil {
		t.Fatalf("SavePage returned error: %v", err)
	}

	recent, err := cdb.HasRecentFetch(ctx, record.URL, time.Hour)
	if err != nil {
		t.Fatalf("HasRecentFetch returned error: %v", err)
	}
	if !recent {
		t.Error("expected a just-saved page to count as recent")
	}

	recent, err = cdb.HasRecentFetch(ctx, "https://shop.example/never", time.Hour)
	if err != nil {
		t.Fatalf("HasRecentFetch returned error: %v", err)
	}
	if recent {
		t.Error("expected an unknown URL to not be recent")
	}
}
