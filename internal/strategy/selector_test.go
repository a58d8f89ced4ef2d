package strategy

import (
	"testing"

	"github.com/nao1215/spiderkit/internal/heuristics"
	"github.com/nao1215/spiderkit/internal/model"
)

// navigationLinks is a typical category page: subcategories, items, pager.
func navigationLinks() []heuristics.Link {
	return []heuristics.Link{
		{URL: "https://shop.example/cat/shoes", Text: "Shoes"},
		{URL: "https://shop.example/cat/hats", Text: "Hats"},
		{URL: "https://shop.example/p/42", Text: "Blue Widget"},
		{URL: "https://shop.example/cat/1?page=2", Text: "Next"},
	}
}

// TestDecideFull tests the full strategy: follow everything, emit items.
func TestDecideFull(t *testing.T) {
	t.Parallel()

	s := NewSelector(model.StrategyFull)

	t.Run("navigation page follows all links", func(t *testing.T) {
		t.Parallel()

		d := s.Decide(model.PageTypeNavigation, 0.8, navigationLinks())
		if d.Emit {
			t.Error("navigation page must not be emitted")
		}
		if len(d.Follow) != 4 {
			t.Errorf("expected 4 candidates, got %d", len(d.Follow))
		}
		if d.NextState != StateNavigation {
			t.Errorf("NextState = %v, want navigation", d.NextState)
		}
	})

	t.Run("item page emits and follows", func(t *testing.T) {
		t.Parallel()

		d := s.Decide(model.PageTypeItem, 0.9, navigationLinks())
		if !d.Emit {
			t.Error("item page must be emitted")
		}
		if len(d.Follow) != 4 {
			t.Errorf("expected 4 candidates, got %d", len(d.Follow))
		}
	})

	t.Run("unknown page treated as navigation", func(t *testing.T) {
		t.Parallel()

		d := s.Decide(model.PageTypeUnknown, 0.2, navigationLinks())
		if d.Emit {
			t.Error("unknown page must not be emitted")
		}
		if len(d.Follow) != 4 {
			t.Errorf("expected 4 candidates, got %d", len(d.Follow))
		}
	})

	t.Run("priorities rank items over pagination over navigation", func(t *testing.T) {
		t.Parallel()

		d := s.Decide(model.PageTypeNavigation, 0.8, navigationLinks())
		byURL := make(map[string]Candidate, len(d.Follow))
		for _, c := range d.Follow {
			byURL[c.Link.URL] = c
		}

		item := byURL["https://shop.example/p/42"]
		pager := byURL["https://shop.example/cat/1?page=2"]
		nav := byURL["https://shop.example/cat/shoes"]

		if item.Kind != KindItem || pager.Kind != KindPagination || nav.Kind != KindNavigation {
			t.Fatalf("unexpected kinds: item=%v pager=%v nav=%v", item.Kind, pager.Kind, nav.Kind)
		}
		if item.Priority != model.NextPagePriority+80 {
			t.Errorf("item priority = %d, want %d", item.Priority, model.NextPagePriority+80)
		}
		if pager.Priority != model.NextPagePriority {
			t.Errorf("pagination priority = %d, want %d", pager.Priority, model.NextPagePriority)
		}
		if nav.Priority != 80 {
			t.Errorf("navigation priority = %d, want 80", nav.Priority)
		}
		if !(item.Priority > pager.Priority && pager.Priority > nav.Priority) {
			t.Error("expected item > pagination > navigation priority ordering")
		}
	})
}

// TestDecideNavigationOnly tests that nothing is ever emitted.
func TestDecideNavigationOnly(t *testing.T) {
	t.Parallel()

	s := NewSelector(model.StrategyNavigationOnly)

	for _, pageType := range model.PageTypes() {
		d := s.Decide(pageType, 0.9, navigationLinks())
		if d.Emit {
			t.Errorf("mode navigation_only emitted a %v page", pageType)
		}
	}

	t.Run("item pages are leaves", func(t *testing.T) {
		t.Parallel()

		d := s.Decide(model.PageTypeItem, 0.9, navigationLinks())
		if len(d.Follow) != 0 {
			t.Errorf("expected no candidates from item page, got %d", len(d.Follow))
		}
		if d.NextState != StateTerminal {
			t.Errorf("NextState = %v, want terminal", d.NextState)
		}
	})

	t.Run("unknown pages are followed", func(t *testing.T) {
		t.Parallel()

		d := s.Decide(model.PageTypeUnknown, 0.3, navigationLinks())
		if len(d.Follow) != 4 {
			t.Errorf("expected 4 candidates, got %d", len(d.Follow))
		}
	})
}

// TestDecideItemsOnly tests that no links are ever followed.
func TestDecideItemsOnly(t *testing.T) {
	t.Parallel()

	s := NewSelector(model.StrategyItemsOnly)

	for _, pageType := range model.PageTypes() {
		d := s.Decide(pageType, 0.9, navigationLinks())
		if len(d.Follow) != 0 {
			t.Errorf("mode items_only produced %d candidates from a %v page", len(d.Follow), pageType)
		}
	}

	if d := s.Decide(model.PageTypeItem, 0.9, navigationLinks()); !d.Emit {
		t.Error("expected item page to be emitted")
	}
	if d := s.Decide(model.PageTypeNavigation, 0.9, navigationLinks()); d.Emit {
		t.Error("navigation page must not be emitted")
	}
	if d := s.Decide(model.PageTypeUnknown, 0.2, navigationLinks()); d.Emit || len(d.Follow) != 0 {
		t.Error("unknown page must be a leaf in items_only")
	}
}

// TestDecidePaginationOnly tests pagination filtering and suppression.
func TestDecidePaginationOnly(t *testing.T) {
	t.Parallel()

	s := NewSelector(model.StrategyPaginationOnly)

	t.Run("item page follows exactly the next link", func(t *testing.T) {
		t.Parallel()

		links := []heuristics.Link{
			{URL: "https://shop.example/about", Text: "About"},
			{URL: "https://shop.example/cat/shoes", Text: "Shoes"},
			{URL: "https://shop.example/help", Text: "Help"},
			{URL: "https://shop.example/cat/1?page=2", Text: "Next"},
			{URL: "https://shop.example/brand/acme", Text: "Acme"},
			{URL: "https://shop.example/contact", Text: "Contact"},
		}
		d := s.Decide(model.PageTypeItem, 0.9, links)
		if !d.Emit {
			t.Error("item page must be emitted")
		}
		if len(d.Follow) != 1 {
			t.Fatalf("expected exactly 1 candidate, got %d", len(d.Follow))
		}
		if d.Follow[0].Link.URL != "https://shop.example/cat/1?page=2" {
			t.Errorf("followed %q, want the Next link", d.Follow[0].Link.URL)
		}
	})

	t.Run("navigation page with items follows pagination", func(t *testing.T) {
		t.Parallel()

		d := s.Decide(model.PageTypeNavigation, 0.8, navigationLinks())
		if len(d.Follow) != 1 {
			t.Fatalf("expected 1 pagination candidate, got %d", len(d.Follow))
		}
		if d.Follow[0].Kind != KindPagination {
			t.Errorf("Kind = %v, want pagination", d.Follow[0].Kind)
		}
		if d.PaginationSuppressed {
			t.Error("pagination must not be suppressed when item links exist")
		}
	})

	t.Run("pagination suppressed without item links", func(t *testing.T) {
		t.Parallel()

		links := []heuristics.Link{
			{URL: "https://shop.example/cat/shoes", Text: "Shoes"},
			{URL: "https://shop.example/cat/1?page=2", Text: "Next"},
		}
		d := s.Decide(model.PageTypeNavigation, 0.8, links)
		if len(d.Follow) != 0 {
			t.Errorf("expected suppression, got %d candidates", len(d.Follow))
		}
		if !d.PaginationSuppressed {
			t.Error("expected PaginationSuppressed to be set")
		}
	})

	t.Run("unknown pages are leaves", func(t *testing.T) {
		t.Parallel()

		d := s.Decide(model.PageTypeUnknown, 0.2, navigationLinks())
		if d.Emit || len(d.Follow) != 0 {
			t.Error("unknown page must be a leaf in pagination_only")
		}
	})
}
