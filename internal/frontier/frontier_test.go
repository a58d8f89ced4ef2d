package frontier

import (
	"fmt"
	"sync"
	"testing"

	"github.com/nao1215/spiderkit/internal/model"
)

func req(url string, priority int, domain string) *model.CrawlRequest {
	return &model.CrawlRequest{URL: url, Priority: priority, OriginDomain: domain}
}

// TestVisitedMarkIfNew tests the exactly-once property.
func TestVisitedMarkIfNew(t *testing.T) {
	t.Parallel()

	t.Run("first sighting only", func(t *testing.T) {
		t.Parallel()

		v := NewVisited()
		if !v.MarkIfNew("https://shop.example/") {
			t.Error("expected true on first sighting")
		}
		for i := 0; i < 5; i++ {
			if v.MarkIfNew("https://shop.example/") {
				t.Fatal("expected false on repeat sighting")
			}
		}
		if !v.MarkIfNew("https://shop.example/other") {
			t.Error("expected true for a different URL")
		}
	})

	t.Run("exactly once under concurrency", func(t *testing.T) {
		t.Parallel()

		v := NewVisited()
		const goroutines = 32
		var wg sync.WaitGroup
		results := make(chan bool, goroutines)

		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- v.MarkIfNew("https://shop.example/contended")
			}()
		}
		wg.Wait()
		close(results)

		trues := 0
		for r := range results {
			if r {
				trues++
			}
		}
		if trues != 1 {
			t.Errorf("MarkIfNew returned true %d times, want exactly 1", trues)
		}
	})

	t.Run("tracking continues past exact capacity", func(t *testing.T) {
		t.Parallel()

		v := NewVisited(WithExactCapacity(4))
		for i := 0; i < 20; i++ {
			url := fmt.Sprintf("https://shop.example/p/%d", i)
			if !v.MarkIfNew(url) {
				t.Fatalf("expected first sighting of %s to be new", url)
			}
		}
		for i := 0; i < 20; i++ {
			url := fmt.Sprintf("https://shop.example/p/%d", i)
			if v.MarkIfNew(url) {
				t.Errorf("URL %s reported new twice", url)
			}
		}
	})
}

// TestFrontierOrdering tests priority-then-FIFO dequeue order.
func TestFrontierOrdering(t *testing.T) {
	t.Parallel()

	t.Run("higher priority first", func(t *testing.T) {
		t.Parallel()

		f := New()
		f.Enqueue([]*model.CrawlRequest{
			req("https://shop.example/cat/a", 50, "shop.example"),
			req("https://shop.example/p/1", 180, "shop.example"),
			req("https://shop.example/cat/b?page=2", 100, "shop.example"),
		})

		wantOrder := []string{
			"https://shop.example/p/1",
			"https://shop.example/cat/b?page=2",
			"https://shop.example/cat/a",
		}
		for _, want := range wantOrder {
			got, ok := f.DequeueNext()
			if !ok {
				t.Fatal("frontier drained early")
			}
			if got.URL != want {
				t.Errorf("dequeued %s, want %s", got.URL, want)
			}
		}
	})

	t.Run("FIFO within equal priority", func(t *testing.T) {
		t.Parallel()

		f := New()
		var batch []*model.CrawlRequest
		for i := 0; i < 10; i++ {
			batch = append(batch, req(fmt.Sprintf("https://shop.example/cat/%d", i), 0, "shop.example"))
		}
		f.Enqueue(batch)

		for i := 0; i < 10; i++ {
			got, ok := f.DequeueNext()
			if !ok {
				t.Fatal("frontier drained early")
			}
			want := fmt.Sprintf("https://shop.example/cat/%d", i)
			if got.URL != want {
				t.Errorf("dequeue %d: got %s, want %s (breadth-first broken)", i, got.URL, want)
			}
		}
	})
}

// TestFrontierBounds tests size caps, domain caps, and eviction.
func TestFrontierBounds(t *testing.T) {
	t.Parallel()

	t.Run("total size cap evicts lowest priority", func(t *testing.T) {
		t.Parallel()

		f := New(WithMaxSize(3))
		n := f.Enqueue([]*model.CrawlRequest{
			req("https://shop.example/a", 10, "shop.example"),
			req("https://shop.example/b", 20, "shop.example"),
			req("https://shop.example/c", 30, "shop.example"),
		})
		if n != 3 {
			t.Fatalf("accepted %d, want 3", n)
		}

		// Higher priority than the resident minimum: should evict "a".
		if n := f.Enqueue([]*model.CrawlRequest{req("https://shop.example/d", 40, "shop.example")}); n != 1 {
			t.Fatalf("accepted %d, want 1", n)
		}
		if f.Len() != 3 {
			t.Errorf("Len() = %d, want 3 (cap held)", f.Len())
		}

		// Lower priority than everything resident: rejected outright.
		if n := f.Enqueue([]*model.CrawlRequest{req("https://shop.example/e", 5, "shop.example")}); n != 0 {
			t.Errorf("accepted %d, want 0", n)
		}

		urls := drain(f)
		for _, u := range urls {
			if u == "https://shop.example/a" {
				t.Error("lowest-priority request a should have been evicted")
			}
			if u == "https://shop.example/e" {
				t.Error("underpriority request e should have been rejected")
			}
		}
		overflow, _ := f.Stats()
		if overflow != 2 {
			t.Errorf("overflowDropped = %d, want 2", overflow)
		}
	})

	t.Run("per-domain cap", func(t *testing.T) {
		t.Parallel()

		f := New(WithPerDomainCap(2))
		n := f.Enqueue([]*model.CrawlRequest{
			req("https://a.example/1", 0, "a.example"),
			req("https://a.example/2", 0, "a.example"),
			req("https://a.example/3", 0, "a.example"),
			req("https://b.example/1", 0, "b.example"),
		})
		if n != 3 {
			t.Errorf("accepted %d, want 3 (third a.example dropped)", n)
		}
		_, domainDropped := f.Stats()
		if domainDropped != 1 {
			t.Errorf("domainCapDropped = %d, want 1", domainDropped)
		}
	})

	t.Run("dequeue budget terminates gracefully", func(t *testing.T) {
		t.Parallel()

		f := New(WithBudget(2))
		f.Enqueue([]*model.CrawlRequest{
			req("https://shop.example/a", 0, "shop.example"),
			req("https://shop.example/b", 0, "shop.example"),
			req("https://shop.example/c", 0, "shop.example"),
		})

		for i := 0; i < 2; i++ {
			if _, ok := f.DequeueNext(); !ok {
				t.Fatal("expected dequeue within budget to succeed")
			}
		}
		if _, ok := f.DequeueNext(); ok {
			t.Error("expected empty result after budget exhaustion")
		}
		if f.Len() != 1 {
			t.Errorf("Len() = %d, want 1 (remaining entry stays queued)", f.Len())
		}
	})
}

// TestFrontierRoundRobin tests domain alternation on dequeue.
func TestFrontierRoundRobin(t *testing.T) {
	t.Parallel()

	f := New(WithDomainRoundRobin())
	f.Enqueue([]*model.CrawlRequest{
		req("https://a.example/1", 0, "a.example"),
		req("https://a.example/2", 0, "a.example"),
		req("https://a.example/3", 0, "a.example"),
		req("https://b.example/1", 0, "b.example"),
		req("https://b.example/2", 0, "b.example"),
	})

	var domains []string
	for {
		r, ok := f.DequeueNext()
		if !ok {
			break
		}
		domains = append(domains, r.OriginDomain)
	}

	if len(domains) != 5 {
		t.Fatalf("dequeued %d, want 5", len(domains))
	}
	// No domain may be served twice in a row while the other still waits.
	for i := 1; i < 4; i++ {
		if domains[i] == domains[i-1] {
			t.Errorf("position %d: domain %s served twice in a row: %v", i, domains[i], domains)
		}
	}
}

func drain(f *Frontier) []string {
	var urls []string
	for {
		r, ok := f.DequeueNext()
		if !ok {
			return urls
		}
		urls = append(urls, r.URL)
	}
}
