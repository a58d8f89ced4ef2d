package urlutil

import (
	"errors"
	"testing"
)

// TestNormalize tests URL canonicalization.
func TestNormalize(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()

	t.Run("canonical forms", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			raw  string
			base string
			want string
		}{
			{
				name: "lowercases scheme and host",
				raw:  "HTTPS://Shop.Example/Path",
				want: "https://shop.example/Path",
			},
			{
				name: "removes default http port",
				raw:  "http://shop.example:80/a",
				want: "http://shop.example/a",
			},
			{
				name: "removes default https port",
				raw:  "https://shop.example:443/a",
				want: "https://shop.example/a",
			},
			{
				name: "keeps non-default port",
				raw:  "http://shop.example:8080/a",
				want: "http://shop.example:8080/a",
			},
			{
				name: "removes fragment",
				raw:  "https://shop.example/a#section",
				want: "https://shop.example/a",
			},
			{
				name: "empty path becomes root",
				raw:  "https://shop.example",
				want: "https://shop.example/",
			},
			{
				name: "strips trailing slash",
				raw:  "https://shop.example/cat/1/",
				want: "https://shop.example/cat/1",
			},
			{
				name: "collapses dot segments",
				raw:  "https://shop.example/a/../b//c",
				want: "https://shop.example/b/c",
			},
			{
				name: "sorts query parameters",
				raw:  "https://shop.example/p?b=2&a=1",
				want: "https://shop.example/p?a=1&b=2",
			},
			{
				name: "strips tracking parameters",
				raw:  "https://shop.example/p?utm_source=mail&id=7&fbclid=x",
				want: "https://shop.example/p?id=7",
			},
			{
				name: "strips sort order",
				raw:  "https://shop.example/cat/1?sort=asc",
				want: "https://shop.example/cat/1",
			},
			{
				name: "strips presentation parameters but keeps content ones",
				raw:  "https://shop.example/cat/1?order=price&view=grid&dir=desc&page=2",
				want: "https://shop.example/cat/1?page=2",
			},
			{
				name: "resolves relative against base",
				raw:  "../cat/2",
				base: "https://shop.example/cat/1/page",
				want: "https://shop.example/cat/2",
			},
			{
				name: "resolves root-relative against base",
				raw:  "/p/42",
				base: "https://shop.example/cat/1",
				want: "https://shop.example/p/42",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				got, err := n.Normalize(tt.raw, tt.base)
				if err != nil {
					t.Fatalf("Normalize(%q, %q) returned error: %v", tt.raw, tt.base, err)
				}
				if got != tt.want {
					t.Errorf("Normalize(%q, %q) = %q, want %q", tt.raw, tt.base, got, tt.want)
				}
			})
		}
	})

	t.Run("rejects invalid candidates", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "#", "://bad", "/relative-without-base"} {
			if _, err := n.Normalize(raw, ""); !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Normalize(%q) error = %v, want ErrInvalidURL", raw, err)
			}
		}
	})

	t.Run("rejects unsupported schemes", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{
			"mailto:x@example.com",
			"javascript:void(0)",
			"ftp://shop.example/file",
			"data:text/html,hi",
		} {
			if _, err := n.Normalize(raw, "https://shop.example/"); !errors.Is(err, ErrUnsupportedScheme) {
				t.Errorf("Normalize(%q) error = %v, want ErrUnsupportedScheme", raw, err)
			}
		}
	})
}

// TestNormalizeIdempotent tests that normalization is a fixed point:
// normalize(normalize(u)) == normalize(u).
func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	inputs := []string{
		"HTTP://Shop.Example:80/Cat/1/?b=2&a=1&utm_source=x#frag",
		"https://shop.example/p/42",
		"https://shop.example",
		"https://sub.shop.example/a/../b?z=1&y=2",
	}

	for _, raw := range inputs {
		once, err := n.Normalize(raw, "")
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", raw, err)
		}
		twice, err := n.Normalize(once, "")
		if err != nil {
			t.Fatalf("Normalize(%q) (second pass) returned error: %v", once, err)
		}
		if once != twice {
			t.Errorf("normalization not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
}

// TestNormalizeOptions tests the configurable normalization policies.
func TestNormalizeOptions(t *testing.T) {
	t.Parallel()

	t.Run("order-sensitive params keep raw query", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer(WithOrderSensitiveParams([]string{"path"}))
		got, err := n.Normalize("https://shop.example/nav?path=b&path=a&x=1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "https://shop.example/nav?path=b&path=a&x=1"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("keep trailing slash", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer(WithKeepTrailingSlash())
		got, err := n.Normalize("https://shop.example/cat/1/", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "https://shop.example/cat/1/" {
			t.Errorf("got %q, want trailing slash preserved", got)
		}
	})

	t.Run("extra strip params", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer(WithStripParams([]string{"sessionid"}))
		got, err := n.Normalize("https://shop.example/p?sessionid=abc&id=7", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "https://shop.example/p?id=7" {
			t.Errorf("got %q, want sessionid stripped", got)
		}
	})

	t.Run("query variants collapse onto the bare URL", func(t *testing.T) {
		t.Parallel()

		n := NewNormalizer()
		bare, err := n.Normalize("/cat/1", "https://shop.example/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, raw := range []string{
			"/cat/1?sort=asc",
			"/cat/1?sort=desc&utm_source=mail",
			"https://SHOP.example/cat/1?sort=asc#top",
		} {
			got, err := n.Normalize(raw, "https://shop.example/")
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", raw, err)
			}
			if got != bare {
				t.Errorf("Normalize(%q) = %q, want %q", raw, got, bare)
			}
		}
	})
}

// TestDomain tests www-prefix stripping on hostnames.
func TestDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com", "example.com"},
		{"https://www.example.com", "example.com"},
		{"https://www2.example.com", "example.com"},
		{"https://prefixwww.example.com", "prefixwww.example.com"},
		{"https://wwworld.example.com", "wwworld.example.com"},
		{"https://my.wwworld-example.com", "my.wwworld-example.com"},
		{"https://wwwow.com", "wwwow.com"},
		{"https://wowww.com", "wowww.com"},
		{"https://awww.com", "awww.com"},
	}

	for _, tt := range tests {
		if got := Domain(tt.url); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

// TestRegistrableDomain tests eTLD+1 derivation including fallbacks.
func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://shop.example.com/p/1", "example.com"},
		{"https://sub1.sub2.example.co.uk/", "example.co.uk"},
		{"http://localhost:8080/", "localhost"},
	}

	for _, tt := range tests {
		if got := RegistrableDomain(tt.url); got != tt.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}

	if !SameRegistrableDomain("https://a.example.com/x", "https://b.example.com/y") {
		t.Error("expected subdomains of example.com to share a registrable domain")
	}
	if SameRegistrableDomain("https://example.com/", "https://example.org/") {
		t.Error("expected example.com and example.org to differ")
	}
}

// TestFingerprint tests the compact host fingerprint.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	bare := Fingerprint("https://example.com")
	sub := Fingerprint("https://sub.example.com")
	other := Fingerprint("https://example.org")

	if len(bare) != 4 {
		t.Fatalf("expected 4 hex chars, got %q", bare)
	}
	if bare[2:] != "00" {
		t.Errorf("expected zero subdomain byte for bare domain, got %q", bare)
	}
	if bare[:2] != sub[:2] {
		t.Errorf("expected same leading byte for same site: %q vs %q", bare, sub)
	}
	if bare == sub {
		t.Error("expected subdomain to change the fingerprint")
	}
	if bare[:2] == other[:2] && bare == other {
		t.Error("expected different sites to fingerprint differently")
	}

	// Deterministic across calls.
	if Fingerprint("https://sub.example.com") != sub {
		t.Error("fingerprint not deterministic")
	}
}
