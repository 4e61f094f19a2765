package main

import (
	"strings"
	"testing"
)

const testLinkFormat = "https://example.com/details.html?id=%s&lang=en"

func TestExtractListings_ArticleLayout(t *testing.T) {
	markup := `<html><body>
		<article data-ad-id="411">
			<h2>Tesla Model 3 Long Range</h2>
			<span data-testid="price-label">€ 45.900</span>
			<p>Inserat online seit: 30.08.2024</p>
			<a href="/fahrzeuge/details.html?id=411&amp;lang=en">Details</a>
		</article>
		<article>
			<h2>Tesla Model Y</h2>
			<a href="https://example.com/details.html?id=522&amp;lang=en">Details</a>
			<p>€ 39.000</p>
		</article>
		<article><p>nothing identifiable</p></article>
	</body></html>`

	listings, err := extractListings(strings.NewReader(markup), testLinkFormat)
	if err != nil {
		t.Fatalf("extractListings failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("Expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.ID != "411" {
		t.Errorf("ID = %q, want 411", first.ID)
	}
	if first.Price != 45900 {
		t.Errorf("Price = %d, want 45900", first.Price)
	}
	if first.PriceDisplay != "€ 45.900" {
		t.Errorf("PriceDisplay = %q", first.PriceDisplay)
	}
	if first.Title != "Tesla Model 3 Long Range" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Link != "https://example.com/details.html?id=411&lang=en" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.PostedAt == nil {
		t.Error("Expected a posting date for the first listing")
	} else if y, m, d := first.PostedAt.Date(); y != 2024 || int(m) != 8 || d != 30 {
		t.Errorf("PostedAt = %v, want 2024-08-30", first.PostedAt)
	}

	// Second ad has no data-ad-id; the id comes from the detail link.
	second := listings[1]
	if second.ID != "522" {
		t.Errorf("ID = %q, want 522", second.ID)
	}
	if second.Price != 39000 {
		t.Errorf("Price = %d, want 39000 (regex fallback)", second.Price)
	}
	if second.PostedAt != nil {
		t.Errorf("PostedAt = %v, want nil", second.PostedAt)
	}
}

func TestExtractListings_ResultListLayout(t *testing.T) {
	markup := `<html><body>
		<div class="result-item" data-ad-id="77">
			<h2>Tesla Model S</h2>
			<span>€ 59.900</span>
		</div>
	</body></html>`

	listings, err := extractListings(strings.NewReader(markup), testLinkFormat)
	if err != nil {
		t.Fatalf("extractListings failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("Expected 1 listing, got %d", len(listings))
	}
	if listings[0].ID != "77" || listings[0].Price != 59900 {
		t.Errorf("Got %+v", listings[0])
	}
}

func TestExtractListings_AttributeScanFallback(t *testing.T) {
	// No article elements and no known result classes; the raw tree scan
	// should still find anything tagged with an ad id.
	markup := `<html><body>
		<section>
			<div data-ad-id="88">
				<h2>Tesla Model X</h2>
				<span>€ 79.500</span>
				<p>Online since 06/14/2024</p>
			</div>
		</section>
	</body></html>`

	listings, err := extractListings(strings.NewReader(markup), testLinkFormat)
	if err != nil {
		t.Fatalf("extractListings failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("Expected 1 listing, got %d", len(listings))
	}
	ad := listings[0]
	if ad.ID != "88" {
		t.Errorf("ID = %q, want 88", ad.ID)
	}
	if ad.Price != 79500 {
		t.Errorf("Price = %d, want 79500", ad.Price)
	}
	if ad.Title != "Tesla Model X" {
		t.Errorf("Title = %q", ad.Title)
	}
	if ad.PostedAt == nil {
		t.Error("Expected a posting date from the ad text")
	}
}

func TestExtractListings_DedupByID(t *testing.T) {
	markup := `<html><body>
		<article data-ad-id="411"><h2>First</h2><span>€ 1.000</span></article>
		<article data-ad-id="411"><h2>Second</h2><span>€ 2.000</span></article>
	</body></html>`

	listings, err := extractListings(strings.NewReader(markup), testLinkFormat)
	if err != nil {
		t.Fatalf("extractListings failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("Expected 1 listing after dedup, got %d", len(listings))
	}
	if listings[0].Title != "First" {
		t.Errorf("First occurrence should win, got %q", listings[0].Title)
	}
}

func TestExtractListings_MissingPriceAndTitle(t *testing.T) {
	markup := `<html><body>
		<article data-ad-id="5"><p>bare ad</p></article>
	</body></html>`

	listings, err := extractListings(strings.NewReader(markup), testLinkFormat)
	if err != nil {
		t.Fatalf("extractListings failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("Expected 1 listing, got %d", len(listings))
	}
	ad := listings[0]
	if ad.Price != 0 {
		t.Errorf("Price = %d, want 0 for missing price text", ad.Price)
	}
	if ad.PriceDisplay != unknownPrice {
		t.Errorf("PriceDisplay = %q, want %q", ad.PriceDisplay, unknownPrice)
	}
	if ad.Title != fallbackTitle {
		t.Errorf("Title = %q, want %q", ad.Title, fallbackTitle)
	}
}

func TestExtractListings_EmptyPage(t *testing.T) {
	listings, err := extractListings(strings.NewReader("<html><body></body></html>"), testLinkFormat)
	if err != nil {
		t.Fatalf("extractListings failed: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("Expected no listings, got %d", len(listings))
	}
}

func TestIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/fahrzeuge/details.html?id=411&lang=en", "411"},
		{"https://example.com/details.html?id=522", "522"},
		{"https://example.com/details.html?lang=en", ""},
		{"/somewhere/else", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := idFromHref(tt.href); got != tt.want {
			t.Errorf("idFromHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
