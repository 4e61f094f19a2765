package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// fallbackTitle is used when an ad block carries no heading at all
const fallbackTitle = "Vehicle listing"

// unknownPrice is the display placeholder for ads where no price text was
// found; it normalizes to 0 and therefore never triggers change detection.
const unknownPrice = "Unknown Price"

var priceTextRegex = regexp.MustCompile(`€\s?[\d.,]+`)

// extractListings produces zero or more listings from one page of markup.
// The page layout shifts between revisions, so extraction is a chain of
// strategies: article elements, then a result-list class selector, then a raw
// attribute scan over the node tree. The batch is deduplicated by id, first
// occurrence wins.
func extractListings(r io.Reader, linkFormat string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	sel := doc.Find("article")
	if sel.Length() == 0 {
		sel = doc.Find(".result-item, .c-result-list__item")
	}

	var listings []Listing
	if sel.Length() > 0 {
		sel.Each(func(_ int, s *goquery.Selection) {
			ad := listingFromSelection(s, linkFormat)
			if ad.ID == "" {
				slog.Debug("Skipping ad block without id", "title", ad.Title)
				return
			}
			listings = append(listings, ad)
		})
	} else if root := doc.Get(0); root != nil {
		// Last resort: scan the raw tree for anything tagged with an ad id.
		scanAdNodes(root, linkFormat, &listings)
	}

	deduped := dedupeByID(listings)
	slog.Debug("Extracted listings", "found", len(listings), "unique", len(deduped))
	return deduped, nil
}

func dedupeByID(listings []Listing) []Listing {
	seen := make(map[string]bool, len(listings))
	out := listings[:0]
	for _, ad := range listings {
		if seen[ad.ID] {
			continue
		}
		seen[ad.ID] = true
		out = append(out, ad)
	}
	return out
}

func listingFromSelection(s *goquery.Selection, linkFormat string) Listing {
	id := strings.TrimSpace(s.AttrOr("data-ad-id", ""))
	if id == "" {
		s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			id = idFromHref(a.AttrOr("href", ""))
			return id == ""
		})
	}

	text := s.Text()

	priceText := strings.TrimSpace(s.Find(`[data-testid*="price"]`).First().Text())
	if priceText == "" {
		priceText = priceTextRegex.FindString(text)
	}
	if priceText == "" {
		priceText = unknownPrice
	}

	title := strings.TrimSpace(s.Find("h2").First().Text())
	if title == "" {
		title = fallbackTitle
	}

	recent, postedDetail := classifyFreshness(text, time.Now())
	slog.Debug("Found ad",
		"id", id,
		"title", title,
		"price", priceText,
		"posted", postedDetail,
		"recent", recent)

	return Listing{
		ID:           id,
		Price:        normalizePrice(priceText),
		PriceDisplay: priceText,
		Title:        title,
		Link:         fmt.Sprintf(linkFormat, id),
		PostedAt:     postingDateOf(text),
	}
}

// idFromHref pulls the listing id out of a detail-page link, e.g.
// ".../details.html?id=12345&lang=en" -> "12345".
func idFromHref(href string) string {
	if !strings.Contains(href, "id=") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("id")
}

func postingDateOf(text string) *time.Time {
	if posted, ok := extractPostingDate(text); ok {
		return &posted
	}
	return nil
}

// scanAdNodes walks the HTML tree looking for elements carrying a data-ad-id
// attribute, building a listing from each matched subtree. Matched subtrees
// are not descended into; nested ids would be duplicates of the same ad.
func scanAdNodes(n *html.Node, linkFormat string, out *[]Listing) {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "data-ad-id" && attr.Val != "" {
				*out = append(*out, listingFromNode(n, attr.Val, linkFormat))
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		scanAdNodes(c, linkFormat, out)
	}
}

func listingFromNode(n *html.Node, id, linkFormat string) Listing {
	text := nodeText(n)

	priceText := priceTextRegex.FindString(text)
	if priceText == "" {
		priceText = unknownPrice
	}

	title := strings.TrimSpace(nodeText(findElement(n, "h2")))
	if title == "" {
		title = fallbackTitle
	}

	return Listing{
		ID:           id,
		Price:        normalizePrice(priceText),
		PriceDisplay: priceText,
		Title:        title,
		Link:         fmt.Sprintf(linkFormat, id),
		PostedAt:     postingDateOf(text),
	}
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}
