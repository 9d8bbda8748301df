package hunter

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/logger"
	"github.com/letscout-hq/letscout/pkg/httpclient"
)

const rightmovePageSize = 24

var rightmovePropertyID = regexp.MustCompile(`/properties/(\d+)`)

// Rightmove extracts listings from Rightmove search result pages.
type Rightmove struct {
	client httpclient.Client
	delay  time.Duration
}

// NewRightmove builds the Rightmove crawler.
func NewRightmove(client httpclient.Client, delay time.Duration) *Rightmove {
	return &Rightmove{client: client, delay: delay}
}

func (r *Rightmove) Name() string { return "rightmove" }

// Crawl fetches up to maxPages result pages and extracts their listing cards.
func (r *Rightmove) Crawl(ctx context.Context, url string, maxPages int) ([]domain.Listing, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var out []domain.Listing
	for page := 0; page < maxPages; page++ {
		pageURL := url
		if page > 0 {
			pageURL = fmt.Sprintf("%s&index=%d", url, page*rightmovePageSize)
		}

		listings, err := r.crawlPage(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			logger.WarnObj("rightmove page fetch failed", "page_error", map[string]any{
				"url":   pageURL,
				"error": err.Error(),
			})
			break
		}
		if len(listings) == 0 {
			break
		}
		out = append(out, listings...)

		if err := sleepBetweenPages(ctx, r.delay, page, maxPages); err != nil {
			return out, nil
		}
	}
	return out, nil
}

func (r *Rightmove) crawlPage(ctx context.Context, url string) ([]domain.Listing, error) {
	doc, err := fetchDocument(ctx, r.client, url)
	if err != nil {
		return nil, err
	}

	var listings []domain.Listing
	doc.Find("div[class*='propertyCard']").Each(func(_ int, card *goquery.Selection) {
		if l, ok := r.parseCard(card); ok {
			listings = append(listings, l)
		}
	})
	logger.DebugObj("rightmove page parsed", "page_result", map[string]any{
		"url":      url,
		"listings": len(listings),
	})
	return listings, nil
}

// parseCard extracts one listing from a property card. Cards missing an id,
// url, title or price are skipped.
func (r *Rightmove) parseCard(card *goquery.Selection) (domain.Listing, bool) {
	href, _ := card.Find("a[href*='/properties/']").First().Attr("href")
	if href == "" {
		return domain.Listing{}, false
	}
	url := absoluteURL("https://www.rightmove.co.uk", href)

	match := rightmovePropertyID.FindStringSubmatch(url)
	if match == nil {
		return domain.Listing{}, false
	}

	title := cleanText(card.Find("h2").First().Text())
	price := cleanText(card.Find("[class*='priceValue'], [class*='propertyCard-price']").First().Text())
	if title == "" || price == "" {
		return domain.Listing{}, false
	}

	l := domain.Listing{
		ID:      match[1],
		URL:     url,
		Title:   title,
		Price:   price,
		Address: cleanText(card.Find("address").First().Text()),
		Source:  r.Name(),
	}
	l.Rooms = extractBedrooms(title)
	if img, ok := card.Find("img").First().Attr("src"); ok {
		l.Image = img
	}
	return l, true
}

// LoadAddress fetches the listing detail page and extracts the displayed address.
func (r *Rightmove) LoadAddress(ctx context.Context, url string) (string, error) {
	doc, err := fetchDocument(ctx, r.client, url)
	if err != nil {
		return "", err
	}
	if address := cleanText(doc.Find("[itemprop='streetAddress']").First().Text()); address != "" {
		return address, nil
	}
	return cleanText(doc.Find("h1").First().Text()), nil
}

// extractBedrooms pulls a bedroom count out of a listing title like
// "2 bedroom flat for rent".
var bedroomPattern = regexp.MustCompile(`(?i)(\d+)\s+bed`)

func extractBedrooms(title string) string {
	if match := bedroomPattern.FindStringSubmatch(title); match != nil {
		return match[1]
	}
	return ""
}

// fetchDocument gets a page and parses it with goquery.
func fetchDocument(ctx context.Context, client httpclient.Client, url string) (*goquery.Document, error) {
	resp, err := client.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("status %d for %s", resp.StatusCode(), url)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return base + href
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sleepBetweenPages throttles pagination, aborting early on cancellation.
func sleepBetweenPages(ctx context.Context, delay time.Duration, page, maxPages int) error {
	if delay <= 0 || page >= maxPages-1 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
