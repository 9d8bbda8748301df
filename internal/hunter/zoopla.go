package hunter

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/logger"
	"github.com/letscout-hq/letscout/pkg/httpclient"
)

var zooplaDetailsID = regexp.MustCompile(`/details/(\d+)`)

// Zoopla extracts listings from Zoopla search result pages.
type Zoopla struct {
	client httpclient.Client
	delay  time.Duration
}

// NewZoopla builds the Zoopla crawler.
func NewZoopla(client httpclient.Client, delay time.Duration) *Zoopla {
	return &Zoopla{client: client, delay: delay}
}

func (z *Zoopla) Name() string { return "zoopla" }

// Crawl fetches up to maxPages result pages and extracts their listing cards.
func (z *Zoopla) Crawl(ctx context.Context, url string, maxPages int) ([]domain.Listing, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var out []domain.Listing
	for page := 1; page <= maxPages; page++ {
		pageURL := url
		if page > 1 {
			pageURL = fmt.Sprintf("%s&pn=%d", url, page)
		}

		listings, err := z.crawlPage(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			logger.WarnObj("zoopla page fetch failed", "page_error", map[string]any{
				"url":   pageURL,
				"error": err.Error(),
			})
			break
		}
		if len(listings) == 0 {
			break
		}
		out = append(out, listings...)

		if err := sleepBetweenPages(ctx, z.delay, page-1, maxPages); err != nil {
			return out, nil
		}
	}
	return out, nil
}

func (z *Zoopla) crawlPage(ctx context.Context, url string) ([]domain.Listing, error) {
	doc, err := fetchDocument(ctx, z.client, url)
	if err != nil {
		return nil, err
	}

	var listings []domain.Listing
	doc.Find("div[data-testid*='search-result']").Each(func(_ int, card *goquery.Selection) {
		if l, ok := z.parseCard(card); ok {
			listings = append(listings, l)
		}
	})
	logger.DebugObj("zoopla page parsed", "page_result", map[string]any{
		"url":      url,
		"listings": len(listings),
	})
	return listings, nil
}

func (z *Zoopla) parseCard(card *goquery.Selection) (domain.Listing, bool) {
	href, _ := card.Find("a[href*='/details/']").First().Attr("href")
	if href == "" {
		return domain.Listing{}, false
	}
	url := absoluteURL("https://www.zoopla.co.uk", href)

	match := zooplaDetailsID.FindStringSubmatch(url)
	if match == nil {
		return domain.Listing{}, false
	}

	title := cleanText(card.Find("h2").First().Text())
	price := cleanText(card.Find("[data-testid='listing-price'], [class*='price']").First().Text())
	if title == "" || price == "" {
		return domain.Listing{}, false
	}

	l := domain.Listing{
		ID:      match[1],
		URL:     url,
		Title:   title,
		Price:   price,
		Address: cleanText(card.Find("address, [data-testid='listing-address']").First().Text()),
		Source:  z.Name(),
	}
	l.Rooms = extractBedrooms(title)
	if img, ok := card.Find("img").First().Attr("src"); ok {
		l.Image = img
	}
	return l, true
}

// LoadAddress fetches the listing detail page and extracts the displayed address.
func (z *Zoopla) LoadAddress(ctx context.Context, url string) (string, error) {
	doc, err := fetchDocument(ctx, z.client, url)
	if err != nil {
		return "", err
	}
	if address := cleanText(doc.Find("address").First().Text()); address != "" {
		return address, nil
	}
	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		return cleanText(content), nil
	}
	return "", nil
}
