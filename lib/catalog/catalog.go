// Package catalog discovers the quarterly trip archives published on the
// Indego data portal.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"indego-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("indego.lib.catalog")

const DefaultPageUrl = "https://www.rideindego.com/about/data/"

// the portal rejects requests without a browser user agent
const userAgent = "Mozilla/5.0"

var ErrDiscovery = fmt.Errorf("trip data discovery failed")

// Entry is one published archive: the human-readable label shown on the
// portal ("2023 Q4 Trip Data") and its download url.
type Entry struct {
	Label string
	Url   string
}

type Catalog struct {
	http    *resty.Client
	pageUrl string
}

type Options struct {
	// defaults to DefaultPageUrl
	PageUrl string
	// defaults to a fresh resty client
	Http *resty.Client
}

func New(opts Options) Catalog {
	pageUrl := opts.PageUrl
	if pageUrl == "" {
		pageUrl = DefaultPageUrl
	}
	client := opts.Http
	if client == nil {
		client = resty.New()
	}
	client.SetHeader("user-agent", userAgent)
	telemetry.InstrumentResty(client, "indego.lib.catalog.http")

	return Catalog{
		http:    client,
		pageUrl: pageUrl,
	}
}

// Discover scrapes the portal page for the list of archive links under
// the "Trip Data" heading. entries come back in page order, which is not
// a contract: identity is derived from labels downstream, never from
// position.
func (c Catalog) Discover(ctx context.Context) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.pageUrl)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("%w: fetch %s: status %d", ErrDiscovery, c.pageUrl, res.StatusCode())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entries, err := parsePage(res.Body())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return entries, nil
}

func parsePage(page []byte) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}

	var heading *html.Node
	doc.Find("h1").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) == "Trip Data" {
			heading = s.Nodes[0]
			return false
		}
		return true
	})
	if heading == nil {
		return nil, fmt.Errorf("%w: no 'Trip Data' heading on page", ErrDiscovery)
	}

	list := nextElement(heading, "ul")
	if list == nil {
		return nil, fmt.Errorf("%w: no file list after 'Trip Data' heading", ErrDiscovery)
	}

	var entries []Entry
	goquery.NewDocumentFromNode(list).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if !strings.Contains(href, ".zip") {
			return
		}
		entries = append(entries, Entry{
			Label: strings.TrimSpace(a.Text()),
			Url:   href,
		})
	})

	return entries, nil
}

// returns the first element with the given tag that follows n in
// document order.
func nextElement(n *html.Node, tag string) *html.Node {
	for cur := nextNode(n); cur != nil; cur = nextNode(cur) {
		if cur.Type == html.ElementNode && cur.Data == tag {
			return cur
		}
	}
	return nil
}

func nextNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}
