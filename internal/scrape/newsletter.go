// Package scrape extracts training material links from the weekly
// programming newsletter HTML.
package scrape

import (
	"log"
	"strings"

	"golang.org/x/net/html"
)

// pdfAnchorText is the visible label of the newsletter's weekly PDF link.
const pdfAnchorText = "Class Wods PDF"

var weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// NewsletterScraper parses newsletter HTML bodies. Day links are found by
// the convention the newsletter follows: each day's video is an anchor
// wrapping an image whose alt text names the weekday.
type NewsletterScraper struct{}

func NewNewsletterScraper() *NewsletterScraper {
	return &NewsletterScraper{}
}

// WeeklyLinks walks the document and returns weekday -> href for every
// image whose alt text mentions a weekday and that sits inside an anchor.
// Weekday keys are lowercase. Days the newsletter omits are simply absent.
func (s *NewsletterScraper) WeeklyLinks(body string) map[string]string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		// html.Parse recovers from malformed markup; an error here means
		// the reader failed, which cannot happen for a string.
		log.Printf("materials: newsletter parse failed: %v", err)
		return nil
	}
	links := make(map[string]string)
	var walk func(n *html.Node, anchor string)
	walk = func(n *html.Node, anchor string) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				anchor = attr(n, "href")
			case "img":
				if anchor != "" {
					if day := weekdayIn(attr(n, "alt")); day != "" {
						if _, seen := links[day]; !seen {
							links[day] = anchor
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, anchor)
		}
	}
	walk(doc, "")
	return links
}

// ClassPDFLink returns the href of the anchor whose text is the weekly PDF
// label, or "" when the newsletter has none.
func (s *NewsletterScraper) ClassPDFLink(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		log.Printf("materials: newsletter parse failed: %v", err)
		return ""
	}
	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if strings.EqualFold(strings.TrimSpace(text(n)), pdfAnchorText) {
				found = attr(n, "href")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// text collects the concatenated text content beneath a node.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func weekdayIn(alt string) string {
	lower := strings.ToLower(alt)
	for _, day := range weekdays {
		if strings.Contains(lower, day) {
			return day
		}
	}
	return ""
}
