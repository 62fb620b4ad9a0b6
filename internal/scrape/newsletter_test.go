package scrape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartier55/coachbox-backend/internal/scrape"
)

const sampleNewsletter = `
<html><body>
  <table>
    <tr><td>
      <a href="https://track.example.com/r/mon123">
        <img src="thumb1.png" alt="Monday Workout Video">
      </a>
    </td></tr>
    <tr><td>
      <a href="https://track.example.com/r/wed456">
        <img src="thumb2.png" alt="Video for Wednesday">
      </a>
    </td></tr>
    <tr><td>
      <img src="logo.png" alt="Gym Logo">
    </td></tr>
    <tr><td>
      <a href="https://files.example.com/week34.pdf">Class Wods PDF</a>
    </td></tr>
    <tr><td>
      <a href="https://example.com/unsubscribe">Unsubscribe</a>
    </td></tr>
  </table>
</body></html>`

func TestWeeklyLinks(t *testing.T) {
	s := scrape.NewNewsletterScraper()

	links := s.WeeklyLinks(sampleNewsletter)
	require.Len(t, links, 2)
	assert.Equal(t, "https://track.example.com/r/mon123", links["monday"])
	assert.Equal(t, "https://track.example.com/r/wed456", links["wednesday"])
}

func TestWeeklyLinksIgnoresBareImages(t *testing.T) {
	s := scrape.NewNewsletterScraper()

	// A weekday image outside any anchor has no link to follow.
	links := s.WeeklyLinks(`<html><body><img alt="Friday session"></body></html>`)
	assert.Empty(t, links)
}

func TestWeeklyLinksCaseInsensitiveAlt(t *testing.T) {
	s := scrape.NewNewsletterScraper()

	links := s.WeeklyLinks(`<a href="/x"><img alt="TUESDAY grind"></a>`)
	require.Len(t, links, 1)
	assert.Equal(t, "/x", links["tuesday"])
}

func TestClassPDFLink(t *testing.T) {
	s := scrape.NewNewsletterScraper()

	pdf := s.ClassPDFLink(sampleNewsletter)
	assert.Equal(t, "https://files.example.com/week34.pdf", pdf)
}

func TestClassPDFLinkAbsent(t *testing.T) {
	s := scrape.NewNewsletterScraper()

	pdf := s.ClassPDFLink(`<html><body><a href="/other">Something else</a></body></html>`)
	assert.Empty(t, pdf)
}
