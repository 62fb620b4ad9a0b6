package scrape

import (
	"context"
	"io"
	"log"
	"net/http"
	"regexp"
	"sync"
	"time"
)

// MissingLinkSentinel is stored for a day whose share link could not be
// resolved so clients can tell "not resolved" from "not published".
const MissingLinkSentinel = "No YouTube link found"

// shortlinkPattern matches the canonical share URL the video platform
// embeds in its page head.
var shortlinkPattern = regexp.MustCompile(`<link rel="shortlinkUrl" href="([^"]+)">`)

// LinkResolver follows newsletter redirect links and extracts the canonical
// video share URL from each landing page.
type LinkResolver struct {
	client *http.Client
}

func NewLinkResolver() *LinkResolver {
	return &LinkResolver{client: &http.Client{Timeout: 15 * time.Second}}
}

// Resolve fetches every link concurrently and returns day -> share URL.
// Every input key appears in the output; failures map to the sentinel so
// one dead link never loses the rest of the week.
func (r *LinkResolver) Resolve(ctx context.Context, links map[string]string) map[string]string {
	resolved := make(map[string]string, len(links))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for day, link := range links {
		wg.Add(1)
		go func(day, link string) {
			defer wg.Done()
			url, err := r.resolveOne(ctx, link)
			if err != nil {
				log.Printf("materials: resolving %s link failed: %v", day, err)
				url = MissingLinkSentinel
			}
			mu.Lock()
			resolved[day] = url
			mu.Unlock()
		}(day, link)
	}
	wg.Wait()
	return resolved
}

func (r *LinkResolver) resolveOne(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// The shortlink tag sits in the head, but read the whole page.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	m := shortlinkPattern.FindSubmatch(body)
	if m == nil {
		return MissingLinkSentinel, nil
	}
	return string(m[1]), nil
}
