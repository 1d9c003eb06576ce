// Package catalog implements a rate-limited, retrying adapter to a remote
// movie/TV metadata service (spec.md §4.3). It never surfaces an error to
// its caller for a failed lookup — every operation degrades to nil so a
// scan never aborts on catalog unavailability.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const baseURL = "https://api.themoviedb.org/3"

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
}

var nonAlphanumericSpace = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)
var whitespace = regexp.MustCompile(`\s+`)

// Movie is the result shape for searchMovie.
type Movie struct {
	ID         string
	Title      string
	Year       int
	PosterPath string
}

// TVSeries is the result shape for searchTV.
type TVSeries struct {
	ID         string
	Name       string
	Year       int
	PosterPath string
}

// Client is the catalog-lookup adapter. A Client with an empty APIKey
// silently returns nil from every operation (spec.md §4.3 "unconfigured").
type Client struct {
	APIKey     string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

// New constructs a Client rate-limited to roughly 4 requests/second, a
// conservative bound well under TMDB's published limits.
func New(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(4), 4),
	}
}

// SearchMovie implements searchMovie(name, year?).
func (c *Client) SearchMovie(ctx context.Context, name string, year *int) (*Movie, error) {
	if c.APIKey == "" {
		return nil, nil
	}
	q := preprocessQuery(name)
	if q == "" {
		return nil, nil
	}

	params := url.Values{"api_key": {c.APIKey}, "query": {q}}
	var raw struct {
		Results []struct {
			ID          int    `json:"id"`
			Title       string `json:"title"`
			ReleaseDate string `json:"release_date"`
			PosterPath  string `json:"poster_path"`
		} `json:"results"`
	}
	if err := c.get(ctx, "/search/movie", params, &raw); err != nil {
		log.Printf("catalog: movie search failed for %q: %v", name, err)
		return nil, nil
	}
	if len(raw.Results) == 0 {
		return nil, nil
	}

	chosen := raw.Results[0]
	if year != nil {
		for _, r := range raw.Results {
			if resultYear(r.ReleaseDate) == *year {
				chosen = r
				break
			}
		}
	}

	return &Movie{
		ID:         fmt.Sprintf("%d", chosen.ID),
		Title:      chosen.Title,
		Year:       resultYear(chosen.ReleaseDate),
		PosterPath: chosen.PosterPath,
	}, nil
}

// SearchTV implements searchTV(name).
func (c *Client) SearchTV(ctx context.Context, name string) (*TVSeries, error) {
	if c.APIKey == "" {
		return nil, nil
	}
	q := preprocessQuery(name)
	if q == "" {
		return nil, nil
	}

	params := url.Values{"api_key": {c.APIKey}, "query": {q}}
	var raw struct {
		Results []struct {
			ID           int    `json:"id"`
			Name         string `json:"name"`
			FirstAirDate string `json:"first_air_date"`
			PosterPath   string `json:"poster_path"`
		} `json:"results"`
	}
	if err := c.get(ctx, "/search/tv", params, &raw); err != nil {
		log.Printf("catalog: tv search failed for %q: %v", name, err)
		return nil, nil
	}
	if len(raw.Results) == 0 {
		return nil, nil
	}

	first := raw.Results[0]
	return &TVSeries{
		ID:         fmt.Sprintf("%d", first.ID),
		Name:       first.Name,
		Year:       resultYear(first.FirstAirDate),
		PosterPath: first.PosterPath,
	}, nil
}

// GetEpisodeTitle implements getEpisodeTitle(seriesId, season, episode).
func (c *Client) GetEpisodeTitle(ctx context.Context, seriesID string, season, episode int) (string, error) {
	if c.APIKey == "" {
		return "", nil
	}
	params := url.Values{"api_key": {c.APIKey}}
	path := fmt.Sprintf("/tv/%s/season/%d/episode/%d", seriesID, season, episode)

	var raw struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, path, params, &raw); err != nil {
		log.Printf("catalog: episode title lookup failed for %s S%02dE%02d: %v", seriesID, season, episode, err)
		return "", nil
	}
	return raw.Name, nil
}

// preprocessQuery strips non-alphanumeric characters, drops stop words,
// collapses whitespace, and truncates to 100 characters.
func preprocessQuery(name string) string {
	cleaned := nonAlphanumericSpace.ReplaceAllString(name, " ")
	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		if stopWords[strings.ToLower(w)] {
			continue
		}
		kept = append(kept, w)
	}
	result := whitespace.ReplaceAllString(strings.Join(kept, " "), " ")
	if len(result) > 100 {
		result = result[:100]
	}
	return strings.TrimSpace(result)
}

func resultYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	var year int
	fmt.Sscanf(date[:4], "%d", &year)
	return year
}

// get performs the GET request with up to 3 attempts: a linear backoff
// (1s, then 2s) after a 429, a 0.5s pause before each retry after a
// transport failure, and no retry for any other non-success response,
// which is returned as an error that the exported operations turn into a
// nil result.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			lastErr = err
			if attempt < 3 {
				time.Sleep(500 * time.Millisecond)
				continue
			}
			return lastErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (attempt %d)", attempt)
			if attempt < 3 {
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			return lastErr
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("non-success status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return lastErr
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	return c.HTTPClient.Do(req)
}
