// Package youtube wraps the Data API v3 calls the pipeline needs: a ranked
// search for short videos and a batched contentDetails lookup for exact
// durations.
package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

const watchURLTemplate = "https://www.youtube.com/watch?v=%s"

// Candidate is one search hit, in the order the API ranked it.
type Candidate struct {
	VideoID string
	Title   string
	Channel string
}

// URL returns the canonical watch URL for the candidate.
func (c Candidate) URL() string {
	return fmt.Sprintf(watchURLTemplate, c.VideoID)
}

// Client talks to the YouTube Data API with a plain API key.
type Client struct {
	svc        *yt.Service
	query      string
	maxResults int64
	Logger     *logrus.Logger
}

// NewClient builds a Data API client. query and maxResults are fixed per
// deployment; the pipeline never varies them between runs.
func NewClient(ctx context.Context, apiKey, query string, maxResults int64, logger *logrus.Logger) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, query: query, maxResults: maxResults, Logger: logger}, nil
}

// Search returns up to maxResults short videos matching the configured
// query, ordered by view count.
func (c *Client) Search(ctx context.Context) ([]Candidate, error) {
	call := c.svc.Search.List([]string{"snippet"}).
		Q(c.query).
		Type("video").
		VideoDuration("short").
		Order("viewCount").
		MaxResults(c.maxResults).
		Context(ctx)
	response, err := call.Do()
	if err != nil {
		c.Logger.WithFields(logrus.Fields{
			"error": err.Error(),
			"query": c.query,
		}).Error("youtube search failed")
		return nil, err
	}
	return CandidatesFromSearch(response), nil
}

// CandidatesFromSearch flattens a search response, dropping items that are
// not playable videos.
func CandidatesFromSearch(response *yt.SearchListResponse) []Candidate {
	if response == nil {
		return nil
	}
	candidates := make([]Candidate, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			VideoID: item.Id.VideoId,
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
		})
	}
	return candidates
}

// Details fetches contentDetails for a whole run's worth of candidates in a
// single videos.list call. One search page never exceeds the 50-id limit of
// the endpoint.
func (c *Client) Details(ctx context.Context, ids []string) (map[string]time.Duration, error) {
	if len(ids) == 0 {
		return map[string]time.Duration{}, nil
	}
	call := c.svc.Videos.List([]string{"contentDetails"}).Id(ids...).Context(ctx)
	response, err := call.Do()
	if err != nil {
		c.Logger.WithField("error", err.Error()).Error("youtube details lookup failed")
		return nil, err
	}
	return DurationsFromList(response), nil
}

// DurationsFromList flattens a videos.list response into id to duration.
// Videos without contentDetails or with an unparseable duration are absent
// from the map.
func DurationsFromList(response *yt.VideoListResponse) map[string]time.Duration {
	if response == nil {
		return nil
	}
	out := make(map[string]time.Duration, len(response.Items))
	for _, item := range response.Items {
		if item.Id == "" || item.ContentDetails == nil {
			continue
		}
		duration, err := ParseISODuration(item.ContentDetails.Duration)
		if err != nil {
			continue
		}
		out[item.Id] = duration
	}
	return out
}
