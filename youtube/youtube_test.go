package youtube

import (
	"testing"
	"time"

	yt "google.golang.org/api/youtube/v3"
)

func TestCandidatesFromSearch(t *testing.T) {
	response := &yt.SearchListResponse{
		Items: []*yt.SearchResult{
			{
				Id:      &yt.ResourceId{VideoId: "abc123def45"},
				Snippet: &yt.SearchResultSnippet{Title: "Gear trains explained", ChannelTitle: "MechTV"},
			},
			// channel results come back with an empty VideoId
			{
				Id:      &yt.ResourceId{ChannelId: "UCchannel"},
				Snippet: &yt.SearchResultSnippet{Title: "Some channel"},
			},
			{
				Id: &yt.ResourceId{VideoId: "nosnippet123"},
			},
			{
				Id:      &yt.ResourceId{VideoId: "xyz987qwe65"},
				Snippet: &yt.SearchResultSnippet{Title: "Bearing failure modes", ChannelTitle: "EngShorts"},
			},
		},
	}

	candidates := CandidatesFromSearch(response)
	if len(candidates) != 2 {
		t.Fatalf("CandidatesFromSearch() returned %d candidates, want 2", len(candidates))
	}
	if candidates[0].VideoID != "abc123def45" || candidates[0].Title != "Gear trains explained" {
		t.Errorf("first candidate = %+v", candidates[0])
	}
	if candidates[1].Channel != "EngShorts" {
		t.Errorf("second candidate channel = %q, want EngShorts", candidates[1].Channel)
	}
}

func TestCandidatesFromSearch_Nil(t *testing.T) {
	if got := CandidatesFromSearch(nil); got != nil {
		t.Errorf("CandidatesFromSearch(nil) = %v, want nil", got)
	}
}

func TestDurationsFromList(t *testing.T) {
	response := &yt.VideoListResponse{
		Items: []*yt.Video{
			{Id: "abc123def45", ContentDetails: &yt.VideoContentDetails{Duration: "PT1M30S"}},
			{Id: "nodetails456"},
			{Id: "badvalue7890", ContentDetails: &yt.VideoContentDetails{Duration: "ninety seconds"}},
			{Id: "xyz987qwe65", ContentDetails: &yt.VideoContentDetails{Duration: "PT2M"}},
		},
	}

	durations := DurationsFromList(response)
	if len(durations) != 2 {
		t.Fatalf("DurationsFromList() returned %d entries, want 2", len(durations))
	}
	if durations["abc123def45"] != 90*time.Second {
		t.Errorf("abc123def45 = %v, want 1m30s", durations["abc123def45"])
	}
	if durations["xyz987qwe65"] != 2*time.Minute {
		t.Errorf("xyz987qwe65 = %v, want 2m", durations["xyz987qwe65"])
	}
	if _, ok := durations["nodetails456"]; ok {
		t.Error("video without contentDetails made it into the map")
	}

	if got := DurationsFromList(nil); got != nil {
		t.Errorf("DurationsFromList(nil) = %v, want nil", got)
	}
}

func TestCandidateURL(t *testing.T) {
	c := Candidate{VideoID: "dQw4w9WgXcQ"}
	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if got := c.URL(); got != want {
		t.Errorf("Candidate.URL() = %q, want %q", got, want)
	}
}
