package rounds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/time/rate"

	"github.com/splitbot-dev/splitbot/internal/dependencies/mocks"
	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/testutil"
)

type ProviderSuite struct {
	suite.Suite
	server *httptest.Server
	mux    *http.ServeMux
	random *mocks.MockRandom
	client *Client
	ctx    context.Context
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderSuite))
}

func (s *ProviderSuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)
	s.random = mocks.NewMockRandom()
	s.client = NewClient(s.server.URL, s.random, testutil.NopLogger())
	// No throttling against the local test server
	s.client.limiter = rate.NewLimiter(rate.Inf, 0)
	s.ctx = context.Background()
}

func (s *ProviderSuite) TearDownTest() {
	s.server.Close()
}

type testRun struct {
	id      string
	comment string
	date    string
	seconds float64
}

// serveRuns registers a paged /v1/runs handler holding the given runs
func (s *ProviderSuite) serveRuns(runs []testRun) {
	s.mux.HandleFunc("/v1/runs", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("verified", r.URL.Query().Get("status"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		max, _ := strconv.Atoi(r.URL.Query().Get("max"))

		end := offset + max
		if end > len(runs) {
			end = len(runs)
		}
		var page []map[string]any
		if offset < len(runs) {
			for _, run := range runs[offset:end] {
				page = append(page, map[string]any{
					"id":      run.id,
					"comment": run.comment,
					"date":    run.date,
					"times":   map[string]any{"primary_t": run.seconds},
				})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": page})
	})
}

func (s *ProviderSuite) TestRandomRunPicksEligibleRun() {
	s.serveRuns([]testRun{
		{id: "run-1", comment: "", date: "2024-01-01", seconds: 100},          // no description
		{id: "run-2", comment: "nice run, got 2:05", date: "2024-02-02", seconds: 125},
		{id: "run-3", comment: "timer broke", date: "2024-03-03", seconds: 0}, // no time
	})
	s.random.QueueIntn(0, 0) // first topic, first eligible run

	cand, err := s.client.RandomRun(s.ctx)
	s.Require().NoError(err)
	s.Equal("Chapter 1", cand.Topic.Name)
	s.Equal(int64(125), cand.Seconds)
	s.Equal("2024-02-02", cand.Date)
	s.Equal("https://www.speedrun.com/run/run-2", cand.RunURL)
	s.Equal("nice run, got ~~__**CENSORED**__~~", cand.Description)
}

func (s *ProviderSuite) TestRandomRunPaginates() {
	// One full page plus a remainder forces a second request
	runs := make([]testRun, pageSize+3)
	for i := range runs {
		runs[i] = testRun{
			id:      fmt.Sprintf("run-%d", i),
			comment: "described",
			seconds: float64(i + 1),
		}
	}
	s.serveRuns(runs)
	s.random.QueueIntn(0, pageSize+2) // last run, only reachable via page two

	cand, err := s.client.RandomRun(s.ctx)
	s.Require().NoError(err)
	s.Equal(fmt.Sprintf("run-%d", pageSize+2), cand.RunURL[len("https://www.speedrun.com/run/"):])
}

func (s *ProviderSuite) TestRandomRunNoCandidates() {
	s.serveRuns([]testRun{
		{id: "run-1", comment: "", seconds: 100},
		{id: "run-2", comment: "described", seconds: 0},
	})
	s.random.QueueIntn(0)

	_, err := s.client.RandomRun(s.ctx)
	s.ErrorIs(err, model.ErrNoCandidates)
}

func (s *ProviderSuite) TestRandomRunServerError() {
	s.mux.HandleFunc("/v1/runs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	s.random.QueueIntn(0)

	_, err := s.client.RandomRun(s.ctx)
	s.Error(err)
	s.NotErrorIs(err, model.ErrNoCandidates)
}

func (s *ProviderSuite) TestLookupUser() {
	s.mux.HandleFunc("/v1/users/alice_runs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":    "user-abc",
				"names": map[string]any{"international": "alice_runs"},
				"assets": map[string]any{
					"image": map[string]any{"uri": "https://example.com/alice.png"},
				},
			},
		})
	})
	s.mux.HandleFunc("/v2/GetUserPopoverData", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("user-abc", r.URL.Query().Get("userId"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"userSocialConnectionList": []map[string]any{
				{"networkId": 1, "value": "alice_yt", "verified": true},
				{"networkId": 5, "value": "alice", "verified": true},
			},
		})
	})

	profile, err := s.client.LookupUser(s.ctx, "alice_runs")
	s.Require().NoError(err)
	s.Equal("user-abc", profile.ID)
	s.Equal("alice_runs", profile.Username)
	s.Equal("https://example.com/alice.png", profile.ImageURL)
	s.Equal("alice", profile.ChatName)
	s.True(profile.ChatVerified)
}

func (s *ProviderSuite) TestLookupUserNoChatConnection() {
	s.mux.HandleFunc("/v1/users/bob", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":    "user-bob",
				"names": map[string]any{"international": "bob"},
			},
		})
	})
	s.mux.HandleFunc("/v2/GetUserPopoverData", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"userSocialConnectionList": []map[string]any{},
		})
	})

	profile, err := s.client.LookupUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Empty(profile.ChatName)
	s.False(profile.ChatVerified)
}

func (s *ProviderSuite) TestLookupUserNotFound() {
	// Default mux returns 404 for unregistered paths
	_, err := s.client.LookupUser(s.ctx, "nobody")
	s.ErrorIs(err, ErrNotFound)
}
