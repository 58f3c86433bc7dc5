package rounds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/splitbot-dev/splitbot/internal/dependencies/random"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// ErrNotFound indicates the provider has no record for the requested
// resource (e.g. an unknown username)
var ErrNotFound = errors.New("rounds: not found")

// DefaultBaseURL is the production API root
const DefaultBaseURL = "https://www.speedrun.com/api"

// Topic is one fetchable pool of runs (a game chapter)
type Topic struct {
	Key    string
	Name   string
	GameID string
}

// DefaultTopics returns the chapters rounds are drawn from
func DefaultTopics() []Topic {
	return []Topic{
		{Key: "chapter_1", Name: "Chapter 1", GameID: "w6j7vpx6"},
		{Key: "chapter_2", Name: "Chapter 2", GameID: "4d7nqx36"},
		{Key: "chapter_3", Name: "Chapter 3", GameID: "w6jge376"},
	}
}

// Candidate is one playable round datum drawn from the provider
type Candidate struct {
	Topic       Topic
	Description string // cleaned and censored, safe to show
	Date        string
	Seconds     int64 // the run's primary time
	RunURL      string
}

// UserProfile is a resolved speedrun.com account
type UserProfile struct {
	ID           string
	Username     string
	ImageURL     string
	ChatName     string // linked chat account name, if any
	ChatVerified bool
}

// Provider supplies candidate round data and account lookups
type Provider interface {
	// RandomRun picks a random topic and returns a random eligible run
	// from it. Returns model.ErrNoCandidates when the topic has no run
	// with both a description and a recorded time; transport failures
	// are returned as distinct wrapped errors.
	RandomRun(ctx context.Context) (*Candidate, error)
	// LookupUser resolves a speedrun.com username to a profile,
	// including any linked chat account
	LookupUser(ctx context.Context, username string) (*UserProfile, error)
}

// Client is the HTTP implementation of Provider against the
// speedrun.com API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	random     random.Random
	topics     []Topic
	logger     *slog.Logger
}

// pageSize is the provider's maximum page size for run listings
const pageSize = 200

// Ensure Client implements Provider
var _ Provider = (*Client)(nil)

// NewClient creates a provider client. baseURL is the API root without
// a trailing slash (e.g. https://www.speedrun.com/api).
func NewClient(baseURL string, rnd random.Random, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Stay well under the provider's documented 100 req/min
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		random:  rnd,
		topics:  DefaultTopics(),
		logger:  logger.With(slog.String("component", "rounds")),
	}
}

// RandomRun implements Provider
func (c *Client) RandomRun(ctx context.Context) (*Candidate, error) {
	topic := c.topics[c.random.Intn(len(c.topics))]

	runs, err := c.fetchVerifiedRuns(ctx, topic)
	if err != nil {
		return nil, err
	}

	// Only runs that can actually be played: a description to show and
	// a recorded time to guess
	eligible := runs[:0]
	for _, run := range runs {
		if run.Comment != "" && run.Times.PrimaryT > 0 {
			eligible = append(eligible, run)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("topic %s: %w", topic.Key, model.ErrNoCandidates)
	}

	run := eligible[c.random.Intn(len(eligible))]
	description := CensorTimes(CleanDescription(run.Comment))

	return &Candidate{
		Topic:       topic,
		Description: description,
		Date:        run.Date,
		Seconds:     int64(run.Times.PrimaryT),
		RunURL:      "https://www.speedrun.com/run/" + run.ID,
	}, nil
}

type runRecord struct {
	ID      string `json:"id"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
	Times   struct {
		PrimaryT float64 `json:"primary_t"`
	} `json:"times"`
}

type runsResponse struct {
	Data []runRecord `json:"data"`
}

// fetchVerifiedRuns pages through all verified runs for a topic
func (c *Client) fetchVerifiedRuns(ctx context.Context, topic Topic) ([]runRecord, error) {
	var all []runRecord
	offset := 0
	for {
		params := url.Values{
			"game":   {topic.GameID},
			"status": {"verified"},
			"max":    {strconv.Itoa(pageSize)},
			"offset": {strconv.Itoa(offset)},
		}

		var page runsResponse
		if err := c.get(ctx, "/v1/runs?"+params.Encode(), &page); err != nil {
			return nil, fmt.Errorf("fetch runs for %s: %w", topic.Key, err)
		}

		all = append(all, page.Data...)
		if len(page.Data) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}

type userResponse struct {
	Data struct {
		ID    string `json:"id"`
		Names struct {
			International string `json:"international"`
		} `json:"names"`
		Assets struct {
			Image struct {
				URI string `json:"uri"`
			} `json:"image"`
		} `json:"assets"`
	} `json:"data"`
}

type popoverResponse struct {
	UserSocialConnectionList []struct {
		NetworkID int    `json:"networkId"`
		Value     string `json:"value"`
		Verified  bool   `json:"verified"`
	} `json:"userSocialConnectionList"`
}

// chatNetworkID is the provider's network identifier for the chat
// platform in social connection lists
const chatNetworkID = 5

// LookupUser implements Provider
func (c *Client) LookupUser(ctx context.Context, username string) (*UserProfile, error) {
	var user userResponse
	if err := c.get(ctx, "/v1/users/"+url.PathEscape(username), &user); err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", username, err)
	}

	profile := &UserProfile{
		ID:       user.Data.ID,
		Username: user.Data.Names.International,
		ImageURL: user.Data.Assets.Image.URI,
	}

	var popover popoverResponse
	if err := c.get(ctx, "/v2/GetUserPopoverData?userId="+url.QueryEscape(profile.ID), &popover); err != nil {
		return nil, fmt.Errorf("lookup social connections for %s: %w", username, err)
	}
	for _, conn := range popover.UserSocialConnectionList {
		if conn.NetworkID == chatNetworkID {
			profile.ChatName = conn.Value
			profile.ChatVerified = conn.Verified
			break
		}
	}
	return profile, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
