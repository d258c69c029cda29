// Package omdb enriches works with award data from the OMDb API.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/provider"
)

// DefaultBaseURL is the OMDb API root.
const DefaultBaseURL = "https://www.omdbapi.com/"

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("omdb enrichment disabled")

// Title is the subset of an OMDb record we read.
type Title struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Awards   string `json:"Awards"`
	ImdbID   string `json:"imdbID"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Awards is the parsed form of OMDb's free-text awards line.
type Awards struct {
	Text        *string `json:"text"`
	OscarWins   int     `json:"oscar_wins"`
	OscarNoms   int     `json:"oscar_noms"`
	Wins        int     `json:"wins"`
	Nominations int     `json:"nominations"`
}

var (
	oscarWonRe = regexp.MustCompile(`Won (\d+) Oscar`)
	oscarNomRe = regexp.MustCompile(`Nominated for (\d+) Oscar`)
	winsRe     = regexp.MustCompile(`(\d+) win`)
	nomsRe     = regexp.MustCompile(`(\d+) nomination`)
)

// ParseAwards reads strings such as "Won 3 Oscars. 54 wins & 78 nominations total".
// Empty and "N/A" yield zero counts and a nil Text.
func ParseAwards(s string) Awards {
	if s == "" || s == "N/A" {
		return Awards{}
	}
	text := s
	return Awards{
		Text:        &text,
		OscarWins:   firstInt(oscarWonRe, s),
		OscarNoms:   firstInt(oscarNomRe, s),
		Wins:        firstInt(winsRe, s),
		Nominations: firstInt(nomsRe, s),
	}
}

func firstInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// Client fetches OMDb records by IMDb id.
type Client struct {
	baseURL string
	apiKey  string
	http    *provider.Client
	log     logger.Logger
}

// New creates an OMDb client. An empty apiKey disables every lookup.
func New(baseURL, apiKey string, pc *provider.Client, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	log = log.Component("omdb")
	if apiKey == "" {
		log.Warn("no OMDB_API_KEY configured, OMDb enrichment disabled")
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: pc, log: log}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// GetByImdbID fetches a title. It returns (nil, nil) when OMDb has no record.
func (c *Client) GetByImdbID(ctx context.Context, imdbID string) (*Title, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if imdbID == "" {
		return nil, nil
	}

	params := url.Values{"i": {imdbID}}
	cacheKey := "omdb/?" + params.Encode()
	params.Set("apikey", c.apiKey)

	var title Title
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), cacheKey, &title); err != nil {
		return nil, fmt.Errorf("omdb %s: %w", imdbID, err)
	}
	if title.Response == "False" {
		c.log.Debug("omdb returned no result", logger.String("imdb_id", imdbID), logger.String("error", title.Error))
		return nil, nil
	}
	return &title, nil
}

// Awards fetches and parses the awards of a title.
func (c *Client) Awards(ctx context.Context, imdbID string) (Awards, error) {
	title, err := c.GetByImdbID(ctx, imdbID)
	if err != nil || title == nil {
		return Awards{}, err
	}
	return ParseAwards(title.Awards), nil
}
