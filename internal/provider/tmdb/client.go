// Package tmdb is the metadata provider client for The Movie Database.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/provider"
	"github.com/MrSnakeDoc/flickflock/internal/sources/relations"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

var (
	// ErrInvalidMediaType is returned for media types other than movie and tv.
	ErrInvalidMediaType = errors.New("invalid media type")
	// ErrEmptyQuery is returned by Search for a blank query.
	ErrEmptyQuery = errors.New("empty search query")
)

// Config holds the TMDB endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Fanout  int // parallel credit lookups while expanding a person
}

// Client talks to TMDB through a shared provider.Client.
type Client struct {
	baseURL string
	apiKey  string
	fanout  int
	http    *provider.Client
	filter  atomic.Pointer[relations.Filter]
	log     logger.Logger
}

// New creates a TMDB client using the default relation filter.
func New(cfg Config, pc *provider.Client, log logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Fanout < 1 {
		cfg.Fanout = 1
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		fanout:  cfg.Fanout,
		http:    pc,
		log:     log.Component("tmdb"),
	}
	c.SetRelationFilter(relations.DefaultFilter())
	return c
}

// SetRelationFilter swaps the filter used by GetPersonRelationsFiltered.
func (c *Client) SetRelationFilter(f relations.Filter) {
	c.filter.Store(&f)
}

// RelationFilter returns the active filter.
func (c *Client) RelationFilter() relations.Filter {
	return *c.filter.Load()
}

// BreakerState reports the upstream circuit state.
func (c *Client) BreakerState() string {
	return c.http.BreakerState()
}

// get issues GET {base}/{path}?{params}&api_key=... The cache key is the
// same request without the api key.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	cacheKey := "tmdb/" + path
	if len(params) > 0 {
		cacheKey += "?" + params.Encode()
	}

	params.Set("api_key", c.apiKey)
	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())

	if err := c.http.GetJSON(ctx, requestURL, cacheKey, out); err != nil {
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	return nil
}

func workPath(mediaType domain.MediaType, id int64) (string, error) {
	if !mediaType.IsWork() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaType, mediaType)
	}
	return string(mediaType) + "/" + strconv.FormatInt(id, 10), nil
}

// Search runs a multi search and re-ranks the first page of results.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	var page searchPage
	if err := c.get(ctx, "search/multi", url.Values{"query": {query}}, &page); err != nil {
		return nil, err
	}
	return RankSearchResults(page.Results, query), nil
}

// GetCredits returns the cast and crew of a movie or show.
func (c *Client) GetCredits(ctx context.Context, mediaType domain.MediaType, id int64) (*Credits, error) {
	path, err := workPath(mediaType, id)
	if err != nil {
		return nil, err
	}
	var credits Credits
	if err := c.get(ctx, path+"/credits", nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// GetPeopleByMedia returns every contributor of a work, cast then crew.
func (c *Client) GetPeopleByMedia(ctx context.Context, mediaType domain.MediaType, id int64) ([]PersonCredit, error) {
	credits, err := c.GetCredits(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}
	out := make([]PersonCredit, 0, len(credits.Cast)+len(credits.Crew))
	out = append(out, credits.Cast...)
	return append(out, credits.Crew...), nil
}

// GetPeopleByMediaFiltered returns the top-billed cast plus crew from key
// departments.
func (c *Client) GetPeopleByMediaFiltered(ctx context.Context, mediaType domain.MediaType, id int64) ([]PersonCredit, error) {
	credits, err := c.GetCredits(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}
	return filterCredits(credits, c.RelationFilter()), nil
}

func filterCredits(credits *Credits, f relations.Filter) []PersonCredit {
	cast := credits.Cast
	if len(cast) > f.MaxCastPerWork {
		cast = cast[:f.MaxCastPerWork]
	}
	out := make([]PersonCredit, 0, len(cast))
	out = append(out, cast...)
	for _, p := range credits.Crew {
		if f.IsKeyDepartment(p.Department) {
			out = append(out, p)
		}
	}
	return out
}

// GetPersonByID returns a person's details merged with their combined credits.
func (c *Client) GetPersonByID(ctx context.Context, id int64) (*Person, error) {
	path := "person/" + strconv.FormatInt(id, 10)

	var (
		person  Person
		credits combinedCredits
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(gctx, path, nil, &person) })
	g.Go(func() error { return c.get(gctx, path+"/combined_credits", nil, &credits) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	person.Cast = credits.Cast
	person.Crew = credits.Crew
	if person.ID == 0 {
		person.ID = id
	}
	return &person, nil
}

// PersonSummary returns the details shown next to a ranked contributor.
func (c *Client) PersonSummary(ctx context.Context, id int64) (Summary, error) {
	p, err := c.GetPersonByID(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return p.Summary(), nil
}

// WorksForPerson returns every work a person is credited on.
func (c *Client) WorksForPerson(ctx context.Context, id int64) ([]domain.Work, error) {
	p, err := c.GetPersonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Works(), nil
}

// TopWorks picks the works a person is expanded through: deduplicated by
// id, most popular first, skipping excluded genres, at most f.MaxWorks.
func TopWorks(p *Person, f relations.Filter) []WorkCredit {
	all := make([]WorkCredit, 0, len(p.Cast)+len(p.Crew))
	all = append(all, p.Cast...)
	all = append(all, p.Crew...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Popularity > all[j].Popularity
	})

	seen := make(map[int64]struct{}, len(all))
	top := make([]WorkCredit, 0, f.MaxWorks)
	for _, w := range all {
		if len(top) >= f.MaxWorks {
			break
		}
		if _, dup := seen[w.ID]; dup {
			continue
		}
		seen[w.ID] = struct{}{}
		if f.IsExcluded(w.GenreIDs) || !w.MediaType.IsWork() {
			continue
		}
		top = append(top, w)
	}
	return top
}

// GetPersonRelationsFiltered returns the collaborators of a person drawn
// from their top works. A work whose credits cannot be fetched is skipped.
func (c *Client) GetPersonRelationsFiltered(ctx context.Context, id int64) ([]PersonCredit, error) {
	p, err := c.GetPersonByID(ctx, id)
	if err != nil {
		return nil, err
	}

	filter := c.RelationFilter()
	works := TopWorks(p, filter)
	slots := make([][]PersonCredit, len(works))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanout)
	for i, w := range works {
		g.Go(func() error {
			credits, err := c.GetCredits(gctx, w.MediaType, w.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.log.Warn("skipping work in person expansion",
					logger.Int64("person_id", id),
					logger.Int64("work_id", w.ID),
					logger.Error(err))
				return nil
			}
			slots[i] = filterCredits(credits, filter)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []PersonCredit
	for _, s := range slots {
		out = append(out, s...)
	}
	return out, nil
}

// GetExternalIDs returns the external identifiers of a movie or show.
func (c *Client) GetExternalIDs(ctx context.Context, mediaType domain.MediaType, id int64) (ExternalIDs, error) {
	path, err := workPath(mediaType, id)
	if err != nil {
		return ExternalIDs{}, err
	}
	var ids ExternalIDs
	if err := c.get(ctx, path+"/external_ids", nil, &ids); err != nil {
		return ExternalIDs{}, err
	}
	return ids, nil
}
