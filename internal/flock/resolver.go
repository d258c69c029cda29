package flock

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/provider"
	"github.com/MrSnakeDoc/flickflock/internal/provider/tmdb"
)

// TMDBResolver resolves selections through TMDB credits.
type TMDBResolver struct {
	client *tmdb.Client
}

func NewTMDBResolver(client *tmdb.Client) *TMDBResolver {
	return &TMDBResolver{client: client}
}

func (r *TMDBResolver) WorkContributors(ctx context.Context, mediaType domain.MediaType, id int64) ([]domain.Entity, error) {
	people, err := r.client.GetPeopleByMedia(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}
	return toEntities(people), nil
}

func (r *TMDBResolver) PersonRelations(ctx context.Context, personID int64) ([]domain.Entity, error) {
	people, err := r.client.GetPersonRelationsFiltered(ctx, personID)
	if err != nil {
		return nil, err
	}
	return toEntities(people), nil
}

func toEntities(people []tmdb.PersonCredit) []domain.Entity {
	out := make([]domain.Entity, len(people))
	for i, p := range people {
		out[i] = p.Entity()
	}
	return out
}

// ProviderWorks returns a WorksFunc backed by TMDB. A contributor the
// provider cannot serve has no works rather than failing the ranking.
func ProviderWorks(client *tmdb.Client, log logger.Logger) WorksFunc {
	return func(ctx context.Context, id int64) ([]domain.Work, error) {
		works, err := client.WorksForPerson(ctx, id)
		if err == nil {
			return works, nil
		}
		if errors.Is(err, provider.ErrUpstreamUnavailable) || provider.IsNotFound(err) {
			log.Warn("no works for contributor", logger.Int64("contributor_id", id), logger.Error(err))
			return nil, nil
		}
		return nil, err
	}
}

// ProviderDetails returns a DetailsFunc yielding TMDB person summaries.
func ProviderDetails(client *tmdb.Client) DetailsFunc {
	return func(ctx context.Context, id int64) (any, error) {
		return client.PersonSummary(ctx, id)
	}
}
