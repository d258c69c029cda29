package tmdb

import (
	"sort"
	"strings"
)

var articles = []string{"the ", "a ", "an "}

func stripArticle(title string) string {
	for _, a := range articles {
		if strings.HasPrefix(title, a) {
			return title[len(a):]
		}
	}
	return title
}

// titleBoost ranks how well a title matches the query: 3 exact, 2 prefix,
// 1 substring, 0 otherwise. Leading articles are ignored for exact and
// prefix matches.
func titleBoost(title, query string) int {
	title = strings.ToLower(title)
	bareTitle, bareQuery := stripArticle(title), stripArticle(query)

	switch {
	case title == query || bareTitle == bareQuery:
		return 3
	case strings.HasPrefix(title, query) || strings.HasPrefix(bareTitle, bareQuery):
		return 2
	case strings.Contains(title, query):
		return 1
	default:
		return 0
	}
}

// RankSearchResults orders results by title match, then popularity.
func RankSearchResults(results []SearchResult, query string) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))

	type ranked struct {
		result SearchResult
		boost  int
	}
	items := make([]ranked, len(results))
	for i, r := range results {
		items[i] = ranked{result: r, boost: titleBoost(r.DisplayTitle(), q)}
	}

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].boost != items[b].boost {
			return items[a].boost > items[b].boost
		}
		return items[a].result.Popularity > items[b].result.Popularity
	})

	out := make([]SearchResult, len(items))
	for i, it := range items {
		out[i] = it.result
	}
	return out
}
