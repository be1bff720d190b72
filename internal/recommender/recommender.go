// Package recommender ranks books by how closely their ratings follow the
// ratings of a target book, among the readers of that book.
//
// Every function in this package is pure: inputs are never mutated and no
// state survives a call.
package recommender

import (
	"strings"

	"github.com/juman-j/book-recommender/internal/dataset"
)

const (
	// MinRatings is the number of follower ratings a title needs before its
	// correlation with the target is considered meaningful.
	MinRatings = 8
	// TopN is how many recommendations Recommend returns.
	TopN = 5
)

// Outcome is the terminal state of a pipeline run.
type Outcome int

const (
	OutcomeRanked Outcome = iota
	OutcomeNotFound
	OutcomeNoRecommendations
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRanked:
		return "ranked"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNoRecommendations:
		return "no_recommendations"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Recommendation is one ranked book.
type Recommendation struct {
	Title         string  `json:"book_title"`
	AverageRating float64 `json:"rating"`
	// Correlation is nil when it is undefined (fewer than two co-ratings or
	// a constant rating vector).
	Correlation *float64 `json:"correlation"`
}

// Result is what Recommend returns. Recommendations is only populated for
// OutcomeRanked.
type Result struct {
	Outcome         Outcome          `json:"status"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Recommend runs the full pipeline over joined rating/book rows for the
// given title and author substring. Matching is case-insensitive; an empty
// author matches every author.
func Recommend(rows []dataset.JoinedRecord, title, author string) Result {
	title = strings.ToLower(title)
	author = strings.ToLower(author)

	rated := normalize(rows)

	followers, readings := Followers(rated, title, author)
	if len(followers) == 0 {
		return Result{Outcome: OutcomeNotFound}
	}

	matrix, subset := PopularBooks(readings, followers)
	if len(subset) == 0 || matrix.Empty() || !matrix.HasTitle(title) {
		return Result{Outcome: OutcomeNoRecommendations}
	}

	ranked := Rank(matrix, subset, title)
	if len(ranked) == 0 {
		return Result{Outcome: OutcomeNoRecommendations}
	}
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return Result{Outcome: OutcomeRanked, Recommendations: ranked}
}

// normalize drops unrated rows (rating 0) and folds the matched text columns
// to lowercase. Book metadata is left untouched: the cohort projection drops
// it before anything reads it.
func normalize(rows []dataset.JoinedRecord) []dataset.JoinedRecord {
	out := make([]dataset.JoinedRecord, 0, len(rows))
	for _, r := range rows {
		if r.Rating.Rating == 0 {
			continue
		}
		r.Rating.ISBN = strings.ToLower(r.Rating.ISBN)
		r.Book.ISBN = strings.ToLower(r.Book.ISBN)
		r.Book.Title = strings.ToLower(r.Book.Title)
		r.Book.Author = strings.ToLower(r.Book.Author)
		out = append(out, r)
	}
	return out
}
