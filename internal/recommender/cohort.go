package recommender

import (
	"strings"

	"github.com/juman-j/book-recommender/internal/dataset"
)

// Reading is a joined row reduced to the columns the ranking needs.
type Reading struct {
	UserID int
	Rating int
	Title  string
}

// Followers returns the users who rated a book whose title equals title and
// whose author contains author, along with every row projected to a Reading.
// Title and author must already be case-folded like the rows.
func Followers(rows []dataset.JoinedRecord, title, author string) (map[int]struct{}, []Reading) {
	followers := make(map[int]struct{})
	readings := make([]Reading, 0, len(rows))

	for _, r := range rows {
		if r.Book.Title == title && strings.Contains(r.Book.Author, author) {
			followers[r.Rating.UserID] = struct{}{}
		}
		readings = append(readings, Reading{
			UserID: r.Rating.UserID,
			Rating: r.Rating.Rating,
			Title:  r.Book.Title,
		})
	}
	return followers, readings
}
