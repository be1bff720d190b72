package recommender

import (
	"math"
	"sort"
)

// RatingMatrix is a user × title pivot of ratings. Users and Titles are
// sorted ascending; a missing rating is NaN.
type RatingMatrix struct {
	Users   []int
	Titles  []string
	columns map[string][]float64
}

// Empty reports whether the matrix has no cells at all.
func (m *RatingMatrix) Empty() bool {
	return m == nil || len(m.Users) == 0 || len(m.Titles) == 0
}

// HasTitle reports whether title is one of the matrix columns.
func (m *RatingMatrix) HasTitle(title string) bool {
	if m == nil {
		return false
	}
	_, ok := m.columns[title]
	return ok
}

// Column returns the ratings of title, aligned with Users.
func (m *RatingMatrix) Column(title string) ([]float64, bool) {
	if m == nil {
		return nil, false
	}
	col, ok := m.columns[title]
	return col, ok
}

// PopularBooks keeps the readings of followers, drops titles with fewer than
// MinRatings of those readings and pivots the rest into a RatingMatrix.
func PopularBooks(readings []Reading, followers map[int]struct{}) (*RatingMatrix, []Reading) {
	cohort := make([]Reading, 0)
	counts := make(map[string]int)
	for _, r := range readings {
		if _, ok := followers[r.UserID]; !ok {
			continue
		}
		cohort = append(cohort, r)
		counts[r.Title]++
	}

	subset := make([]Reading, 0, len(cohort))
	for _, r := range cohort {
		if counts[r.Title] >= MinRatings {
			subset = append(subset, r)
		}
	}

	return pivot(subset), subset
}

type cell struct {
	sum   float64
	count int
}

// pivot builds the matrix. A user who rated the same title more than once
// (several editions share a title) gets the mean of those ratings.
func pivot(subset []Reading) *RatingMatrix {
	type key struct {
		user  int
		title string
	}
	cells := make(map[key]*cell)
	userSet := make(map[int]struct{})
	titleSet := make(map[string]struct{})

	for _, r := range subset {
		k := key{r.UserID, r.Title}
		c, ok := cells[k]
		if !ok {
			c = &cell{}
			cells[k] = c
		}
		c.sum += float64(r.Rating)
		c.count++
		userSet[r.UserID] = struct{}{}
		titleSet[r.Title] = struct{}{}
	}

	m := &RatingMatrix{
		Users:   make([]int, 0, len(userSet)),
		Titles:  make([]string, 0, len(titleSet)),
		columns: make(map[string][]float64, len(titleSet)),
	}
	for u := range userSet {
		m.Users = append(m.Users, u)
	}
	sort.Ints(m.Users)
	for t := range titleSet {
		m.Titles = append(m.Titles, t)
	}
	sort.Strings(m.Titles)

	for _, title := range m.Titles {
		col := make([]float64, len(m.Users))
		for i, user := range m.Users {
			if c, ok := cells[key{user, title}]; ok {
				col[i] = c.sum / float64(c.count)
			} else {
				col[i] = math.NaN()
			}
		}
		m.columns[title] = col
	}
	return m
}
