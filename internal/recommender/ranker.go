package recommender

import (
	"math"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rank correlates every matrix column with the target column and returns one
// Recommendation per other title, sorted by correlation descending. Undefined
// correlations sort last; ties are broken by title.
func Rank(m *RatingMatrix, subset []Reading, target string) []Recommendation {
	targetCol, ok := m.Column(target)
	if !ok {
		return nil
	}

	totals := make(map[string]*cell)
	for _, r := range subset {
		c, ok := totals[r.Title]
		if !ok {
			c = &cell{}
			totals[r.Title] = c
		}
		c.sum += float64(r.Rating)
		c.count++
	}

	caser := cases.Title(language.Und)
	ranked := make([]Recommendation, 0, len(m.Titles))
	for _, title := range m.Titles {
		if title == target {
			continue
		}
		col, _ := m.Column(title)

		rec := Recommendation{Title: caser.String(title)}
		if c := totals[title]; c != nil && c.count > 0 {
			rec.AverageRating = round2(c.sum / float64(c.count))
		}
		if r, ok := Pearson(targetCol, col); ok {
			v := round2(r)
			rec.Correlation = &v
		}
		ranked = append(ranked, rec)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankedBefore(ranked[i], ranked[j])
	})
	return ranked
}

func rankedBefore(a, b Recommendation) bool {
	switch {
	case a.Correlation != nil && b.Correlation == nil:
		return true
	case a.Correlation == nil && b.Correlation != nil:
		return false
	case a.Correlation != nil && *a.Correlation != *b.Correlation:
		return *a.Correlation > *b.Correlation
	}
	return a.Title < b.Title
}

// Pearson returns the correlation coefficient of x and y over the positions
// where both are defined (not NaN). ok is false when fewer than two such
// positions exist or either side has zero variance.
//
// Zero variance is decided on the paired values themselves. A column of
// repeated fractional means such as 22/3 can leave rounding noise in the
// squared deviations, so the sums alone cannot tell a constant column apart.
func Pearson(x, y []float64) (r float64, ok bool) {
	if len(x) != len(y) {
		return 0, false
	}

	var n int
	var sumX, sumY, firstX, firstY float64
	constX, constY := true, true
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		if n == 0 {
			firstX, firstY = x[i], y[i]
		} else {
			constX = constX && x[i] == firstX
			constY = constY && y[i] == firstY
		}
		sumX += x[i]
		sumY += y[i]
		n++
	}
	if n < 2 || constX || constY {
		return 0, false
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var numerator, sumSqX, sumSqY float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx := x[i] - meanX
		dy := y[i] - meanY
		numerator += dx * dy
		sumSqX += dx * dx
		sumSqY += dy * dy
	}
	if sumSqX == 0 || sumSqY == 0 {
		return 0, false
	}

	r = numerator / math.Sqrt(sumSqX*sumSqY)
	return math.Max(-1, math.Min(1, r)), true
}

func round2(v float64) float64 {
	v = math.Round(v*100) / 100
	if v == 0 {
		return 0 // no negative zero
	}
	return v
}
