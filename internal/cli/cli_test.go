package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juman-j/book-recommender/internal/dataset"
	"github.com/juman-j/book-recommender/internal/seed"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func seedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := run(t, "seed", "--out", dir, "--users", "120", "--books", "10", "--ratings-per-user", "8", "--seed", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote BX-Book-Ratings.csv and BX-Books.csv")
	return dir
}

func firstTitle(t *testing.T, dir string) string {
	t.Helper()
	books, err := dataset.NewLoader().LoadBooks(t.Context(), dataset.FileSource(filepath.Join(dir, seed.BooksFile)))
	require.NoError(t, err)
	return books.Records[0].Title
}

func TestSeed_WritesFiles(t *testing.T) {
	dir := seedDir(t)

	for _, name := range []string{seed.RatingsFile, seed.BooksFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestRecommend_JSON(t *testing.T) {
	dir := seedDir(t)
	title := firstTitle(t, dir)

	out, err := run(t, "recommend",
		"--title", strings.ToUpper(title),
		"--ratings", filepath.Join(dir, seed.RatingsFile),
		"--books", filepath.Join(dir, seed.BooksFile),
		"--output", "json",
	)
	require.NoError(t, err)

	var got struct {
		Status          string `json:"status"`
		Recommendations []struct {
			Title string `json:"book_title"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ranked", got.Status)
	assert.NotEmpty(t, got.Recommendations)
	assert.LessOrEqual(t, len(got.Recommendations), 5)
}

func TestRecommend_EnvironmentOverrides(t *testing.T) {
	dir := seedDir(t)
	t.Setenv("BOOKREC_RATINGS", filepath.Join(dir, seed.RatingsFile))
	t.Setenv("BOOKREC_BOOKS", filepath.Join(dir, seed.BooksFile))
	t.Setenv("BOOKREC_OUTPUT", "table")

	out, err := run(t, "recommend", "--title", "no such book")

	require.NoError(t, err)
	assert.Contains(t, out, `Warning: no ratings found for "no such book"`)
}

func TestRecommend_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing title", []string{"recommend"}, "--title is required"},
		{"bad output", []string{"recommend", "--title", "x", "--output", "yaml"}, "unknown output format"},
		{"missing file", []string{"recommend", "--title", "x", "--ratings", "/nonexistent/ratings.csv"}, "unreadable file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
