// Package seed generates synthetic Book-Crossing style datasets for local
// development and demos.
package seed

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/juman-j/book-recommender/internal/dataset"
	"github.com/juman-j/book-recommender/internal/logger"
	"github.com/juman-j/book-recommender/internal/storage"
)

// File names written by the seeder, matching the Book-Crossing export.
const (
	RatingsFile = "BX-Book-Ratings.csv"
	BooksFile   = "BX-Books.csv"
)

// Options controls the size and shape of a generated dataset
type Options struct {
	Users          int
	Books          int
	RatingsPerUser int
	// Seed makes the output reproducible. Zero picks a random seed.
	Seed uint64
	// Latin1 encodes both files as ISO-8859-1 instead of UTF-8.
	Latin1 bool
}

// DefaultOptions returns a dataset large enough for most books to clear the
// popularity threshold.
func DefaultOptions() Options {
	return Options{Users: 200, Books: 60, RatingsPerUser: 25}
}

// Dataset is a generated pair of CSV files
type Dataset struct {
	Ratings []byte
	Books   []byte
	// Titles lists every generated title, in ISBN order.
	Titles []string
}

// Seeder handles dataset generation
type Seeder struct {
	faker *gofakeit.Faker
	opts  Options
}

// NewSeeder creates a new seeder instance
func NewSeeder(opts Options) *Seeder {
	def := DefaultOptions()
	if opts.Users <= 0 {
		opts.Users = def.Users
	}
	if opts.Books <= 0 {
		opts.Books = def.Books
	}
	if opts.RatingsPerUser <= 0 {
		opts.RatingsPerUser = def.RatingsPerUser
	}
	if opts.RatingsPerUser > opts.Books {
		opts.RatingsPerUser = opts.Books
	}
	return &Seeder{faker: gofakeit.New(opts.Seed), opts: opts}
}

type seedBook struct {
	isbn   string
	title  string
	author string
	genre  string
}

// Generate builds both CSV files. Every user has a favourite genre and rates
// books of that genre higher, so readers of one book share tastes with
// readers of the others in the same genre.
func (s *Seeder) Generate() (*Dataset, error) {
	books := s.books()

	var booksBuf bytes.Buffer
	bw := newWriter(&booksBuf)
	_ = bw.Write([]string{dataset.ColISBN, dataset.ColTitle, dataset.ColAuthor, "Year-Of-Publication", "Publisher"})
	titles := make([]string, 0, len(books))
	for _, b := range books {
		_ = bw.Write([]string{b.isbn, b.title, b.author, strconv.Itoa(s.faker.Year()), s.faker.Company()})
		titles = append(titles, b.title)
	}
	bw.Flush()
	if err := bw.Error(); err != nil {
		return nil, fmt.Errorf("failed to write books: %w", err)
	}

	var ratingsBuf bytes.Buffer
	rw := newWriter(&ratingsBuf)
	_ = rw.Write([]string{dataset.ColUserID, dataset.ColISBN, dataset.ColRating})
	ratings := 0
	for userID := 1; userID <= s.opts.Users; userID++ {
		favourite := books[s.faker.IntRange(0, len(books)-1)].genre
		for _, idx := range s.pick(len(books), s.opts.RatingsPerUser) {
			b := books[idx]
			_ = rw.Write([]string{strconv.Itoa(userID), b.isbn, strconv.Itoa(s.rating(b.genre == favourite))})
			ratings++
		}
	}
	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, fmt.Errorf("failed to write ratings: %w", err)
	}

	ds := &Dataset{Ratings: ratingsBuf.Bytes(), Books: booksBuf.Bytes(), Titles: titles}
	if s.opts.Latin1 {
		var err error
		if ds.Ratings, err = toLatin1(ds.Ratings); err != nil {
			return nil, err
		}
		if ds.Books, err = toLatin1(ds.Books); err != nil {
			return nil, err
		}
	}

	logger.Log.Info("Generated dataset",
		zap.Int("users", s.opts.Users),
		zap.Int("books", len(books)),
		zap.Int("ratings", ratings),
		zap.Bool("latin1", s.opts.Latin1),
	)
	return ds, nil
}

func (s *Seeder) books() []seedBook {
	seen := make(map[string]int, s.opts.Books)
	books := make([]seedBook, 0, s.opts.Books)
	for i := 0; i < s.opts.Books; i++ {
		title := s.faker.BookTitle()
		seen[title]++
		if n := seen[title]; n > 1 {
			title = fmt.Sprintf("%s, Volume %d", title, n)
		}
		books = append(books, seedBook{
			isbn:   fmt.Sprintf("%09d%d", i+1, (i+1)%10),
			title:  title,
			author: s.faker.BookAuthor(),
			genre:  s.faker.BookGenre(),
		})
	}
	return books
}

// pick returns n distinct indexes below total
func (s *Seeder) pick(total, n int) []int {
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := s.faker.IntRange(i, total-1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:n]
}

// rating mimics the export: about one row in five is an implicit 0.
func (s *Seeder) rating(favourite bool) int {
	if s.faker.IntRange(1, 5) == 1 {
		return 0
	}
	if favourite {
		return s.faker.IntRange(7, dataset.MaxRating)
	}
	return s.faker.IntRange(1, 6)
}

func newWriter(buf *bytes.Buffer) *csv.Writer {
	w := csv.NewWriter(buf)
	w.Comma = ';'
	return w
}

func toLatin1(b []byte) ([]byte, error) {
	out, err := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode as latin-1: %w", err)
	}
	return out, nil
}

// WriteDir writes the dataset into dir, creating it if needed
func (ds *Dataset) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for name, data := range map[string][]byte{RatingsFile: ds.Ratings, BooksFile: ds.Books} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Log.Info("Wrote dataset file", logger.WithSource(path), zap.Int("bytes", len(data)))
	}
	return nil
}

// Upload puts both files under prefix in bucket
func (ds *Dataset) Upload(ctx context.Context, client storage.ObjectAPI, bucket, prefix string) ([]*storage.UploadResult, error) {
	prefix = strings.Trim(prefix, "/")
	var results []*storage.UploadResult
	for _, f := range []struct {
		name string
		data []byte
	}{{RatingsFile, ds.Ratings}, {BooksFile, ds.Books}} {
		key := f.name
		if prefix != "" {
			key = prefix + "/" + f.name
		}
		res, err := storage.UploadDataset(ctx, client, bucket, key, f.data)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Write stores the dataset at out, which is either a directory or an
// s3://bucket/prefix location resolved through r.
func (ds *Dataset) Write(ctx context.Context, r *storage.Resolver, out string) error {
	if !strings.HasPrefix(out, "s3://") {
		return ds.WriteDir(out)
	}
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(out, "s3://"), "/")
	if bucket == "" {
		return fmt.Errorf("missing bucket in %q", out)
	}
	client, err := r.Client(ctx)
	if err != nil {
		return err
	}
	_, err = ds.Upload(ctx, client, bucket, prefix)
	return err
}
