package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/juman-j/book-recommender/internal/logger"
	"github.com/juman-j/book-recommender/internal/metrics"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

const delimiter = ';'

var errInvalidUTF8 = errors.New("invalid UTF-8 byte sequence")

// Strategy decodes raw file bytes into text. Name identifies the strategy
// in logs and metrics; Decode also reports the concrete charset it used.
type Strategy struct {
	Name   string
	Decode func(raw []byte) (text string, charset string, err error)
}

// DefaultStrategies tries UTF-8, then Latin-1, then a statistically detected
// charset.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "utf-8", Decode: decodeUTF8},
		{Name: "latin-1", Decode: decodeLatin1},
		{Name: "detected", Decode: decodeDetected},
	}
}

func decodeUTF8(raw []byte) (string, string, error) {
	if !utf8.Valid(raw) {
		return "", "", errInvalidUTF8
	}
	return string(raw), "UTF-8", nil
}

func decodeLatin1(raw []byte) (string, string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", err
	}
	return string(out), "ISO-8859-1", nil
}

func decodeDetected(raw []byte) (string, string, error) {
	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return "", "", fmt.Errorf("detecting charset: %w", err)
	}
	enc, err := htmlindex.Get(result.Charset)
	if err != nil {
		return "", "", fmt.Errorf("unsupported charset %q: %w", result.Charset, err)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", result.Charset, err)
	}
	return string(out), result.Charset, nil
}

// Loader reads CSV datasets, falling back through its strategies until one
// yields a table with the required header.
type Loader struct {
	strategies []Strategy
}

// NewLoader creates a loader with DefaultStrategies.
func NewLoader() *Loader {
	return &Loader{strategies: DefaultStrategies()}
}

// NewLoaderWithStrategies creates a loader with an explicit strategy chain.
func NewLoaderWithStrategies(strategies ...Strategy) *Loader {
	return &Loader{strategies: strategies}
}

// frame is one decoded CSV document before typing.
type frame struct {
	header    []string
	index     map[string]int
	rows      []frameRow
	malformed []MalformedRow
	strategy  string
	charset   string
}

type frameRow struct {
	line   int
	fields []string
}

func (f *frame) field(r frameRow, column string) string {
	return r.fields[f.index[column]]
}

// LoadRatings loads a ratings file (User-ID;ISBN;Book-Rating).
func (l *Loader) LoadRatings(ctx context.Context, src Source) (*RatingsTable, error) {
	start := time.Now()
	f, err := l.read(ctx, src, ColUserID, ColISBN, ColRating)
	if err != nil {
		return nil, err
	}

	table := &RatingsTable{
		Source:   src.Name(),
		Encoding: f.charset,
		Records:  make([]Rating, 0, len(f.rows)),
	}
	for _, r := range f.rows {
		userID, err := strconv.Atoi(strings.TrimSpace(f.field(r, ColUserID)))
		if err != nil {
			f.malformed = append(f.malformed, MalformedRow{Line: r.line, Reason: fmt.Sprintf("%s is not an integer", ColUserID)})
			continue
		}
		rating, err := strconv.Atoi(strings.TrimSpace(f.field(r, ColRating)))
		if err != nil || rating < 0 || rating > MaxRating {
			f.malformed = append(f.malformed, MalformedRow{Line: r.line, Reason: fmt.Sprintf("%s is not an integer in 0..%d", ColRating, MaxRating)})
			continue
		}
		table.Records = append(table.Records, Rating{
			UserID: userID,
			ISBN:   f.field(r, ColISBN),
			Rating: rating,
		})
	}
	table.Skipped = len(f.malformed)

	l.report("ratings", src, f, len(table.Records), time.Since(start))
	return table, nil
}

// LoadBooks loads a books file (ISBN;Book-Title;Book-Author;...).
func (l *Loader) LoadBooks(ctx context.Context, src Source) (*BooksTable, error) {
	start := time.Now()
	f, err := l.read(ctx, src, ColISBN, ColTitle, ColAuthor)
	if err != nil {
		return nil, err
	}

	var extra []string
	for _, name := range f.header {
		if name != ColISBN && name != ColTitle && name != ColAuthor {
			extra = append(extra, name)
		}
	}

	table := &BooksTable{
		Source:   src.Name(),
		Encoding: f.charset,
		Columns:  extra,
		Records:  make([]Book, 0, len(f.rows)),
	}
	for _, r := range f.rows {
		book := Book{
			ISBN:   f.field(r, ColISBN),
			Title:  f.field(r, ColTitle),
			Author: f.field(r, ColAuthor),
		}
		if len(extra) > 0 {
			book.Metadata = make(map[string]string, len(extra))
			for _, name := range extra {
				book.Metadata[name] = f.field(r, name)
			}
		}
		table.Records = append(table.Records, book)
	}
	table.Skipped = len(f.malformed)

	l.report("books", src, f, len(table.Records), time.Since(start))
	return table, nil
}

func (l *Loader) read(ctx context.Context, src Source, required ...string) (*frame, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, &UnreadableFileError{Source: src.Name(), Attempts: []error{fmt.Errorf("open: %w", err)}}
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, &UnreadableFileError{Source: src.Name(), Attempts: []error{fmt.Errorf("read: %w", err)}}
	}

	var attempts []error
	for _, s := range l.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, charset, err := s.Decode(raw)
		if err != nil {
			attempts = append(attempts, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		f, err := parseFrame(text, required)
		if err != nil {
			attempts = append(attempts, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		f.strategy = s.Name
		f.charset = charset
		return f, nil
	}
	if len(attempts) == 0 {
		attempts = append(attempts, errors.New("no decoding strategy configured"))
	}
	return nil, &UnreadableFileError{Source: src.Name(), Attempts: attempts}
}

// parseFrame splits decoded text into header and rows. Rows with broken
// quoting or a field count different from the header are recorded as
// malformed and skipped.
func parseFrame(text string, required []string) (*frame, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	f := &frame{index: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(name)
		f.header = append(f.header, name)
		f.index[name] = i
	}
	for _, col := range required {
		if _, ok := f.index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				f.malformed = append(f.malformed, MalformedRow{Line: pe.StartLine, Reason: pe.Err.Error()})
				continue
			}
			return nil, err
		}
		line, _ := r.FieldPos(0)
		if len(rec) != len(f.header) {
			f.malformed = append(f.malformed, MalformedRow{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, saw %d", len(f.header), len(rec)),
			})
			continue
		}
		f.rows = append(f.rows, frameRow{line: line, fields: rec})
	}
	return f, nil
}

func (l *Loader) report(dataset string, src Source, f *frame, rows int, took time.Duration) {
	m := metrics.Get()
	m.DatasetLoadDuration.WithLabelValues(dataset).Observe(took.Seconds())
	m.DatasetRowsLoaded.WithLabelValues(dataset).Add(float64(rows))
	m.DatasetEncodingUsed.WithLabelValues(dataset, f.strategy).Inc()

	for _, bad := range f.malformed {
		logger.Log.Warn("Skipping malformed row",
			logger.WithSource(src.Name()),
			zap.Int("line", bad.Line),
			zap.String("reason", bad.Reason),
		)
	}
	if len(f.malformed) > 0 {
		m.DatasetMalformedRows.WithLabelValues(dataset).Add(float64(len(f.malformed)))
	}

	logger.Log.Info("Dataset loaded",
		zap.String("dataset", dataset),
		logger.WithSource(src.Name()),
		zap.String("strategy", f.strategy),
		zap.String("charset", f.charset),
		zap.Int("rows", rows),
		zap.Int("skipped", len(f.malformed)),
		zap.Duration("took", took),
	)
}
