// Package dataset loads the ratings and books CSV files into typed tables
// and joins them on ISBN.
package dataset

// Column names of the Book-Crossing CSV exports.
const (
	ColUserID = "User-ID"
	ColISBN   = "ISBN"
	ColRating = "Book-Rating"
	ColTitle  = "Book-Title"
	ColAuthor = "Book-Author"
)

// MaxRating is the top of the 0..10 rating scale. Zero means "not rated".
const MaxRating = 10

// Rating is one row of the ratings file.
type Rating struct {
	UserID int
	ISBN   string
	Rating int
}

// Book is one row of the books file. Columns beyond ISBN, title and author
// are kept as text in Metadata, keyed by their header name.
type Book struct {
	ISBN     string
	Title    string
	Author   string
	Metadata map[string]string
}

// RatingsTable is the typed content of a ratings file.
type RatingsTable struct {
	Source   string
	Encoding string
	Records  []Rating
	// Skipped counts malformed rows dropped while parsing.
	Skipped int
}

// BooksTable is the typed content of a books file.
type BooksTable struct {
	Source   string
	Encoding string
	// Columns lists the metadata column names in file order.
	Columns []string
	Records []Book
	Skipped int
}

// JoinedRecord is a rating joined with the book it refers to.
type JoinedRecord struct {
	Rating Rating
	Book   Book
}
