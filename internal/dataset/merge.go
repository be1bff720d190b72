package dataset

// Merge inner-joins ratings with books on ISBN. Output follows ratings file
// order; a rating whose ISBN appears on several book rows yields one record
// per book row, in books file order. Ratings without a book are dropped.
func Merge(ratings *RatingsTable, books *BooksTable) []JoinedRecord {
	byISBN := make(map[string][]int, len(books.Records))
	for i, b := range books.Records {
		byISBN[b.ISBN] = append(byISBN[b.ISBN], i)
	}

	joined := make([]JoinedRecord, 0, len(ratings.Records))
	for _, r := range ratings.Records {
		for _, i := range byISBN[r.ISBN] {
			joined = append(joined, JoinedRecord{Rating: r, Book: books.Records[i]})
		}
	}
	return joined
}
