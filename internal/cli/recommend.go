package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/juman-j/book-recommender/internal/dataset"
	"github.com/juman-j/book-recommender/internal/service"
	"github.com/juman-j/book-recommender/internal/storage"
)

func (a *app) recommendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend books for readers of a title",
		Example: `  bookrec recommend --title "the fellowship of the ring" --author tolkien
  bookrec recommend --title dune --ratings s3://bx/BX-Book-Ratings.csv --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := a.v.GetString("title")
			if title == "" {
				return errors.New("--title is required")
			}
			author := a.v.GetString("author")

			ctx := cmd.Context()
			resolver := storage.NewResolver(a.v.GetString("region"))
			ratings, err := resolver.Source(ctx, a.v.GetString("ratings"))
			if err != nil {
				return err
			}
			books, err := resolver.Source(ctx, a.v.GetString("books"))
			if err != nil {
				return err
			}

			svc := service.NewRecommendationService(dataset.NewLoader(), ratings, books)
			result, err := svc.Recommend(ctx, service.Query{Title: title, Author: author})
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintResult(title, author, result)
		},
	}

	cmd.Flags().String("title", "", "Title of a book you liked (case-insensitive)")
	cmd.Flags().String("author", "", "Part of the author's name")
	cmd.Flags().String("ratings", "data/BX-Book-Ratings.csv", "Ratings CSV path or s3://bucket/key")
	cmd.Flags().String("books", "data/BX-Books.csv", "Books CSV path or s3://bucket/key")
	return cmd
}
