package cli

import (
	"github.com/spf13/cobra"

	"github.com/juman-j/book-recommender/internal/seed"
	"github.com/juman-j/book-recommender/internal/storage"
)

func (a *app) seedCommand() *cobra.Command {
	def := seed.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic ratings and books dataset",
		Long: `seed generates BX-Book-Ratings.csv and BX-Books.csv with fake books and
users. Users favour one genre, so books of the same genre correlate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := seed.Options{
				Users:          a.v.GetInt("users"),
				Books:          a.v.GetInt("books"),
				RatingsPerUser: a.v.GetInt("ratings-per-user"),
				Seed:           a.v.GetUint64("seed"),
				Latin1:         a.v.GetBool("latin1"),
			}
			ds, err := seed.NewSeeder(opts).Generate()
			if err != nil {
				return err
			}

			out := a.v.GetString("out")
			if err := ds.Write(cmd.Context(), storage.NewResolver(a.v.GetString("region")), out); err != nil {
				return err
			}
			a.printer(cmd).PrintSuccess("Wrote %s and %s to %s", seed.RatingsFile, seed.BooksFile, out)
			return nil
		},
	}

	cmd.Flags().String("out", "data", "Output directory or s3://bucket/prefix")
	cmd.Flags().Int("users", def.Users, "Number of readers")
	cmd.Flags().Int("books", def.Books, "Number of books")
	cmd.Flags().Int("ratings-per-user", def.RatingsPerUser, "Books rated by each reader")
	cmd.Flags().Uint64("seed", 0, "Random seed, 0 for a random one")
	cmd.Flags().Bool("latin1", false, "Encode the files as ISO-8859-1")
	return cmd
}
