package main

import "github.com/juman-j/book-recommender/internal/cli"

func main() {
	cli.Execute()
}
