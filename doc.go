// Package bookrecommender is a collaborative-filtering book recommendation
// service built on the Book-Crossing ratings dataset.
//
// Entry points:
//
// - cmd/server: HTTP server with the book selection form, result pages and
//   the JSON API
// - cmd/bookrec: command line tool to run recommendations and seed datasets
//
// The pipeline lives in internal/dataset (CSV loading and the ISBN join) and
// internal/recommender (cohort, popularity and correlation stages).
package bookrecommender
