// Package output renders recommendation results for the terminal.
package output

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"

	"github.com/juman-j/book-recommender/internal/recommender"
)

// Format represents the output format type
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatText  Format = "text"
)

// ParseFormat validates a --output value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatTable, FormatText:
		return Format(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or table)", s)
	}
}

// Printer writes results in one format
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a printer. A nil writer means color.Output.
func NewPrinter(w io.Writer, format Format) *Printer {
	if w == nil {
		w = color.Output
	}
	return &Printer{w: w, format: format}
}

// resultJSON mirrors the body of GET /api/v1/recommendations
type resultJSON struct {
	Status          string                       `json:"status"`
	Title           string                       `json:"title"`
	Author          string                       `json:"author"`
	Recommendations []recommender.Recommendation `json:"recommendations"`
}

// PrintResult outputs a pipeline result for the given query
func (p *Printer) PrintResult(title, author string, result recommender.Result) error {
	switch p.format {
	case FormatJSON:
		recs := result.Recommendations
		if recs == nil {
			recs = []recommender.Recommendation{}
		}
		return p.printJSON(resultJSON{
			Status:          result.Outcome.String(),
			Title:           title,
			Author:          author,
			Recommendations: recs,
		})
	case FormatTable:
		if result.Outcome != recommender.OutcomeRanked {
			p.printOutcome(title, result.Outcome)
			return nil
		}
		rows := make([][]string, 0, len(result.Recommendations))
		for i, r := range result.Recommendations {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				r.Title,
				strconv.FormatFloat(r.AverageRating, 'f', 2, 64),
				formatCorrelation(r.Correlation),
			})
		}
		p.printTable([]string{"#", "Book", "Rating", "Correlation"}, rows)
		return nil
	default:
		if result.Outcome != recommender.OutcomeRanked {
			p.printOutcome(title, result.Outcome)
			return nil
		}
		bold := color.New(color.Bold)
		fmt.Fprintf(p.w, "Readers of %q also liked:\n", title)
		for i, r := range result.Recommendations {
			fmt.Fprintf(p.w, "%2d. ", i+1)
			bold.Fprint(p.w, r.Title)
			fmt.Fprintf(p.w, "  rating %.2f  correlation %s\n", r.AverageRating, formatCorrelation(r.Correlation))
		}
		return nil
	}
}

func (p *Printer) printOutcome(title string, outcome recommender.Outcome) {
	switch outcome {
	case recommender.OutcomeNotFound:
		p.PrintWarning("no ratings found for %q", title)
	default:
		p.PrintWarning("not enough shared readers to recommend anything for %q", title)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(p.w, msg+"\n", args...)
}

// PrintInfo prints an info message
func (p *Printer) PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(p.w, msg+"\n", args...)
}

// PrintWarning prints a warning message
func (p *Printer) PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(p.w, "Warning: "+msg+"\n", args...)
}

// PrintError prints an error message
func (p *Printer) PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(p.w, "Error: "+msg+"\n", args...)
}

func (p *Printer) printJSON(data interface{}) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, string(out))
	return err
}

func (p *Printer) printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	w.Flush()
}

func formatCorrelation(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
