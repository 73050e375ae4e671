package types

import "strconv"

// Sentinel field values substituted when a review sub-node is structurally
// absent. They distinguish "never present" from "present but empty".
const (
	NoName           = "No Name"
	NoRating         = "No Rating"
	NoCommentHeading = "No Comment Heading"
)

// Column names of a ReviewTable, in output order.
var Columns = []string{
	"Product",
	"Name",
	"Price (INR)",
	"Rating",
	"Comment Heading",
	"Comment",
}

// ReviewRecord is one fully-populated row of the output table.
type ReviewRecord struct {
	// Product is the search term / category label shared by all reviews
	// of a run's product.
	Product string

	// Name is the reviewer display name, or NoName.
	Name string

	// Price is the product price with currency symbol and thousands
	// separators stripped.
	Price float64

	// Rating is the review rating text, or NoRating.
	Rating string

	// CommentHeading is the review headline, or NoCommentHeading.
	CommentHeading string

	// Comment is the review body. May be empty.
	Comment string
}

// ProductRef is a (display name, detail URL) pair extracted from a
// search-result listing. It is produced once and consumed once.
type ProductRef struct {
	Name      string
	DetailURL string
}

// ReviewTable accumulates ReviewRecords column-wise. Rows are only ever
// appended one full record at a time, so all columns have equal length at
// all times. A table handed back to a caller is treated as final.
type ReviewTable struct {
	columns map[string][]string
	rows    int
}

// NewReviewTable creates an empty table with the fixed review schema.
func NewReviewTable() *ReviewTable {
	cols := make(map[string][]string, len(Columns))
	for _, c := range Columns {
		cols[c] = []string{}
	}
	return &ReviewTable{columns: cols}
}

// Append adds one record, extending every column in lock-step.
func (t *ReviewTable) Append(rec ReviewRecord) {
	t.columns["Product"] = append(t.columns["Product"], rec.Product)
	t.columns["Name"] = append(t.columns["Name"], rec.Name)
	t.columns["Price (INR)"] = append(t.columns["Price (INR)"], formatPrice(rec.Price))
	t.columns["Rating"] = append(t.columns["Rating"], rec.Rating)
	t.columns["Comment Heading"] = append(t.columns["Comment Heading"], rec.CommentHeading)
	t.columns["Comment"] = append(t.columns["Comment"], rec.Comment)
	t.rows++
}

// Len returns the number of rows.
func (t *ReviewTable) Len() int { return t.rows }

// Column returns the values of a named column in row order.
func (t *ReviewTable) Column(name string) []string {
	return t.columns[name]
}

// Row returns the cells of row i in column order.
func (t *ReviewTable) Row(i int) []string {
	row := make([]string, len(Columns))
	for j, c := range Columns {
		row[j] = t.columns[c][i]
	}
	return row
}

// Rows returns all rows in column order, suitable for CSV output.
func (t *ReviewTable) Rows() [][]string {
	rows := make([][]string, t.rows)
	for i := 0; i < t.rows; i++ {
		rows[i] = t.Row(i)
	}
	return rows
}

// formatPrice renders a price with no trailing zeros, matching the way the
// value was parsed from the page.
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
