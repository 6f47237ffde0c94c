package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// MinColumns is the minimum number of cells of a match row
	MinColumns = 5

	// PhaseParam is the query parameter selecting an elimination phase
	PhaseParam = "idFaseEliminatoria"
	// CompetitionParam is the query parameter selecting a competition
	CompetitionParam = "idCompeticion"
)

var (
	dateToken   = regexp.MustCompile(`\d{4}/\d{1,2}/\d{1,2}`)
	scoreToken  = regexp.MustCompile(`\d+\s*-\s*\d+`)
	letterToken = regexp.MustCompile(`\p{L}`)
	digitToken  = regexp.MustCompile(`\d`)
	parenGroup  = regexp.MustCompile(`\([^)]*\)`)
)

// byeMarkers are the texts the federation writes in place of an opponent
var byeMarkers = map[string]bool{
	"descanso": true,
	"rest":     true,
	"atsedena": true,
	"atseden":  true,
	"libre":    true,
}

// RawRow is one match row as read from the page, before normalization
type RawRow struct {
	Date  string
	Venue string
	Home  string
	Away  string
	// Score is the score cell's own text, without its nested elements
	Score string
	// SetFragments are the texts of nested set elements in document order
	SetFragments []string
	// SetsColumn is the dedicated sets cell of the six-column layout
	SetsColumn string
	Bye          bool
}

// Document is a parsed federation page
type Document struct {
	url string
	doc *goquery.Document
}

// Parse parses a fetched page. Line breaks inside cells become newlines so
// stacked club and pair lines stay apart.
func Parse(page *Page) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		n := br.Get(0)
		if n.Parent == nil {
			return
		}
		n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: "\n"}, n)
		n.Parent.RemoveChild(n)
	})
	return &Document{url: page.URL, doc: doc}, nil
}

// Selection returns the whole parsed document for callers with their own layout
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// heuristic ranks candidate tables; the first heuristic that accepts any table wins
type heuristic struct {
	name   string
	accept func(c candidate) bool
}

var heuristics = []heuristic{
	{
		name:   "strict",
		accept: func(c candidate) bool { return c.hasDate && c.hasScore },
	},
	{
		// pages where no match has been played yet
		name:   "dated",
		accept: func(c candidate) bool { return c.hasDate },
	},
}

type candidate struct {
	rows     []*goquery.Selection
	dated    int
	hasDate  bool
	hasScore bool
}

// ResultsTable returns the rows of the table holding match results and the name
// of the heuristic that selected it. It returns no rows for pages without one.
func (d *Document) ResultsTable() ([]*goquery.Selection, string) {
	var candidates []candidate

	d.doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var c candidate
		var text strings.Builder
		tableRows(table).Each(func(_ int, tr *goquery.Selection) {
			cells := tr.ChildrenFiltered("td")
			if cells.Length() < MinColumns {
				return
			}
			c.rows = append(c.rows, tr)
			// a row of a layout table wrapping the results has no date of its own
			if !dateToken.MatchString(cells.First().Text()) {
				return
			}
			c.dated++
			text.WriteString(tr.Text())
			text.WriteString("\n")
		})
		if len(c.rows) == 0 {
			return
		}
		c.hasDate = c.dated > 0
		c.hasScore = scoreToken.MatchString(text.String())
		candidates = append(candidates, c)
	})

	for _, h := range heuristics {
		best := -1
		for i, c := range candidates {
			if !h.accept(c) {
				continue
			}
			if best < 0 || c.dated > candidates[best].dated {
				best = i
			}
		}
		if best >= 0 {
			return candidates[best].rows, h.name
		}
	}

	return nil, ""
}

// HasResults reports whether the page holds a recognisable results table
func (d *Document) HasResults() bool {
	rows, _ := d.ResultsTable()
	return len(rows) > 0
}

// Rows extracts every match row of the results table
func (d *Document) Rows() []RawRow {
	rows, _ := d.ResultsTable()
	out := make([]RawRow, 0, len(rows))
	for _, tr := range rows {
		if row, ok := extractRow(tr.ChildrenFiltered("td")); ok {
			out = append(out, row)
		}
	}
	return out
}

// extractRow reads one table row.
//
// Two layouts are in use: date, venue, home, score, away (the score cell carries
// the sets as nested elements) and date, venue, home, away, score, sets.
// The second is recognised by a fourth cell with letters (the away team) next
// to a fifth cell without any (the score). Anything else, including a pending
// score cell holding a note, is read as the first.
func extractRow(cells *goquery.Selection) (RawRow, bool) {
	n := cells.Length()
	if n < MinColumns {
		return RawRow{}, false
	}

	date := cells.Eq(0).Text()
	if !dateToken.MatchString(date) {
		return RawRow{}, false
	}

	row := RawRow{
		Date:  date,
		Venue: cells.Eq(1).Text(),
		Home:  cells.Eq(2).Text(),
	}

	scoreCell := cells.Eq(3)
	separateSets := letterToken.MatchString(scoreCell.Text()) && !letterToken.MatchString(cells.Eq(4).Text())
	if separateSets {
		row.Away = cells.Eq(3).Text()
		scoreCell = cells.Eq(4)
	} else {
		row.Away = cells.Eq(4).Text()
	}

	row.Score, row.SetFragments = splitScoreCell(scoreCell)

	if separateSets && n > 5 {
		row.SetsColumn = strings.TrimSpace(cells.Eq(5).Text())
	}

	row.Bye = IsBye(row.Home) || IsBye(row.Away)

	return row, true
}

// splitScoreCell reads the headline score from the cell's own text nodes and the
// set scores from its nested elements. When the headline itself is wrapped in an
// element the cell text outside parentheses is used instead.
func splitScoreCell(cell *goquery.Selection) (string, []string) {
	var own strings.Builder
	var fragments []string

	cell.Contents().Each(func(_ int, node *goquery.Selection) {
		n := node.Get(0)
		switch n.Type {
		case html.TextNode:
			own.WriteString(n.Data)
		case html.ElementNode:
			if text := strings.TrimSpace(node.Text()); text != "" {
				fragments = append(fragments, text)
			}
		}
	})

	score := strings.TrimSpace(own.String())
	if !digitToken.MatchString(score) {
		score = strings.TrimSpace(parenGroup.ReplaceAllString(cell.Text(), " "))
	}

	return score, fragments
}

// tableRows returns the rows that belong to table itself, not to nested tables
func tableRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

// IsBye reports whether a team cell marks a bye week
func IsBye(team string) bool {
	return byeMarkers[strings.ToLower(strings.Join(strings.Fields(team), " "))]
}

// CompetitionName returns the page heading, falling back to the document title
func (d *Document) CompetitionName() string {
	if h1 := clean(d.doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return clean(d.doc.Find("title").First().Text())
}

// PhaseName returns the elimination phase label of the page, or "" when the page
// is a league page. Callers substitute their league sentinel.
func (d *Document) PhaseName() (string, bool) {
	phaseID := QueryParam(d.url, PhaseParam)
	if phaseID == "" {
		return "", false
	}

	options := d.phaseSelect().Find("option")

	if name := clean(options.Filter("[selected]").First().Text()); name != "" {
		return name, true
	}

	var name string
	options.EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		if value, _ := opt.Attr("value"); strings.TrimSpace(value) == phaseID {
			name = clean(opt.Text())
			return false
		}
		return true
	})
	return name, true
}

// PhaseOptions returns the phase ids listed in the page's phase selector, in
// document order and without duplicates
func (d *Document) PhaseOptions() []int {
	var ids []int
	seen := make(map[int]bool)
	d.phaseSelect().Find("option").Each(func(_ int, opt *goquery.Selection) {
		value, _ := opt.Attr("value")
		id, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || id <= 0 || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})
	return ids
}

func (d *Document) phaseSelect() *goquery.Selection {
	return d.doc.Find(fmt.Sprintf(`select[name="%s"]`, PhaseParam))
}

// QueryParam returns a query parameter of rawURL, matching the name
// case-insensitively as the federation's ASP pages do
func QueryParam(rawURL, name string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for key, values := range u.Query() {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
