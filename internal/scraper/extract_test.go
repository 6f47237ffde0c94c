package scraper

import (
	"os"
	"reflect"
	"strings"
	"testing"
)

func loadFixture(t *testing.T, name, url string) *Document {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	doc, err := Parse(&Page{URL: url, Body: string(data)})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

const leagueURL = "https://www.fnpelota.com/pub/modalidadComp.asp?idioma=eu&idCompeticion=3060&temp=2025"
const phaseURL = "https://www.fnpelota.com/pub/modalidadComp.asp?idioma=eu&idCompeticion=3060&idFaseEliminatoria=20614&temp=2025"

func TestRows_League(t *testing.T) {
	doc := loadFixture(t, "league.html", leagueURL)

	_, heuristic := doc.ResultsTable()
	if heuristic != "strict" {
		t.Errorf("heuristic = %q, want strict", heuristic)
	}

	rows := doc.Rows()
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Date != "2026/01/07" {
		t.Errorf("Date = %q", first.Date)
	}
	if first.Venue != "Frontón X" {
		t.Errorf("Venue = %q", first.Venue)
	}
	if clean(first.Home) != "LARRAUN (A - B)" {
		t.Errorf("Home = %q", first.Home)
	}
	if !strings.Contains(first.Home, "\n") {
		t.Error("line break between club and pair should be kept as a newline")
	}
	if clean(first.Away) != "OTHERCLUB (C - D)" {
		t.Errorf("Away = %q", first.Away)
	}
	if first.Score != "9 - 5" {
		t.Errorf("Score = %q, want own text only", first.Score)
	}
	if !reflect.DeepEqual(first.SetFragments, []string{"(9-5)"}) {
		t.Errorf("SetFragments = %v", first.SetFragments)
	}

	second := rows[1]
	if second.Score != "22 - 18" {
		t.Errorf("Score = %q", second.Score)
	}
	if !reflect.DeepEqual(second.SetFragments, []string{"(6-2)", "(4-6)", "(10-3)"}) {
		t.Errorf("SetFragments = %v", second.SetFragments)
	}

	bye := rows[3]
	if !bye.Bye {
		t.Error("expected bye row to be flagged")
	}
	if bye.Score != "" {
		t.Errorf("bye Score = %q", bye.Score)
	}

	pending := rows[4]
	if pending.Bye || pending.Score != "" || len(pending.SetFragments) != 0 {
		t.Errorf("unexpected pending row: %+v", pending)
	}
}

func TestRows_SeparateSetsColumn(t *testing.T) {
	doc := loadFixture(t, "phase.html", phaseURL)

	rows := doc.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (header skipped), got %d", len(rows))
	}

	row := rows[0]
	if clean(row.Away) != "ABAXITABIDEA (X. Goldaracena - E. Astibia)" {
		t.Errorf("Away = %q", row.Away)
	}
	if row.Score != "18 - 22" {
		t.Errorf("Score = %q", row.Score)
	}
	if row.SetsColumn != "9-5 9-11" {
		t.Errorf("SetsColumn = %q", row.SetsColumn)
	}
	if !reflect.DeepEqual(row.SetFragments, []string{"18 - 22"}) {
		t.Errorf("SetFragments = %v, want only the wrapped headline", row.SetFragments)
	}
}

func TestRows_PendingNoteInScoreCell(t *testing.T) {
	body := `<table>
<tr><td>2026/01/07</td><td>F</td><td>LARRAUN</td><td>22 - 18</td><td>OBERENA</td></tr>
<tr><td>2026/02/04</td><td>F</td><td>LARRAUN</td><td>Aplazado</td><td>ARAXES</td></tr>
<tr><td>2026/02/11</td><td>F</td><td>LARRAUN</td><td>18:30h</td><td>OBERENA</td></tr>
</table>`
	doc, err := Parse(&Page{URL: leagueURL, Body: body})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	rows := doc.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	tests := []struct {
		away  string
		score string
	}{
		{"OBERENA", "22 - 18"},
		{"ARAXES", "Aplazado"},
		{"OBERENA", "18:30h"},
	}
	for i, tt := range tests {
		if clean(rows[i].Away) != tt.away {
			t.Errorf("row %d: Away = %q, want %q", i, rows[i].Away, tt.away)
		}
		if rows[i].Score != tt.score {
			t.Errorf("row %d: Score = %q, want %q", i, rows[i].Score, tt.score)
		}
		if rows[i].SetsColumn != "" {
			t.Errorf("row %d: SetsColumn = %q, want none", i, rows[i].SetsColumn)
		}
	}
}

func TestRows_UnrecognizedPage(t *testing.T) {
	doc := loadFixture(t, "empty.html", leagueURL)

	if doc.HasResults() {
		t.Error("empty page should have no results table")
	}
	if rows := doc.Rows(); len(rows) != 0 {
		t.Errorf("expected 0 rows, got %d", len(rows))
	}
}

func TestResultsTable_Heuristics(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantHeuristic string
		wantRows      int
	}{
		{
			name: "pending fixtures only",
			body: `<table>
				<tr><td>2026/05/01</td><td>Frontón</td><td>LARRAUN</td><td></td><td>OBERENA</td></tr>
			</table>`,
			wantHeuristic: "dated",
			wantRows:      1,
		},
		{
			name: "largest strict table wins",
			body: `<table>
				<tr><td>2026/05/01</td><td>F</td><td>LARRAUN</td><td>22 - 1</td><td>OBERENA</td></tr>
			</table>
			<table>
				<tr><td>2026/05/02</td><td>F</td><td>LARRAUN</td><td>22 - 2</td><td>OBERENA</td></tr>
				<tr><td>2026/05/03</td><td>F</td><td>LARRAUN</td><td>22 - 3</td><td>OBERENA</td></tr>
			</table>`,
			wantHeuristic: "strict",
			wantRows:      2,
		},
		{
			name:          "too few columns",
			body:          `<table><tr><td>2026/05/01</td><td>LARRAUN</td><td>22 - 1</td><td>OBERENA</td></tr></table>`,
			wantHeuristic: "",
			wantRows:      0,
		},
		{
			name: "nested table rows belong to the inner table",
			body: `<table><tr><td>a</td><td>b</td><td>c</td><td>d</td><td>
				<table><tr><td>2026/05/01</td><td>F</td><td>LARRAUN</td><td>22 - 1</td><td>OBERENA</td></tr></table>
			</td></tr></table>`,
			wantHeuristic: "strict",
			wantRows:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(&Page{URL: leagueURL, Body: "<html><body>" + tt.body + "</body></html>"})
			if err != nil {
				t.Fatal(err)
			}
			rows, heuristic := doc.ResultsTable()
			if heuristic != tt.wantHeuristic {
				t.Errorf("heuristic = %q, want %q", heuristic, tt.wantHeuristic)
			}
			if len(rows) != tt.wantRows {
				t.Errorf("rows = %d, want %d", len(rows), tt.wantRows)
			}
		})
	}
}

func TestPageLabels(t *testing.T) {
	league := loadFixture(t, "league.html", leagueURL)
	if got := league.CompetitionName(); got != "Binaka Infantil - Larraun Txapelketa" {
		t.Errorf("CompetitionName() = %q", got)
	}
	if name, isPhase := league.PhaseName(); isPhase || name != "" {
		t.Errorf("PhaseName() = %q, %v; want league page", name, isPhase)
	}
	if got := league.PhaseOptions(); !reflect.DeepEqual(got, []int{20613, 20614, 20615}) {
		t.Errorf("PhaseOptions() = %v", got)
	}

	phase := loadFixture(t, "phase.html", phaseURL)
	if name, isPhase := phase.PhaseName(); !isPhase || name != "Semifinales" {
		t.Errorf("PhaseName() = %q, %v; want selected option", name, isPhase)
	}

	// No selected option: fall back to the option matching the URL's phase id
	byID := loadFixture(t, "league.html", strings.Replace(phaseURL, "20614", "20615", 1))
	if name, _ := byID.PhaseName(); name != "Final" {
		t.Errorf("PhaseName() = %q, want Final", name)
	}

	empty := loadFixture(t, "empty.html", leagueURL)
	if got := empty.CompetitionName(); got != "Federación Navarra de Pelota" {
		t.Errorf("CompetitionName() fallback = %q", got)
	}
}

func TestIsBye(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Descanso", true},
		{" DESCANSO \n", true},
		{"Rest", true},
		{"Atsedena", true},
		{"LARRAUN", false},
		{"Descanso LARRAUN", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsBye(tt.in); got != tt.want {
			t.Errorf("IsBye(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestQueryParam(t *testing.T) {
	if got := QueryParam(phaseURL, "idfaseeliminatoria"); got != "20614" {
		t.Errorf("QueryParam() = %q", got)
	}
	if got := QueryParam(leagueURL, PhaseParam); got != "" {
		t.Errorf("QueryParam() = %q, want empty", got)
	}
	if got := QueryParam("://bad", PhaseParam); got != "" {
		t.Errorf("QueryParam() = %q, want empty", got)
	}
}
