package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/everydaystudy/golf-db-loader/internal/adapters/driving/cli/styles"
	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

var summaryHeaders = []string{
	"STATE", "STATUS", "FETCHED", "ACCEPTED", "REJECTED", "COLLAPSED", "WRITTEN", "TOUCHED", "UNCHANGED",
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeSummary prints the run summary as a table on terminals and as
// greppable lines otherwise.
func writeSummary(w io.Writer, s *domain.RunSummary, styled bool) {
	if styled {
		writeStyledSummary(w, s)
		return
	}

	for _, p := range s.Partitions {
		fmt.Fprintf(w, "partition=%s status=%s fetched=%d accepted=%d rejected=%d collapsed=%d written=%d touched=%d unchanged=%d",
			p.Code, p.Status, p.Fetched, p.Accepted, p.Rejected, p.Collapsed, p.Written, p.Touched, p.Unchanged)
		if p.Err != nil {
			fmt.Fprintf(w, " error=%q", p.Err.Error())
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "run=%s status=%s preview=%t marked=%d purged=%d\n", s.RunID, s.Status, s.Preview, s.Marked, s.Purged)
}

func summaryRow(p domain.PartitionSummary) []string {
	return []string{
		p.Code,
		string(p.Status),
		strconv.Itoa(p.Fetched),
		strconv.Itoa(p.Accepted),
		strconv.Itoa(p.Rejected),
		strconv.Itoa(p.Collapsed),
		strconv.Itoa(p.Written),
		strconv.Itoa(p.Touched),
		strconv.Itoa(p.Unchanged),
	}
}

func writeStyledSummary(w io.Writer, s *domain.RunSummary) {
	st := styles.DefaultStyles()

	rows := make([][]string, 0, len(s.Partitions)+1)
	for _, p := range s.Partitions {
		rows = append(rows, summaryRow(p))
	}
	rows = append(rows, summaryRow(s.Totals()))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.Border).
		Headers(summaryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.Header
			case row < 0 || row >= len(rows):
				return st.Cell
			case col == 1:
				return st.Status(rows[row][col]).Padding(0, 1)
			case row == len(rows)-1:
				return st.Cell.Bold(true)
			default:
				return st.Cell
			}
		})

	title := "Run " + s.RunID
	if s.Preview {
		title += " (dry run)"
	}
	fmt.Fprintln(w, st.Title.Render(title))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%s  %s\n",
		st.Status(string(s.Status)).Render(string(s.Status)),
		st.Muted.Render(fmt.Sprintf("marked stale %d, purged %d", s.Marked, s.Purged)))
	for _, p := range s.Partitions {
		if p.Err != nil {
			fmt.Fprintln(w, st.Warning.Render(p.Code+": "+p.Err.Error()))
		}
	}
}

// sampleDoc is the JSON shape of a would-be document in a dry run.
type sampleDoc struct {
	ID             string     `json:"id"`
	OSMID          string     `json:"osm_id"`
	Name           string     `json:"name"`
	NameLower      string     `json:"name_lower"`
	NameNorm       string     `json:"name_norm"`
	Aliases        []string   `json:"aliases"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Country        string     `json:"country"`
	Lat            float64    `json:"lat"`
	Lng            float64    `json:"lng"`
	Holes          *int       `json:"holes"`
	Website        string     `json:"website,omitempty"`
	NameTokens     []string   `json:"name_tokens"`
	NameNgrams     []string   `json:"name_ngrams"`
	NameTokensNorm []string   `json:"name_tokens_norm"`
	NameNgramsNorm []string   `json:"name_ngrams_norm"`
	Source         string     `json:"source"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Fingerprint    string     `json:"fingerprint"`
	Stale          bool       `json:"stale"`
	StaleAt        *time.Time `json:"stale_at"`
	LastSeenRunID  string     `json:"last_seen_run_id"`
}

func toSampleDoc(c domain.Course) sampleDoc {
	return sampleDoc{
		ID:             c.ID,
		OSMID:          c.OSMID,
		Name:           c.Name,
		NameLower:      c.NameLower,
		NameNorm:       c.NameNorm,
		Aliases:        c.Aliases,
		City:           c.City,
		State:          c.State,
		Country:        c.Country,
		Lat:            c.Lat,
		Lng:            c.Lng,
		Holes:          c.Holes,
		Website:        c.Website,
		NameTokens:     c.NameTokens,
		NameNgrams:     c.NameNgrams,
		NameTokensNorm: c.NameTokensNorm,
		NameNgramsNorm: c.NameNgramsNorm,
		Source:         c.Source,
		UpdatedAt:      c.UpdatedAt,
		Fingerprint:    c.Fingerprint,
		Stale:          c.Stale,
		StaleAt:        c.StaleAt,
		LastSeenRunID:  c.LastSeenRunID,
	}
}

// writeSample prints would-be documents as an indented JSON array.
func writeSample(w io.Writer, courses []domain.Course) error {
	docs := make([]sampleDoc, len(courses))
	for i, c := range courses {
		docs[i] = toSampleDoc(c)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
