package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"cleantech100-scraper/models"
)

// PrintSummary formats and prints the summary report
func PrintSummary(w io.Writer, summary *models.Summary) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("GLOBAL CLEANTECH 100 SUMMARY", 55))
	fmt.Fprintf(w, "╚%s╝\n", border)

	fmt.Fprintf(w, "\n OVERVIEW\n%s\n", thin)
	fmt.Fprintf(w, "  Companies Scraped       : %d\n", summary.TotalCompanies)
	fmt.Fprintf(w, "  With Video              : %d\n", summary.WithVideo)

	printGroup(w, "COMPANIES PER REGION", thin, summary.ByRegion)
	printGroup(w, "COMPANIES PER SECTOR", thin, summary.BySector)
	printGroup(w, "COMPANIES PER COUNTRY", thin, summary.ByCountry)

	fmt.Fprintf(w, "\n%s\n\n", border)
}

type groupCount struct {
	name  string
	count int
}

// sortedGroups orders by count descending, then name
func sortedGroups(groups map[string]int) []groupCount {
	out := make([]groupCount, 0, len(groups))
	for name, cnt := range groups {
		out = append(out, groupCount{name, cnt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func printGroup(w io.Writer, title, thin string, groups map[string]int) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(w, "\n %s\n%s\n", title, thin)
	for _, g := range sortedGroups(groups) {
		bar := strings.Repeat("▓", g.count)
		fmt.Fprintf(w, "  %-25s %3d  %s\n", truncate(g.name, 24)+":", g.count, bar)
	}
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
