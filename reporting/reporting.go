package reporting

import (
	"io"
	"strconv"

	"github.com/grezar/secretreplace/secrets"
	"github.com/olekukonko/tablewriter"
)

const (
	Updated = "UPDATED"
	DryRun  = "DRY-RUN"
)

// Render prints one row per substituted reference. Secret values are never
// part of a Result, so they cannot end up in the report.
func Render(w io.Writer, res *secrets.Result) {
	status := Updated
	if !res.Written {
		status = DryRun
	}

	var rows [][]string
	for _, s := range res.Substitutions {
		rows = append(rows, []string{res.Filename, strconv.Itoa(s.Line), s.Path, string(s.Env), status})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"FILE", "LINE", "PATH", "ENVIRONMENT", "STATUS"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	var bgColor int
	for _, row := range rows {
		switch row[4] {
		case Updated:
			bgColor = tablewriter.BgGreenColor
		case DryRun:
			bgColor = tablewriter.BgCyanColor
		}
		table.Rich(row, []tablewriter.Colors{{}, {}, {}, {}, {tablewriter.FgHiBlackColor, tablewriter.Bold, bgColor}})
	}

	table.Render()
}
