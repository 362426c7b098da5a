package main

import (
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tubetag/internal/pipeline"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// resultRows lists one row per processed entry: position, file, artist, title, genre.
// Failed entries show the error in place of the file name.
func resultRows(results []pipeline.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		var file string
		if res.Path != "" {
			file = filepath.Base(res.Path)
		}
		if res.Err != nil {
			file = "failed: " + res.Err.Error()
		}
		genre := ""
		if res.Meta.Genre != nil {
			genre = *res.Meta.Genre
		}
		rows = append(rows, []string{
			strconv.Itoa(res.Index + 1),
			file,
			res.Meta.Author,
			res.Meta.Title,
			genre,
		})
	}
	return rows
}

var resultHeaders = []string{"#", "File", "Artist", "Title", "Genre"}
var resultAligns = []columnAlignment{alignRight}
