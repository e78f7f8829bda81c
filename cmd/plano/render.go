package main

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func renderHistory(w io.Writer, lines []lifecycle.HistoryLine) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Date", "Kind", "Entity", "Transition", "By", "Justification"})
	for _, l := range lines {
		by := l.Actor
		if l.Automatic {
			by = "[Automatic]"
		}
		note := l.Justification
		if l.SystemNotes != "" {
			note = l.SystemNotes
		}
		tw.AppendRow(table.Row{l.Date, l.Kind.Label(), l.EntityName, l.Transition(), by, note})
	}
	tw.Render()
}

func renderRules(w io.Writer, rules *domain.Rules) {
	tw := newTable(w)
	tw.SetTitle(rules.Kind().Label())
	tw.AppendHeader(table.Row{"Status", "Label", "Terminal", "Next"})
	for _, s := range rules.Statuses() {
		next := make([]string, 0, 4)
		for _, n := range rules.AvailableStatuses(s) {
			next = append(next, string(n))
		}
		terminal := ""
		if rules.IsTerminal(s) {
			terminal = "yes"
		}
		tw.AppendRow(table.Row{s, rules.Label(s), terminal, strings.Join(next, ", ")})
	}
	tw.Render()
}

func renderScanReports(w io.Writer, reports []lifecycle.ScanReport) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Kind", "Checked", "Eligible", "Delayed", "Rejected", "Failed"})
	for _, r := range reports {
		tw.AppendRow(table.Row{r.Kind.Label(), r.Checked, r.Eligible, r.Delayed, r.Rejected, r.Failed})
	}
	tw.Render()
}
