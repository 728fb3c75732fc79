// Package ui renders terminal output for the spotweb CLI with lipgloss styles.
//
// A single [Palette] provides title, success, error, warning and help styles. [HistoryTable] lays out recorded
// downloads as a bordered table, coloring each status.
package ui
