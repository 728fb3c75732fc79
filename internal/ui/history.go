package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/spotweb/internal/models"
)

var historyHeaders = []string{"#", "Status", "Mode", "Found", "Done", "Errors", "Exit", "Started", "Duration", "URL"}

const statusColumn = 1

// StatusStyle returns the style for a download status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case models.DownloadCompleted:
		return styles.ok
	case models.DownloadFailed:
		return styles.err
	default:
		return styles.warn
	}
}

// HistoryRow formats one download as table cells.
func HistoryRow(d *models.Download) []string {
	exit := "-"
	if code := d.ExitCode(); code != nil {
		exit = strconv.Itoa(*code)
	}

	return []string{
		strconv.Itoa(d.Sequence()),
		d.Status(),
		d.Mode(),
		strconv.Itoa(d.Found()),
		strconv.Itoa(d.Downloaded()),
		strconv.Itoa(d.Errors()),
		exit,
		d.StartedAt().Local().Format("2006-01-02 15:04"),
		d.Duration().Round(time.Second).String(),
		d.URL(),
	}
}

// HistoryTable renders downloads as a bordered table, newest first as given.
func HistoryTable(downloads []*models.Download) string {
	if len(downloads) == 0 {
		return Help("No downloads recorded yet.")
	}

	rows := make([][]string, 0, len(downloads))
	for _, d := range downloads {
		rows = append(rows, HistoryRow(d))
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.help).
		Headers(historyHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == statusColumn && row >= 0 && row < len(rows) {
				return StatusStyle(rows[row][statusColumn]).Padding(0, 1)
			}
			return cell
		})

	return fmt.Sprintf("%s\n%s", Title(fmt.Sprintf("Download history (%d)", len(downloads))), t.Render())
}
