package render

import (
	"fmt"
	"io"

	"ybtop/internal/models"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

const (
	headerFormat = "%-4s %-20s %-20s %-10s %-10s %8s %s\n"
	rowFormat    = "%-4s %-20s %-20s %-10s %-10s %8.3f %s\n"
)

// Table writes the activity list as fixed width columns.
func Table(w io.Writer, activity []models.Activity) error {
	if _, err := fmt.Fprintf(w, headerFormat, "API", "server", "client", "key/db", "status", "time_s", "query"); err != nil {
		return err
	}
	for _, a := range activity {
		if _, err := fmt.Fprintf(w, rowFormat, a.API, a.Server, a.Client, a.KeyspaceDB, a.Status, a.ElapsedSeconds(), a.Query); err != nil {
			return err
		}
	}
	return nil
}

// Redraw clears the screen and writes the table.
func Redraw(w io.Writer, activity []models.Activity) error {
	if _, err := io.WriteString(w, clearScreen); err != nil {
		return err
	}
	return Table(w, activity)
}
