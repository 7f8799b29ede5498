// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/store"
)

// Untitled is shown for tasks whose description is blank.
const Untitled = "(untitled)"

// FormatTask formats a task line.
// Format: "{N:>4}  {DESCRIPTION}\n" (4-wide right-aligned number, two spaces, description)
func FormatTask(w io.Writer, num int, task store.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, Description(task))
}

// FormatTaskWithID formats a task line followed by its stored ID.
// Format: "{N:>4}  {DESCRIPTION}  [#{ID}]\n"
func FormatTaskWithID(w io.Writer, num int, task store.Task) {
	fmt.Fprintf(w, "%4d  %s  [#%d]\n", num, Description(task), task.ID)
}

// Description normalizes a task description for single-line display.
// - Empty or whitespace-only descriptions become "(untitled)"
// - Newlines are replaced with spaces
func Description(task store.Task) string {
	d := strings.ReplaceAll(task.Description, "\r", " ")
	d = strings.ReplaceAll(d, "\n", " ")

	if strings.TrimSpace(d) == "" {
		return Untitled
	}
	return d
}
