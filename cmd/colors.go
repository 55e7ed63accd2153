package cmd

import "github.com/fatih/color"

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

// formatFinding colors a yes/no security finding: findings are bad news, so
// "yes" is red.
func formatFinding(found bool) string {
	if found {
		return colorError("yes")
	}
	return colorSuccess("no")
}
