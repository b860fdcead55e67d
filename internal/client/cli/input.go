package cli

import (
	"fmt"
	"strings"
)

// prompt reads one trimmed line of input.
func (a *App) prompt(label string) string {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.reader.ReadString('\n')
	if err != nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line)
}

// promptYesNo reads y/n, defaulting to no.
func (a *App) promptYesNo(label string) bool {
	answer := strings.ToLower(a.prompt(label + " (y/n)"))
	return answer == "y" || answer == "yes"
}
