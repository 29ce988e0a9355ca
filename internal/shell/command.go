// internal/shell/command.go
package shell

import (
	"sort"
	"strings"
)

// Command is one parsed operator line.
type Command struct {
	// Verb is lower-case; empty when the line named no known verb.
	Verb string
	// Args is the original-case line split on single spaces, verb dropped.
	Args []string
	// Raw is the original-case text after the verb and its separating space.
	Raw string
}

// Tail rejoins the arguments from index n on, reproducing the typed text.
func (c Command) Tail(n int) string {
	if n >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[n:], " ")
}

// Arg returns argument i, or def when it is missing or empty.
func (c Command) Arg(i int, def string) string {
	if i < len(c.Args) && c.Args[i] != "" {
		return c.Args[i]
	}
	return def
}

// Parse classifies a trimmed, non-empty line against verbs, longest first.
func Parse(line string, verbs []string) Command {
	for _, verb := range byLengthDesc(verbs) {
		if len(line) < len(verb) || !strings.EqualFold(line[:len(verb)], verb) {
			continue
		}
		if len(line) > len(verb) && line[len(verb)] != ' ' {
			continue
		}
		cmd := Command{Verb: verb}
		if len(line) > len(verb) {
			cmd.Raw = line[len(verb)+1:]
			cmd.Args = strings.Split(line, " ")[1:]
		}
		return cmd
	}
	return Command{}
}

func byLengthDesc(verbs []string) []string {
	sorted := append([]string(nil), verbs...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	return sorted
}
