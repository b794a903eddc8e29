package digest

import (
	"slices"
	"strings"
)

// idleMarker prefixes the trailing list of members with no tasks.
const idleMarker = "🏖"

// Render produces the final digest message. Members with tasks get a bold
// heading over bulleted lines; members without tasks are skipped, or, when
// includeIdle is set, collected into a trailing idle line. Bot accounts and
// the unassigned sentinel never appear in the idle line.
func Render(title string, members []*Person, includeIdle bool, bots []string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString(" \n\n")

	var idle []string
	for _, m := range members {
		if len(m.Tasks) == 0 {
			if includeIdle && m.Handle != UnassignedHandle && !slices.Contains(bots, m.Handle) {
				idle = append(idle, m.Display)
			}
			continue
		}

		b.WriteString("<b>")
		b.WriteString(m.Display)
		b.WriteString("</b>\n")
		for _, task := range m.Tasks {
			b.WriteString("• ")
			b.WriteString(task)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if includeIdle && len(idle) > 0 {
		b.WriteString(idleMarker)
		for _, display := range idle {
			b.WriteString(" <b>")
			b.WriteString(display)
			b.WriteString("</b>")
		}
	}
	b.WriteString("\n")

	return b.String()
}

// MeetingMessage renders the fixed meeting reminder with one mention per
// configured handle.
func MeetingMessage(mentions []string) string {
	var b strings.Builder
	b.WriteString("☝️ Join the meeting in Telegram!\n\n")
	for _, handle := range mentions {
		b.WriteString("@")
		b.WriteString(handle)
		b.WriteString(" ")
	}
	return b.String()
}
