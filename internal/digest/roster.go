package digest

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/teamtools/boardnotify/internal/github"
)

// UnassignedHandle is the synthetic roster entry collecting cards that match
// no known mention. It is always last in the roster when present.
const UnassignedHandle = "unassigned"

const unassignedDisplay = "Unassigned"

// Person is one roster member. Tasks accumulates rendered digest lines during
// a single run and is discarded afterwards; nothing persists between runs.
type Person struct {
	// Handle is the tracker login matched against @mentions.
	Handle string

	// Display is the chat-facing name used in digest headings. Defaults to
	// Handle when no mapping is configured.
	Display string

	Tasks []string
}

// ParseRoster builds the roster from a static configuration list. Each entry
// is either a bare tracker handle or "handle:display".
func ParseRoster(entries []string) []*Person {
	roster := make([]*Person, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		handle, display, ok := strings.Cut(entry, ":")
		handle = strings.TrimSpace(handle)
		if handle == "" {
			continue
		}
		display = strings.TrimSpace(display)
		if !ok || display == "" {
			display = handle
		}
		roster = append(roster, &Person{Handle: handle, Display: display})
	}
	return roster
}

// ResolveRoster returns the roster for one notification cycle: the static
// list when configured, otherwise the organization member directory with
// tracker handles doubling as display names.
func ResolveRoster(ctx context.Context, gh github.Client, static []string, org string) ([]*Person, error) {
	if len(static) > 0 {
		roster := ParseRoster(static)
		if len(roster) == 0 {
			return nil, errors.New("static mention list contains no usable entries")
		}
		return roster, nil
	}

	logins, err := gh.OrganizationMembers(ctx, org)
	if err != nil {
		return nil, errors.Wrap(err, "resolve roster")
	}
	if len(logins) == 0 {
		return nil, errors.Errorf("organization %q has no visible members", org)
	}

	roster := make([]*Person, 0, len(logins))
	for _, l := range logins {
		roster = append(roster, &Person{Handle: l, Display: l})
	}
	return roster, nil
}
