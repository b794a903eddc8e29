package digest

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/teamtools/boardnotify/internal/github"
	"github.com/teamtools/boardnotify/internal/tracker"
)

// Options tunes classification behavior.
type Options struct {
	// AlwaysCreditCreator appends the card creator's mention whenever the
	// note mentioned no roster member, even when a link summary was
	// substituted. The default credits the creator only when the note also
	// contained no resolvable tracker link.
	AlwaysCreditCreator bool
}

// Classifier turns raw board cards into attributed per-person task lists.
type Classifier struct {
	gh      github.Client
	catcher tracker.Catcher
	logger  *slog.Logger
	opts    Options
}

// NewClassifier creates a Classifier. catcher receives per-card processing
// faults; such cards contribute no line to the digest.
func NewClassifier(gh github.Client, catcher tracker.Catcher, logger *slog.Logger, opts Options) *Classifier {
	if catcher == nil {
		catcher = tracker.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{gh: gh, catcher: catcher, logger: logger, opts: opts}
}

// Classify renders every card and distributes the results across the roster.
// It returns the roster with task lists populated, extended by the unassigned
// bucket when needed.
func (c *Classifier) Classify(ctx context.Context, roster []*Person, cards []github.Card) []*Person {
	return Attribute(roster, c.RenderCards(ctx, roster, cards))
}

// RenderCards is the pure classification step: one rendered line per card,
// in card order. Cards needing a secondary lookup resolve concurrently; each
// goroutine writes only its own slot, so no locking is needed. A card that
// faults is reported to the catcher and yields an empty line.
func (c *Classifier) RenderCards(ctx context.Context, roster []*Person, cards []github.Card) []string {
	lines := make([]string, len(cards))

	var wg sync.WaitGroup
	for i, card := range cards {
		i, card := i, card
		wg.Add(1)
		go func() {
			defer wg.Done()
			line, err := c.renderCard(ctx, roster, card)
			if err != nil {
				c.logger.Error("failed to render card", "error", err.Error())
				c.catcher.Send(ctx, err, map[string]any{"card": card})
				return
			}
			lines[i] = line
		}()
	}
	wg.Wait()

	return lines
}

func (c *Classifier) renderCard(ctx context.Context, roster []*Person, card github.Card) (string, error) {
	switch {
	case card.Content != nil:
		return formatItem(card.Content), nil
	case card.Note != nil:
		return c.renderNote(ctx, roster, card.Note)
	default:
		return "", nil
	}
}

// renderNote renders a free-text card. The note text is HTML-escaped exactly
// once, before any link substitution, so formatter output (which escapes its
// own titles) is never re-escaped. Item URLs carry no markup characters, so
// escaping does not break link detection.
func (c *Classifier) renderNote(ctx context.Context, roster []*Person, note *github.Note) (string, error) {
	mentioned := mentionsAnyMember(note.Text, roster)
	ref := DetectLink(note.Text)

	line := escapeHTML(note.Text)

	substituted := false
	if ref != nil {
		var err error
		line, substituted, err = ResolveAndSubstitute(ctx, c.gh, line, ref)
		if err != nil {
			return "", err
		}
	}

	// Credit the card creator when nobody else claims the note. With
	// AlwaysCreditCreator the substitution outcome is ignored.
	if !mentioned && (!substituted || c.opts.AlwaysCreditCreator) {
		line += " @" + note.Creator
	}
	return line, nil
}

// mentionsAnyMember reports whether text contains any roster member's
// mention token.
func mentionsAnyMember(text string, roster []*Person) bool {
	for _, m := range roster {
		if strings.Contains(text, "@"+m.Handle) {
			return true
		}
	}
	return false
}

// Attribute is the pure attribution step. For every rendered line it strips
// all roster mention tokens to produce the display text, then appends that
// text to the tasks of every member mentioned in the original line, or to the
// unassigned bucket when no member matched. A line mentioning several members
// fans out to all of them. Empty lines (faulted or unrecognized cards)
// contribute nothing.
func Attribute(roster []*Person, lines []string) []*Person {
	members := roster
	var unassigned *Person

	for _, line := range lines {
		if line == "" {
			continue
		}
		cleaned := strings.TrimSpace(stripMentions(line, roster))

		assigned := false
		for _, m := range roster {
			if strings.Contains(line, "@"+m.Handle) {
				m.Tasks = append(m.Tasks, cleaned)
				assigned = true
			}
		}
		if assigned {
			continue
		}

		if unassigned == nil {
			unassigned = &Person{Handle: UnassignedHandle, Display: unassignedDisplay}
			members = append(members, unassigned)
		}
		unassigned.Tasks = append(unassigned.Tasks, cleaned)
	}

	return members
}

// stripMentions removes every roster member's mention token from line.
func stripMentions(line string, roster []*Person) string {
	for _, m := range roster {
		line = strings.ReplaceAll(line, "@"+m.Handle, "")
	}
	return line
}
