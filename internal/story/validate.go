package story

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidContent = errors.New("story: invalid content")

type ProblemKind string

const (
	ProblemChapterName    ProblemKind = "chapter_name"
	ProblemRange          ProblemKind = "range"
	ProblemOverlap        ProblemKind = "overlap"
	ProblemEntry          ProblemKind = "entry"
	ProblemNodeOutOfRange ProblemKind = "node_out_of_range"
	ProblemDuplicateNode  ProblemKind = "duplicate_node"
	ProblemDanglingRef    ProblemKind = "dangling_reference"
	ProblemMinigame       ProblemKind = "minigame"
	ProblemHook           ProblemKind = "hook"
	ProblemFlagName       ProblemKind = "flag_name"
)

// Problem locates one content error.
type Problem struct {
	Kind    ProblemKind
	Chapter string
	NodeID  int
	Ref     int
	Detail  string
}

func (p Problem) String() string {
	var b strings.Builder
	b.WriteString(string(p.Kind))
	if p.Chapter != "" {
		fmt.Fprintf(&b, " chapter=%q", p.Chapter)
	}
	if p.NodeID != 0 {
		fmt.Fprintf(&b, " node=%d", p.NodeID)
	}
	if p.Ref != 0 {
		fmt.Fprintf(&b, " ref=%d", p.Ref)
	}
	if p.Detail != "" {
		b.WriteString(": ")
		b.WriteString(p.Detail)
	}
	return b.String()
}

// ValidationError carries every problem found in one pass.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%d content problem(s): %s", len(e.Problems), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidContent }

// Has reports whether a problem of kind was found.
func (e *ValidationError) Has(kind ProblemKind) bool {
	for _, p := range e.Problems {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// Validate checks chapter ranges, node placement and every node reference.
// It returns a *ValidationError listing all problems, or nil.
func Validate(c *Content) error {
	var probs []Problem
	add := func(p Problem) { probs = append(probs, p) }

	if len(c.Chapters) == 0 {
		add(Problem{Kind: ProblemChapterName, Detail: "no chapters configured"})
	}

	names := map[string]bool{}
	for i := range c.Chapters {
		ch := &c.Chapters[i]
		if strings.TrimSpace(ch.Name) == "" {
			add(Problem{Kind: ProblemChapterName, Detail: fmt.Sprintf("chapter #%d has no name", i+1)})
		} else if names[ch.Name] {
			add(Problem{Kind: ProblemChapterName, Chapter: ch.Name, Detail: "duplicate chapter name"})
		}
		names[ch.Name] = true

		if ch.Start > ch.End {
			add(Problem{Kind: ProblemRange, Chapter: ch.Name, Detail: fmt.Sprintf("start %d > end %d", ch.Start, ch.End)})
		}
		for j := i + 1; j < len(c.Chapters); j++ {
			o := &c.Chapters[j]
			if ch.Start <= o.End && o.Start <= ch.End {
				add(Problem{Kind: ProblemOverlap, Chapter: ch.Name,
					Detail: fmt.Sprintf("[%d,%d] overlaps %q [%d,%d]", ch.Start, ch.End, o.Name, o.Start, o.End)})
			}
		}
	}

	seen := map[int]string{}
	for i := range c.Chapters {
		ch := &c.Chapters[i]
		for _, n := range ch.Nodes {
			if !ch.Contains(n.ID) {
				add(Problem{Kind: ProblemNodeOutOfRange, Chapter: ch.Name, NodeID: n.ID,
					Detail: fmt.Sprintf("outside [%d,%d]", ch.Start, ch.End)})
			}
			if other, dup := seen[n.ID]; dup {
				add(Problem{Kind: ProblemDuplicateNode, Chapter: ch.Name, NodeID: n.ID,
					Detail: fmt.Sprintf("also defined in %q", other)})
			}
			seen[n.ID] = ch.Name
		}
		entry := ch.EntryID()
		if !ch.Contains(entry) {
			add(Problem{Kind: ProblemEntry, Chapter: ch.Name, Ref: entry, Detail: "entry outside chapter range"})
		} else if _, ok := ch.Node(entry); !ok {
			add(Problem{Kind: ProblemEntry, Chapter: ch.Name, Ref: entry, Detail: "entry node missing"})
		}
	}

	resolves := func(id int) bool {
		_, _, err := c.Node(id)
		return err == nil
	}
	for i := range c.Chapters {
		ch := &c.Chapters[i]
		for j := range ch.Nodes {
			n := &ch.Nodes[j]
			ref := func(id int, what string) {
				if !resolves(id) {
					add(Problem{Kind: ProblemDanglingRef, Chapter: ch.Name, NodeID: n.ID, Ref: id, Detail: what})
				}
			}
			for k, choice := range n.Choices {
				ref(choice.Target, fmt.Sprintf("choice %d target", k))
			}
			if n.Next != nil {
				ref(*n.Next, "next")
			}
			for _, f := range n.Sets {
				if strings.TrimSpace(f) == "" {
					add(Problem{Kind: ProblemFlagName, Chapter: ch.Name, NodeID: n.ID, Detail: "empty flag name in sets"})
				}
			}
			if n.Minigame != nil {
				for _, p := range validateMinigame(n.Minigame) {
					p.Chapter, p.NodeID = ch.Name, n.ID
					add(p)
				}
				for o, id := range n.Minigame.Outcomes {
					ref(id, "outcome "+o)
				}
				if n.Minigame.Next != nil {
					ref(*n.Minigame.Next, "minigame next")
				}
			}
		}
	}

	if len(probs) == 0 {
		return nil
	}
	return &ValidationError{Problems: probs}
}

func validateMinigame(m *MinigameSpec) []Problem {
	var probs []Problem
	bad := func(kind ProblemKind, format string, args ...any) {
		probs = append(probs, Problem{Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}
	if m.Target < 0 {
		bad(ProblemMinigame, "negative target %d", m.Target)
	}
	if m.TimeLimit < 0 {
		bad(ProblemMinigame, "negative time limit %.2f", m.TimeLimit)
	}
	switch m.Difficulty {
	case "", Easy, Normal, Hard:
	default:
		bad(ProblemMinigame, "unknown difficulty %q", m.Difficulty)
	}
	for o := range m.Outcomes {
		switch Outcome(o) {
		case Excellent, Good, Poor, Average:
		default:
			bad(ProblemMinigame, "unknown outcome %q", o)
		}
	}
	if s := m.Special; s != nil {
		switch {
		case s.Type == "":
			bad(ProblemMinigame, "special item without type")
		case s.AppearOn == 0 || s.AppearOn < LastItem:
			bad(ProblemMinigame, "special item index %d", s.AppearOn)
		case m.Target > 0 && s.AppearOn > m.Target:
			bad(ProblemMinigame, "special item index %d beyond target %d", s.AppearOn, m.Target)
		}
	}
	for i, h := range m.Hooks {
		switch h.Trigger {
		case OnGameStart, OnItemFailed, OnAllCompleted:
		case OnItemCompleted:
			if h.AtCount != AnyCount && h.AtCount < 1 {
				bad(ProblemHook, "hook %d: item_completed needs at_count >= 1 or -1", i)
			}
		default:
			bad(ProblemHook, "hook %d: unknown trigger %q", i, h.Trigger)
		}
		if strings.TrimSpace(h.Text) == "" {
			bad(ProblemHook, "hook %d: empty text", i)
		}
	}
	return probs
}
