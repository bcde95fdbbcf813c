package story

import (
	"errors"
	"testing"
)

func intp(v int) *int { return &v }

func validContent() *Content {
	return &Content{Chapters: []Chapter{
		{Name: "One", Start: 1, End: 9, Nodes: []Node{
			{ID: 1, Text: "a", Next: intp(2)},
			{ID: 2, Text: "b", Choices: []Choice{{Text: "go", Target: 10}}},
		}},
		{Name: "Two", Start: 10, End: 19, Nodes: []Node{
			{ID: 10, Text: "c"},
		}},
	}}
}

func problems(t *testing.T, c *Content) *ValidationError {
	t.Helper()
	err := Validate(c)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("Expected ErrInvalidContent, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	return ve
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validContent()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestValidate_Overlap(t *testing.T) {
	c := validContent()
	c.Chapters[1].Start = 9
	c.Chapters[1].Nodes = append(c.Chapters[1].Nodes, Node{ID: 9, Text: "x"})
	ve := problems(t, c)
	if !ve.Has(ProblemOverlap) {
		t.Errorf("Expected overlap problem, got %v", ve)
	}
}

func TestValidate_Range(t *testing.T) {
	c := validContent()
	c.Chapters[1].Start, c.Chapters[1].End = 19, 10
	ve := problems(t, c)
	if !ve.Has(ProblemRange) {
		t.Errorf("Expected range problem, got %v", ve)
	}
}

func TestValidate_DanglingReferences(t *testing.T) {
	c := validContent()
	c.Chapters[0].Nodes[0].Next = intp(5)
	c.Chapters[0].Nodes[1].Choices[0].Target = 42
	ve := problems(t, c)

	var refs []int
	for _, p := range ve.Problems {
		if p.Kind == ProblemDanglingRef {
			refs = append(refs, p.Ref)
		}
	}
	if len(refs) != 2 || refs[0] != 5 || refs[1] != 42 {
		t.Errorf("Expected dangling refs 5 and 42, got %v", refs)
	}
}

func TestValidate_NodePlacement(t *testing.T) {
	c := validContent()
	c.Chapters[0].Nodes = append(c.Chapters[0].Nodes, Node{ID: 15, Text: "misplaced"}, Node{ID: 1, Text: "dup"})
	ve := problems(t, c)
	if !ve.Has(ProblemNodeOutOfRange) {
		t.Errorf("Expected out-of-range problem, got %v", ve)
	}
	if !ve.Has(ProblemDuplicateNode) {
		t.Errorf("Expected duplicate problem, got %v", ve)
	}
}

func TestValidate_MissingEntryAndName(t *testing.T) {
	c := validContent()
	c.Chapters[1].Entry = 11
	c.Chapters[0].Name = ""
	ve := problems(t, c)
	if !ve.Has(ProblemEntry) || !ve.Has(ProblemChapterName) {
		t.Errorf("Expected entry and name problems, got %v", ve)
	}
}

func TestValidate_Minigame(t *testing.T) {
	c := validContent()
	c.Chapters[1].Nodes[0].Minigame = &MinigameSpec{
		Target:     3,
		Difficulty: "brutal",
		Special:    &SpecialItem{Type: "coin", AppearOn: 4},
		Outcomes:   map[string]int{"excellent": 77, "legendary": 55},
		Hooks: []Hook{
			{Trigger: OnItemCompleted, AtCount: 0, Text: "hi"},
			{Trigger: "whenever", Text: "hi"},
		},
	}
	ve := problems(t, c)
	var minigame, hooks, dangling int
	for _, p := range ve.Problems {
		switch p.Kind {
		case ProblemMinigame:
			minigame++
		case ProblemHook:
			hooks++
		case ProblemDanglingRef:
			dangling++
		}
	}
	if minigame != 3 {
		t.Errorf("Expected 3 minigame problems (difficulty, special, outcome), got %d: %v", minigame, ve)
	}
	if hooks != 2 {
		t.Errorf("Expected 2 hook problems, got %d: %v", hooks, ve)
	}
	if dangling != 2 {
		t.Errorf("Expected 2 dangling outcome refs (77 and 55), got %d: %v", dangling, ve)
	}
}

func TestValidate_SpecialLastItemAllowed(t *testing.T) {
	c := validContent()
	c.Chapters[1].Nodes[0].Minigame = &MinigameSpec{
		Target:  5,
		Special: &SpecialItem{Type: "coin", AppearOn: LastItem},
	}
	if err := Validate(c); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestValidate_Empty(t *testing.T) {
	ve := problems(t, &Content{})
	if !ve.Has(ProblemChapterName) {
		t.Errorf("Expected problem for empty content, got %v", ve)
	}
}
