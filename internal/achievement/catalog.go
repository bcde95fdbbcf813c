// Package achievement maps story conditions and the cumulative perfect-item
// counter to one-way unlocks.
package achievement

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MasterCondition is the condition token bound to the perfect-item counter.
const MasterCondition = "dumplingMaster"

type Achievement struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Condition   string `yaml:"condition" json:"condition"`
	Image       string `yaml:"image,omitempty" json:"image,omitempty"`
	Unlocked    bool   `yaml:"-" json:"unlocked"`
}

type Catalog struct {
	Achievements []Achievement `yaml:"achievements"`
}

var ErrInvalidCatalog = errors.New("achievement: invalid catalog")

// DefaultCatalog returns the built-in achievement list.
func DefaultCatalog() Catalog {
	return Catalog{Achievements: []Achievement{
		{ID: 1, Name: "First Fold", Description: "Finish your first dumpling session.", Condition: "dumplingGameCompleted", Image: "achievement_first_fold"},
		{ID: 2, Name: "Kitchen Prodigy", Description: "Finish a session with an excellent rating.", Condition: "dumplingExcellent", Image: "achievement_prodigy"},
		{ID: 3, Name: "Steady Hands", Description: "Make at least five perfect dumplings without a single mistake.", Condition: "noMistakes", Image: "achievement_steady_hands"},
		{ID: 4, Name: "Assembly Line", Description: "Make ten or more dumplings in a timed session.", Condition: "highProduction", Image: "achievement_assembly_line"},
		{ID: 5, Name: "Quota Met", Description: "Reach the target count in a session.", Condition: "targetReached", Image: "achievement_quota"},
		{ID: 6, Name: "Lucky Coin", Description: "Hide the lucky coin inside a dumpling.", Condition: "coinDumplingCompleted", Image: "achievement_lucky_coin"},
		{ID: 7, Name: "Dumpling Master", Description: "Make ten perfect dumplings in total.", Condition: MasterCondition, Image: "achievement_master"},
		{ID: 8, Name: "Homecoming", Description: "Arrive home for the new year.", Condition: "arrivedHome", Image: "achievement_homecoming"},
		{ID: 9, Name: "Family Recipe", Description: "Learn grandma's filling recipe.", Condition: "learnedRecipe", Image: "achievement_recipe"},
		{ID: 10, Name: "Reunion Dinner", Description: "Share the reunion dinner with everyone.", Condition: "reunionDinner", Image: "achievement_reunion"},
	}}
}

// LoadCatalog reads a catalog from a YAML file and validates it.
func LoadCatalog(path string) (Catalog, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // operator-supplied config path
	if err != nil {
		return Catalog{}, err
	}
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse achievements %s: %w", cleanPath, err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks that ids run 1..N without duplicates and that every entry
// has its own condition token. Every problem is reported.
func (c Catalog) Validate() error {
	n := len(c.Achievements)
	seenID := make(map[int]bool, n)
	seenCond := make(map[string]bool, n)
	var errs []error
	for _, a := range c.Achievements {
		switch {
		case a.ID < 1 || a.ID > n:
			errs = append(errs, fmt.Errorf("id %d outside 1..%d", a.ID, n))
		case seenID[a.ID]:
			errs = append(errs, fmt.Errorf("duplicate id %d", a.ID))
		}
		seenID[a.ID] = true
		switch {
		case a.Condition == "":
			errs = append(errs, fmt.Errorf("id %d has no condition", a.ID))
		case seenCond[a.Condition]:
			errs = append(errs, fmt.Errorf("condition %q bound twice", a.Condition))
		}
		seenCond[a.Condition] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}
