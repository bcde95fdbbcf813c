// check_content loads a story file, and optionally an achievement catalog,
// and prints every content problem found.
// Usage: go run scripts/check_content.go <story.yaml> [achievements.yaml]
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dumplingtale/internal/achievement"
	"dumplingtale/internal/story"
)

func main() {
	code := run()
	if code != 0 {
		os.Exit(code)
	}
}

func run() int {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "usage: go run scripts/check_content.go <story.yaml> [achievements.yaml]\n")
		return 1
	}
	storyPath := filepath.Clean(os.Args[1])
	if strings.Contains(storyPath, "..") {
		fmt.Fprintf(os.Stderr, "path must not escape current directory\n")
		return 1
	}

	c, err := story.LoadContent(storyPath)
	var verr *story.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, p := range verr.Problems {
			fmt.Println(p.String())
		}
		fmt.Fprintf(os.Stderr, "%s: %d problem(s)\n", storyPath, len(verr.Problems))
		return 1
	case err != nil:
		fmt.Fprintf(os.Stderr, "%s: %v\n", storyPath, err)
		return 1
	}

	nodes, minigames := 0, 0
	for _, ch := range c.Chapters {
		nodes += len(ch.Nodes)
		for _, n := range ch.Nodes {
			if n.Minigame != nil {
				minigames++
			}
		}
	}
	fmt.Printf("%s: %q ok, %d chapters, %d nodes, %d minigames\n", storyPath, c.Title, len(c.Chapters), nodes, minigames)

	if len(os.Args) == 3 {
		catPath := filepath.Clean(os.Args[2])
		cat, err := achievement.LoadCatalog(catPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", catPath, err)
			return 1
		}
		fmt.Printf("%s: %d achievements ok\n", catPath, len(cat.Achievements))
	}
	return 0
}
