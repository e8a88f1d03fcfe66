package task

import (
	"fmt"
	"os"
	"path/filepath"
)

// wellKnownPaths lists the fixed paths to check for a task file, in priority order.
var wellKnownPaths = []string{
	"task.json",
	"TASK.json",
	"tasks/task.json",
}

// subdirRoots lists directories whose immediate subdirectories are searched
// for a task.json file (e.g. tasks/0042/task.json).
var subdirRoots = []string{
	"tasks",
}

// DiscoverTaskFile locates a task file. If taskFileFlag is provided it is
// used directly (must exist). Otherwise the function walks a deterministic set
// of well-known locations relative to the current working directory.
//
// Search order:
//  1. Explicit flag value (must exist)
//  2. ./task.json, ./TASK.json, ./tasks/task.json
//  3. ./tasks/*/task.json (first match, alphabetical)
func DiscoverTaskFile(taskFileFlag string) (string, error) {
	if taskFileFlag != "" {
		abs, err := filepath.Abs(taskFileFlag)
		if err != nil {
			return "", fmt.Errorf("resolving task file path: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("task file not found: %s", taskFileFlag)
		}
		return abs, nil
	}

	for _, rel := range wellKnownPaths {
		abs, err := filepath.Abs(rel)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err == nil {
			return abs, nil
		}
	}

	for _, root := range subdirRoots {
		absPattern, err := filepath.Abs(filepath.Join(root, "*", "task.json"))
		if err != nil {
			continue
		}
		matches, err := filepath.Glob(absPattern)
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}

	return "", fmt.Errorf("no task file found (searched well-known paths and subdirectories)")
}
