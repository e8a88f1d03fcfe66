package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotFileName returns the snapshot file name for a run.
func SnapshotFileName(runID string) string {
	return "run-" + runID + ".json"
}

// SaveState persists the run state as indented JSON under dir and returns
// the written path.
func SaveState(s *SystemState, dir string) (string, error) {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}

	path := filepath.Join(dir, SnapshotFileName(s.RunID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write state file: %w", err)
	}
	return path, nil
}

// LoadState reads a snapshot written by SaveState.
func LoadState(path string) (*SystemState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	s := &SystemState{
		Candidates: NewStore[*Candidate](),
		Questions:  NewStore[string](),
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if s.Errors == nil {
		s.Errors = make(map[string]string)
	}
	if s.UnitTests == nil {
		s.UnitTests = make(map[string][]string)
	}
	return s, nil
}
