package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CheckpointFile is the name of the snapshot written into a checkpoint
// directory.
const CheckpointFile = "m5.cpt"

// Snapshot is the state saved by a checkpoint.
type Snapshot struct {
	Tick     uint64         `yaml:"tick"`
	Topology string         `yaml:"topology"`
	Events   uint64         `yaml:"events"`
	Cores    []CoreSnapshot `yaml:"cores"`
}

// CoreSnapshot is the saved state of one processor.
type CoreSnapshot struct {
	Name    string           `yaml:"name"`
	Model   string           `yaml:"model"`
	Threads []ThreadSnapshot `yaml:"threads"`
}

// ThreadSnapshot is the saved progress of one thread.
type ThreadSnapshot struct {
	PID     int    `yaml:"pid"`
	Retired uint64 `yaml:"retired"`
	Target  uint64 `yaml:"target"`
}

// Snapshot captures the current state of the simulation.
func (s *Simulator) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:   s.curTick,
		Events: s.Events(),
	}

	if s.topo != nil {
		snap.Topology = s.topo.ID()
	}

	for _, c := range s.cores {
		cs := CoreSnapshot{Name: c.Name(), Model: c.model.Name}

		for _, t := range c.threads {
			cs.Threads = append(cs.Threads, ThreadSnapshot{
				PID:     t.pid,
				Retired: t.retired,
				Target:  t.target,
			})
		}

		snap.Cores = append(snap.Cores, cs)
	}

	return snap
}

// Checkpoint writes a snapshot into dir, creating it if needed.
func (s *Simulator) Checkpoint(dir string) error {
	if s.topo == nil {
		return ErrNotInstantiated
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	data, err := yaml.Marshal(s.Snapshot())
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, CheckpointFile), data, 0o644)
}

// ReadCheckpoint loads the snapshot stored in a checkpoint directory.
func ReadCheckpoint(dir string) (Snapshot, error) {
	var snap Snapshot

	data, err := os.ReadFile(filepath.Join(dir, CheckpointFile))
	if err != nil {
		return snap, err
	}

	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("invalid checkpoint %s: %w", dir, err)
	}

	return snap, nil
}
