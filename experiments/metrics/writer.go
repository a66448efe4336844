package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Writer persists run records as CSV files under a timestamped directory.
type Writer struct {
	baseDir string
}

// NewWriter creates the output directory for one evaluation run.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	baseDir := filepath.Join(root, timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

// Dir returns the directory records are written into.
func (w *Writer) Dir() string { return w.baseDir }

// WriteMoves writes one row per search decision.
func (w *Writer) WriteMoves(moves []MoveRecord) error {
	path := filepath.Join(w.baseDir, "moves.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create moves file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"tick", "action", "score", "iterations", "expansions", "tree_size", "duration_ms"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write moves header: %w", err)
	}
	for _, move := range moves {
		row := []string{
			strconv.Itoa(move.Tick),
			move.Action.String(),
			strconv.Itoa(move.Score),
			strconv.FormatInt(move.Iterations, 10),
			strconv.FormatInt(move.Expansions, 10),
			strconv.Itoa(move.TreeSize),
			strconv.FormatInt(move.Duration.Milliseconds(), 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write move row: %w", err)
		}
	}
	return nil
}

// WriteGame writes the single-game summary.
func (w *Writer) WriteGame(record GameRecord) error {
	path := filepath.Join(w.baseDir, "game.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"ticks", "final_score", "captured", "pellets_left", "duration_ms"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write game header: %w", err)
	}
	row := []string{
		strconv.Itoa(record.Ticks),
		strconv.Itoa(record.FinalScore),
		strconv.Itoa(record.CapturedCount),
		strconv.Itoa(record.PelletsLeft),
		strconv.FormatInt(record.Duration.Milliseconds(), 10),
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write game row: %w", err)
	}
	return nil
}
