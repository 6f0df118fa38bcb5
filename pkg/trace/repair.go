package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

var headerPrefix = []byte(`{"otherData"`)

// RepairBytes terminates an unterminated document. A trailing partial
// event is dropped by backtracking to the previous comma until the
// result parses; backtracking stops at the opening bracket of the
// event array, so at worst all events are dropped. Returns the
// repaired bytes and whether anything changed.
func RepairBytes(data []byte) ([]byte, bool, error) {
	trimmed := bytes.TrimRight(data, " \t\r\n")

	if !bytes.HasPrefix(trimmed, headerPrefix) {
		return nil, false, fmt.Errorf("not a trace document")
	}

	if bytes.HasSuffix(trimmed, []byte("]}")) {
		return data, false, nil
	}

	bracket := bytes.IndexByte(trimmed, '[')
	if bracket < 0 {
		return nil, false, fmt.Errorf("not a trace document")
	}

	candidate := trimmed
	for {
		repaired := append(append([]byte{}, candidate...), "]}"...)
		if json.Valid(repaired) {
			return repaired, true, nil
		}

		cut := bytes.LastIndexByte(candidate, ',')
		if cut <= bracket {
			candidate = trimmed[:bracket+1]
			repaired = append(append([]byte{}, candidate...), "]}"...)
			if json.Valid(repaired) {
				return repaired, true, nil
			}
			return nil, false, fmt.Errorf("document cannot be repaired")
		}
		candidate = candidate[:cut]
	}
}

// Repair terminates an unterminated trace file in place, replacing it
// atomically. Returns whether the file was modified.
func Repair(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read trace file: %w", err)
	}

	repaired, changed, err := RepairBytes(data)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, repaired, 0644); err != nil {
		return false, fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic replace
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return false, fmt.Errorf("failed to replace trace file: %w", err)
	}

	dropped := len(data) - (len(repaired) - len("]}"))
	log.Info().
		Str("path", path).
		Int("dropped_bytes", dropped).
		Msg("Trace repaired")

	return true, nil
}
