package ledger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tphakala/premigrate/internal/errors"
)

// Load parses the ledger file at path. A missing file is an empty ledger.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if e, ok := parseLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}
	return entries, nil
}

// Counts returns the number of ledger entries per entity in the file at path.
func Counts(path string) (map[string]int, error) {
	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Entity]++
	}
	return counts, nil
}

// parseLine reads one entry, skipping the header and separator lines.
func parseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return Entry{}, false
	}

	fields := strings.SplitN(strings.TrimPrefix(line, "|"), "|", 5)
	if len(fields) < 5 {
		return Entry{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if fields[0] == headerTable || strings.HasPrefix(fields[0], separatorRow) {
		return Entry{}, false
	}

	return Entry{
		Entity:   fields[0],
		RecordID: fields[1],
		CaseID:   fields[2],
		ChainID:  fields[3],
		Message:  fields[4],
	}, true
}
