// Package jsonl reads and writes contacts as JSON Lines. Writes are atomic
// (temp file, fsync, rename); reads skip blank and malformed lines.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// maxLine bounds a single record. Notes can be long.
const maxLine = 1 << 20

// Decode reads one contact per line from r. Lines that are blank, are not
// valid JSON, or decode to a record without a full name are skipped and
// counted.
func Decode(r io.Reader) (contacts []types.Contact, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var c types.Contact
		if !json.Valid(line) || json.Unmarshal(line, &c) != nil || c.FullName == "" {
			skipped++
			continue
		}
		contacts = append(contacts, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scanning records: %w", err)
	}
	return contacts, skipped, nil
}

// Encode writes one contact per line to w.
func Encode(w io.Writer, contacts []types.Contact) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, c := range contacts {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("writing record %s: %w", c.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	return nil
}

// ReadFile decodes the JSONL file at path.
func ReadFile(path string) ([]types.Contact, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile atomically replaces path with contacts, one per line.
func WriteFile(path string, contacts []types.Contact) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, contacts); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
