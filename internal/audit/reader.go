package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cmdgate/cmdgate/pkg/types"
)

// Partition identifies one date-partitioned log file.
type Partition struct {
	Family string
	Date   string
	Path   string
}

// List returns the audit partitions under dir, sorted by family then
// date. A missing directory is an empty listing, not an error: nothing
// has been audited yet.
func List(dir string) ([]Partition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audit dir: %w", err)
	}

	var parts []Partition
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".log")
		// <family>-<YYYY-MM-DD>; the family itself may contain dashes.
		if len(name) < len("x-2006-01-02") {
			continue
		}
		sep := len(name) - len("2006-01-02") - 1
		if name[sep] != '-' {
			continue
		}
		parts = append(parts, Partition{
			Family: name[:sep],
			Date:   name[sep+1:],
			Path:   filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Family != parts[j].Family {
			return parts[i].Family < parts[j].Family
		}
		return parts[i].Date < parts[j].Date
	})
	return parts, nil
}

// Read parses every record in a partition file, in append order.
// Unparseable lines abort the read: the engine only ever writes whole
// JSON lines, so a bad line means the file was tampered with or
// truncated.
func Read(path string) ([]types.AuditRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []types.AuditRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec types.AuditRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("parse audit log %s line %d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return records, nil
}

// Tail returns the last n records of a partition.
func Tail(path string, n int) ([]types.AuditRecord, error) {
	records, err := Read(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}
