package ticksource

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"depthcurve/internal/model"
)

// Source supplies the latest tick snapshot for a pool.
type Source interface {
	Load() ([]model.TickRecord, error)
}

// FileSource reads tick snapshots from a JSONL file maintained by an
// external indexer, one TickRecord per line. Each Load reads the whole
// file so the watcher always sees a complete snapshot.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load() ([]model.TickRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ticks: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var records []model.TickRecord
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var record model.TickRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("parse tick line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan ticks: %w", err)
	}

	return records, nil
}
