package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is a point-in-time read of one document.
type Snapshot struct {
	path       string
	exists     bool
	data       []byte
	etag       string
	updateTime time.Time
}

func newSnapshot(path string, data []byte, etag string, updated time.Time) *Snapshot {
	return &Snapshot{
		path:       path,
		exists:     true,
		data:       data,
		etag:       etag,
		updateTime: updated,
	}
}

func missingSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

func (s *Snapshot) Path() string { return s.path }

// ID is the last segment of the path.
func (s *Snapshot) ID() string {
	_, id, _ := SplitPath(s.path)
	return id
}

func (s *Snapshot) Exists() bool { return s.exists }

func (s *Snapshot) ETag() string { return s.etag }

func (s *Snapshot) UpdateTime() time.Time { return s.updateTime }

// Data returns a copy of the raw JSON body, nil when the document does not exist.
func (s *Snapshot) Data() []byte {
	if !s.exists {
		return nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// DataTo decodes the document body into v.
func (s *Snapshot) DataTo(v any) error {
	if !s.exists {
		return fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err := json.Unmarshal(s.data, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", s.path, err)
	}
	return nil
}
