package history

import (
	"fmt"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/KitotsuMolina/Kitowall/internal/lockfile"
	"go.uber.org/zap"
)

// MaxEntries bounds history.json; the oldest entries are dropped first.
const MaxEntries = 500

// Entry records one wallpaper applied to one output
type Entry struct {
	Timestamp int64  `json:"timestamp"` // epoch millis
	Pack      string `json:"pack"`
	Output    string `json:"output"`
	Path      string `json:"path"`
}

type historyFile struct {
	Entries []Entry `json:"entries"`
}

// Log appends applied wallpapers to history.json
type Log struct {
	logger *zap.Logger
	path   string
	now    func() time.Time
}

// NewLog creates a history log stored at path
func NewLog(logger *zap.Logger, path string) *Log {
	return &Log{logger: logger, path: path, now: time.Now}
}

// Append records one entry per assignment, in order
func (l *Log) Append(pack string, assignments []domain.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	lock, err := lockfile.Acquire(l.path)
	if err != nil {
		return err
	}
	defer lock.Release()

	var data historyFile
	if _, err := lockfile.ReadJSON(l.path, &data); err != nil {
		l.logger.Warn("History unreadable, starting over", zap.Error(err))
		data = historyFile{}
	}

	ts := l.now().UnixMilli()
	for _, a := range assignments {
		data.Entries = append(data.Entries, Entry{Timestamp: ts, Pack: pack, Output: a.Output, Path: a.Path})
	}
	if n := len(data.Entries); n > MaxEntries {
		data.Entries = data.Entries[n-MaxEntries:]
	}

	if _, err := lockfile.WriteJSON(l.path, data); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Entries returns the recorded history, oldest first
func (l *Log) Entries() ([]Entry, error) {
	var data historyFile
	if _, err := lockfile.ReadJSON(l.path, &data); err != nil {
		return nil, err
	}
	return data.Entries, nil
}
