package state

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/lockfile"
	"go.uber.org/zap"
)

// Store persists State to a JSON file guarded by an advisory lock
type Store struct {
	logger *zap.Logger
	path   string
}

// NewStore creates a state store backed by path
func NewStore(logger *zap.Logger, path string) *Store {
	return &Store{logger: logger, path: path}
}

// Load reads the state under the file lock
func (s *Store) Load() (*State, error) {
	lock, err := lockfile.Acquire(s.path)
	if err != nil {
		return nil, stateIO(err)
	}
	defer lock.Release()

	return s.load()
}

// Update loads the state, runs fn and saves the result, all under the file lock.
// Nothing is written when fn fails.
func (s *Store) Update(fn func(*State) error) error {
	lock, err := lockfile.Acquire(s.path)
	if err != nil {
		return stateIO(err)
	}
	defer lock.Release()

	st, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.save(st)
}

// load reads and repairs the state file.
// The repaired shape is written back only when it differs from what was read.
func (s *Store) load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, stateIO(err)
	}

	var original any
	if err := json.Unmarshal(data, &original); err != nil {
		s.logger.Warn("State file corrupt, resetting",
			zap.String("path", s.path),
			zap.Error(err))
		st := New()
		return st, s.save(st)
	}

	st := repair(original)

	if !sameJSON(original, st) {
		s.logger.Info("Repaired state file shape", zap.String("path", s.path))
		if err := s.save(st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (s *Store) save(st *State) error {
	if _, err := lockfile.WriteJSON(s.path, st); err != nil {
		return stateIO(err)
	}
	return nil
}

// repair builds a well-formed State from an arbitrary decoded JSON value.
// Fields with the wrong shape fall back to their empty defaults.
func repair(raw any) *State {
	st := New()
	obj, ok := raw.(map[string]any)
	if !ok {
		return st
	}

	if mode, ok := obj["mode"].(string); ok && (mode == config.ModeManual || mode == config.ModeRotate) {
		st.Mode = mode
	}
	if pack, ok := obj["currentPack"].(string); ok {
		st.CurrentPack = pack
	}
	if ts, ok := obj["lastUpdated"].(float64); ok && ts >= 0 {
		st.LastUpdated = int64(ts)
	}
	st.LastOutputs = stringSlice(obj["lastOutputs"])
	st.RecentGlobal = stringSlice(obj["recentGlobal"])

	if m, ok := obj["lastAssigned"].(map[string]any); ok {
		for out, v := range m {
			if p, ok := v.(string); ok {
				st.LastAssigned[out] = p
			}
		}
	}
	if m, ok := obj["recentByOutput"].(map[string]any); ok {
		for out, v := range m {
			st.RecentByOutput[out] = stringSlice(v)
		}
	}

	st.Trim()
	return st
}

// stringSlice keeps the string elements of v, or returns an empty slice when v is not an array
func stringSlice(v any) []string {
	arr, ok := v.([]any)
	out := []string{}
	if !ok {
		return out
	}
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// sameJSON compares a decoded document with the JSON form of st
func sameJSON(original any, st *State) bool {
	data, err := json.Marshal(st)
	if err != nil {
		return false
	}
	var repaired any
	if err := json.Unmarshal(data, &repaired); err != nil {
		return false
	}
	return reflect.DeepEqual(original, repaired)
}

func stateIO(err error) error {
	return apperr.Wrap(apperr.CodeStateIO,
		"failed to access rotation state",
		"check permissions of the state directory (stateDir)",
		err)
}
