package archive

import "sync"

// MemorySink backs local/dev runs and tests: no broker or database
// required, matches are simply retained in-process.
type MemorySink struct {
	mu    sync.Mutex
	games []GameData
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Archive(data GameData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = append(s.games, data)
}

func (s *MemorySink) All() []GameData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GameData, len(s.games))
	copy(out, s.games)
	return out
}
