package commands

import "sync"

// SenderState remembers the last session each sender saved so that /report
// works without an id.
type SenderState struct {
	lastSession map[string]string
	mu          sync.RWMutex
}

// NewSenderState creates an empty tracker.
func NewSenderState() *SenderState {
	return &SenderState{lastSession: make(map[string]string)}
}

// LastSession returns the id of the last session saved by sender.
func (s *SenderState) LastSession(sender string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.lastSession[sender]
	return id, ok
}

// Remember stores the last saved session of sender.
func (s *SenderState) Remember(sender, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSession[sender] = sessionID
}
