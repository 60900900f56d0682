package onboarding

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{byKey: make(map[string]Conversation)}
}

// Start opens c for key, replacing any conversation already open.
func (s *Sessions) Start(key string, c Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[key] = c
}

// Get returns the open conversation of key.
func (s *Sessions) Get(key string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byKey[key]
	return c, ok
}

// End closes the conversation of key.
func (s *Sessions) End(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byKey, key)
}
