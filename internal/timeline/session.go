package timeline

import "time"

// Session owns the active project. There is exactly one active project at a
// time; the engine mutates it through the session rather than through any
// ambient global, so tests can run isolated fixtures.
type Session struct {
	project *Project
}

func NewSession() *Session {
	return &Session{}
}

// Project returns the active project, nil if none is loaded.
func (s *Session) Project() *Project {
	return s.project
}

// SetProject activates a project (freshly created or loaded from a
// snapshot that the store has already migrated to the current schema).
func (s *Session) SetProject(p *Project) {
	s.project = p
}

func (s *Session) touch() {
	if s.project != nil {
		s.project.UpdatedAt = time.Now()
	}
}
