package workflow

import "sync"

// ProjectStore keys live orchestrators by project identifier. It is an
// explicit dependency injected into callers rather than ambient process
// state, so the engine stays testable without a UI shell.
type ProjectStore struct {
	mu       sync.Mutex
	projects map[string]*Orchestrator
}

// NewProjectStore creates an empty store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{projects: make(map[string]*Orchestrator)}
}

// Get returns the orchestrator for a project, if open.
func (ps *ProjectStore) Get(projectID string) (*Orchestrator, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	o, ok := ps.projects[projectID]
	return o, ok
}

// Open returns the existing orchestrator for a project or creates one
// via build.
func (ps *ProjectStore) Open(projectID string, build func() *Orchestrator) *Orchestrator {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if o, ok := ps.projects[projectID]; ok {
		return o
	}
	o := build()
	ps.projects[projectID] = o
	return o
}

// Close drops a project's workflow state.
func (ps *ProjectStore) Close(projectID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	delete(ps.projects, projectID)
}
