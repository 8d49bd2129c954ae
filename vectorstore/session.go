package vectorstore

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Session scopes vector store usage to one workflow execution. Stores
// provisioned through a session are tracked so that ephemeral ones can
// be released when the session closes; persistent stores outlive it.
type Session struct {
	provisioner *Provisioner
	logger      *zap.Logger

	mu     sync.Mutex
	opened []string
	latest string
}

// NewSession creates a session over the shared provisioner.
func NewSession(provisioner *Provisioner, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		provisioner: provisioner,
		logger:      logger.With(zap.String("component", "vector_session")),
	}
}

// Provision creates or reuses a store and records it in the session.
func (s *Session) Provision(ctx context.Context, spec ProvisionSpec) (Handle, error) {
	handle, err := s.provisioner.Provision(ctx, spec)
	if err != nil {
		return Handle{}, err
	}
	s.mu.Lock()
	s.opened = append(s.opened, handle.StoreID)
	s.latest = handle.StoreID
	s.mu.Unlock()
	return handle, nil
}

// Index adds texts to a session store.
func (s *Session) Index(ctx context.Context, storeID string, texts []string, metadata map[string]any) (int, error) {
	return s.provisioner.Index(ctx, storeID, texts, metadata)
}

// Query searches a session store.
func (s *Session) Query(ctx context.Context, storeID, query string, topK int) ([]SearchResult, error) {
	return s.provisioner.Query(ctx, storeID, query, topK)
}

// Get returns the handle of a provisioned store.
func (s *Session) Get(storeID string) (Handle, error) {
	return s.provisioner.Get(storeID)
}

// Find returns the ID of the session store with the given name. When
// several share the name, the most recently provisioned one wins.
func (s *Session) Find(name string) (string, bool) {
	s.mu.Lock()
	opened := append([]string(nil), s.opened...)
	s.mu.Unlock()

	for i := len(opened) - 1; i >= 0; i-- {
		handle, err := s.provisioner.Get(opened[i])
		if err != nil {
			continue
		}
		if handle.Name == name {
			return opened[i], true
		}
	}
	return "", false
}

// Latest returns the most recently provisioned store ID, or empty when
// the session has not provisioned anything.
func (s *Session) Latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Close releases every ephemeral store opened in this session.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	opened := s.opened
	s.opened = nil
	s.mu.Unlock()

	for _, id := range opened {
		handle, err := s.provisioner.Get(id)
		if err != nil {
			continue
		}
		if handle.Persistent {
			continue
		}
		if err := s.provisioner.Release(ctx, id); err != nil {
			s.logger.Warn("failed to release store",
				zap.String("store_id", id), zap.Error(err))
		}
	}
}
