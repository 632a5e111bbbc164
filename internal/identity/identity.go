// Package identity owns the two opaque tokens the tracker reports with:
// the long-lived visitor token and the sliding-window session token.
package identity

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/config"
	"github.com/moadamda/tracker/internal/storage"
)

// Manager reads and maintains the visitor and session tokens. All
// lifetime bookkeeping is delegated to the store's TTL mechanism: a
// session is new exactly when its storage entry has expired.
type Manager struct {
	store  storage.Store
	cfg    config.SessionConfig
	logger zerolog.Logger
}

// NewManager creates a new identity manager
func NewManager(store storage.Store, cfg config.SessionConfig, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "IdentityManager").Logger(),
	}
}

// VisitorID returns the visitor token, creating one with the full
// visitor lifetime if absent. The token is never refreshed by activity.
func (m *Manager) VisitorID() string {
	if id, ok := m.store.Get(m.cfg.VisitorKey); ok {
		return id
	}
	id := uuid.NewString()
	m.store.Set(m.cfg.VisitorKey, id, m.cfg.VisitorTTL())
	m.logger.Debug().Str("visitor_id", id).Msg("New visitor token created")
	return id
}

// SessionID returns the session token, creating one with the session
// window if the previous entry has expired.
func (m *Manager) SessionID() string {
	if id, ok := m.store.Get(m.cfg.SessionKey); ok {
		return id
	}
	id := uuid.NewString()
	m.store.Set(m.cfg.SessionKey, id, m.cfg.SessionTTL())
	m.logger.Debug().Str("session_id", id).Msg("New session token created")
	return id
}

// RefreshSession rewrites the current session token with a full window
// from now. Called on every outbound transmission, which is what makes
// session length "time since last activity" rather than "time since
// session start".
func (m *Manager) RefreshSession() {
	id := m.SessionID()
	m.store.Set(m.cfg.SessionKey, id, m.cfg.SessionTTL())
}
