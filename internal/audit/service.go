// Package audit records an account activity trail: sign-ins, sign-outs,
// registrations and library changes.
package audit

import (
	"log"
	"sync"
	"time"

	"github.com/mrlokans/booklend/internal/database/audit"
	"github.com/mrlokans/booklend/internal/entities"
)

// Auth actions.
const (
	ActionLogin    = "login"
	ActionLogout   = "logout"
	ActionRegister = "register"
)

// Library actions.
const (
	ActionLibraryAdd    = "library_add"
	ActionLibraryRemove = "library_remove"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until pending async writes finish. Called on shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogAuth records an authentication event. Failed logins for unknown
// accounts are stored with user id 0.
func (s *Service) LogAuth(userID uint, action, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 255),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogLibrary records a library change for a book.
func (s *Service) LogLibrary(userID uint, action string, bookID int, err error) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventLibrary,
		Action:    action,
		BookID:    &bookID,
		Status:    entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 255)
	}

	s.LogAsync(event)
}

// GetEvents retrieves a page of a user's events.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
