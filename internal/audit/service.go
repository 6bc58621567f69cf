// Package audit records security-relevant events (registrations, logins,
// deletions and ownership denials) to the audit_events table.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/tasktracker/internal/database/audit"
	"github.com/mrlokans/tasktracker/internal/entities"
)

// RequestInfo carries the transport details attached to an event.
type RequestInfo struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event passed to LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogRegister records a registration attempt.
func (s *Service) LogRegister(userID uint, email string, info RequestInfo, err error) {
	event := newEvent(userID, entities.AuditEventAuth, "register", info)
	event.Description = "Registered " + email
	if err != nil {
		event.Description = "Registration failed for " + email
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, info RequestInfo, success bool) {
	event := newEvent(userID, entities.AuditEventAuth, action, info)
	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogLoginFailed records a rejected login. No user is resolved yet, so the
// attempted email goes into the description and metadata.
func (s *Service) LogLoginFailed(email string, info RequestInfo, err error) {
	email = truncate(email, 254)
	event := newEvent(0, entities.AuditEventAuth, "login_failed", info)
	event.Description = "Failed login for " + email
	event.Status = entities.AuditStatusFailed
	event.Metadata = metadata(map[string]any{"email": email})
	if err != nil {
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(userID uint, entityType string, entityID uint, entityName string, info RequestInfo) {
	event := newEvent(userID, entities.AuditEventDelete, entityType+"_delete", info)
	event.Description = "Deleted " + entityType + ": " + truncate(entityName, 200)
	event.EntityType = entityType
	event.EntityID = &entityID

	s.LogAsync(event)
}

// LogBulkDelete records a deletion of many entities at once.
func (s *Service) LogBulkDelete(userID uint, entityType string, count int64, info RequestInfo) {
	event := newEvent(userID, entities.AuditEventDelete, entityType+"_delete_completed", info)
	event.Description = fmt.Sprintf("Deleted %d completed %ss", count, entityType)
	event.EntityType = entityType
	event.Metadata = metadata(map[string]any{"count": count})

	s.LogAsync(event)
}

// LogDenied records an ownership check that rejected the caller.
func (s *Service) LogDenied(callerID uint, action, entityType string, entityID uint, info RequestInfo) {
	event := newEvent(callerID, entities.AuditEventAccess, action, info)
	event.Description = fmt.Sprintf("Denied %s on %s %d", action, entityType, entityID)
	event.EntityType = entityType
	event.EntityID = &entityID
	event.Status = entities.AuditStatusDenied

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(retention)
}

func newEvent(userID uint, eventType entities.AuditEventType, action string, info RequestInfo) *entities.AuditEvent {
	return &entities.AuditEvent{
		UserID:    userID,
		EventType: eventType,
		Action:    action,
		IPAddress: info.IPAddress,
		UserAgent: truncate(info.UserAgent, 500),
		RequestID: info.RequestID,
		Status:    entities.AuditStatusSuccess,
	}
}

func metadata(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
