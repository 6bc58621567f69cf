package audit

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/tasktracker/internal/database/audit"
	"github.com/mrlokans/tasktracker/internal/entities"
)

var testInfo = RequestInfo{
	IPAddress: "192.168.1.1",
	UserAgent: "curl/8.5.0",
	RequestID: "3f1c9a52-7a43-4a8e-9a51-1f6a4d2b7e10",
}

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	svc := NewService(auditRepo.NewRepository(db))
	t.Cleanup(func() {
		svc.Wait()
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return svc, db
}

func findByAction(t *testing.T, db *gorm.DB, action string) entities.AuditEvent {
	t.Helper()
	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", action).First(&event).Error)
	return event
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    "test_event",
		Status:    entities.AuditStatusSuccess,
	}

	err := svc.Log(event)
	require.NoError(t, err)

	saved := findByAction(t, db, "test_event")
	assert.Equal(t, event.ID, saved.ID)
}

func TestService_LogRegister(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("success", func(t *testing.T) {
		svc.LogRegister(1, "a@x.com", testInfo, nil)
		svc.Wait()

		event := findByAction(t, db, "register")
		assert.Equal(t, entities.AuditEventAuth, event.EventType)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "Registered a@x.com", event.Description)
		assert.Equal(t, testInfo.RequestID, event.RequestID)
		assert.Equal(t, testInfo.IPAddress, event.IPAddress)
	})

	t.Run("failure", func(t *testing.T) {
		require.NoError(t, db.Where("1 = 1").Delete(&entities.AuditEvent{}).Error)

		svc.LogRegister(0, "a@x.com", testInfo, errors.New("user already exists"))
		svc.Wait()

		event := findByAction(t, db, "register")
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Contains(t, event.ErrorMsg, "already exists")
	})
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(1, "login", testInfo, true)
	svc.LogAuth(0, "login_failed", RequestInfo{IPAddress: "10.0.0.1"}, false)
	svc.Wait()

	ok := findByAction(t, db, "login")
	assert.Equal(t, entities.AuditStatusSuccess, ok.Status)
	assert.Equal(t, uint(1), ok.UserID)

	failed := findByAction(t, db, "login_failed")
	assert.Equal(t, entities.AuditStatusFailed, failed.Status)
	assert.Equal(t, "10.0.0.1", failed.IPAddress)
}

func TestService_LogLoginFailed(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogLoginFailed("mallory@x.com", testInfo, errors.New("invalid credentials"))
	svc.Wait()

	event := findByAction(t, db, "login_failed")
	assert.Equal(t, entities.AuditEventAuth, event.EventType)
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Zero(t, event.UserID)
	assert.Equal(t, "Failed login for mallory@x.com", event.Description)
	assert.JSONEq(t, `{"email":"mallory@x.com"}`, event.Metadata)
	assert.Equal(t, "invalid credentials", event.ErrorMsg)
}

func TestService_LogDelete(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogDelete(1, "todo", 42, "buy milk", testInfo)
	svc.Wait()

	event := findByAction(t, db, "todo_delete")
	assert.Equal(t, entities.AuditEventDelete, event.EventType)
	assert.Equal(t, "todo", event.EntityType)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(42), *event.EntityID)
	assert.Equal(t, "Deleted todo: buy milk", event.Description)
}

func TestService_LogBulkDelete(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogBulkDelete(1, "todo", 3, testInfo)
	svc.Wait()

	event := findByAction(t, db, "todo_delete_completed")
	assert.Equal(t, "Deleted 3 completed todos", event.Description)
	assert.JSONEq(t, `{"count":3}`, event.Metadata)
	assert.Nil(t, event.EntityID)
}

func TestService_LogDenied(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogDenied(2, "todo_update", "todo", 7, testInfo)
	svc.Wait()

	event := findByAction(t, db, "todo_update")
	assert.Equal(t, entities.AuditEventAccess, event.EventType)
	assert.Equal(t, entities.AuditStatusDenied, event.Status)
	assert.Equal(t, uint(2), event.UserID)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(7), *event.EntityID)
}

func TestService_GetEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := 0; i < 5; i++ {
		err := svc.Log(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventAuth,
			Action:    "login",
			Status:    entities.AuditStatusSuccess,
		})
		require.NoError(t, err)
	}

	events, total, err := svc.GetEvents(1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, events, 5)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	require.NoError(t, db.Create(&entities.AuditEvent{
		Action:    "old",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&entities.AuditEvent{
		Action:    "new",
		CreatedAt: time.Now(),
	}).Error)

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []entities.AuditEvent
	db.Find(&remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Action)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a very long string", 10, "this is..."},
		{"", 5, ""},
	}

	for _, tc := range tests {
		result := truncate(tc.input, tc.maxLen)
		assert.Equal(t, tc.expected, result)
	}
}
