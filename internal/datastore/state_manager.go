package datastore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"gorm.io/gorm"
)

// StateManager tracks migration runs in the migration_state singleton row.
// Transitions use conditional updates so that two processes pointed at the
// same destination cannot both start a run.
type StateManager struct {
	db *gorm.DB
	mu sync.RWMutex
}

// NewStateManager creates a new run state manager.
func NewStateManager(db *gorm.DB) *StateManager {
	return &StateManager{db: db}
}

// GetState returns the current run state.
func (m *StateManager) GetState(ctx context.Context) (*entities.MigrationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current(ctx)
}

func (m *StateManager) current(ctx context.Context) (*entities.MigrationState, error) {
	var state entities.MigrationState
	if err := m.db.WithContext(ctx).First(&state, 1).Error; err != nil {
		return nil, fmt.Errorf("failed to get migration state: %w", Classify(err))
	}
	return &state, nil
}

// StartRun moves the state to running. It fails when another run is marked
// as running unless force is set, which recovers from a crashed process.
func (m *StateManager) StartRun(ctx context.Context, runID string, totalEntities int, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	startable := []entities.MigrationStatus{
		entities.MigrationStatusIdle,
		entities.MigrationStatusCompleted,
		entities.MigrationStatusHalted,
	}
	if force {
		startable = append(startable, entities.MigrationStatusRunning)
	}

	now := time.Now()
	updates := map[string]any{
		"state":              entities.MigrationStatusRunning,
		"run_id":             runID,
		"current_entity":     "",
		"completed_entities": 0,
		"total_entities":     totalEntities,
		"started_at":         &now,
		"completed_at":       nil,
		"error_message":      "",
	}

	result := m.db.WithContext(ctx).Model(&entities.MigrationState{}).
		Where("id = 1 AND state IN ?", startable).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to start migration run: %w", Classify(result.Error))
	}

	if result.RowsAffected == 0 {
		current, err := m.current(ctx)
		if err != nil {
			return err
		}
		return fmt.Errorf("cannot start migration run: run %s is still %s", current.RunID, current.State)
	}

	return nil
}

// BeginEntity records the entity the running run is working on.
func (m *StateManager) BeginEntity(ctx context.Context, runID, entity string) error {
	return m.updateRunning(ctx, runID, "begin entity", map[string]any{
		"current_entity": entity,
	})
}

// CompleteEntity increments the number of finished entities.
func (m *StateManager) CompleteEntity(ctx context.Context, runID string) error {
	return m.updateRunning(ctx, runID, "complete entity", map[string]any{
		"completed_entities": gorm.Expr("completed_entities + 1"),
	})
}

// Complete marks the run as completed.
func (m *StateManager) Complete(ctx context.Context, runID string) error {
	now := time.Now()
	return m.updateRunning(ctx, runID, "complete run", map[string]any{
		"state":          entities.MigrationStatusCompleted,
		"current_entity": "",
		"completed_at":   &now,
	})
}

// Halt marks the run as halted with the error that stopped it.
func (m *StateManager) Halt(ctx context.Context, runID, errMsg string) error {
	now := time.Now()
	return m.updateRunning(ctx, runID, "halt run", map[string]any{
		"state":         entities.MigrationStatusHalted,
		"completed_at":  &now,
		"error_message": errMsg,
	})
}

// updateRunning applies updates only while runID owns the running state.
func (m *StateManager) updateRunning(ctx context.Context, runID, op string, updates map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := m.db.WithContext(ctx).Model(&entities.MigrationState{}).
		Where("id = 1 AND state = ? AND run_id = ?", entities.MigrationStatusRunning, runID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to %s: %w", op, Classify(result.Error))
	}

	if result.RowsAffected == 0 {
		current, err := m.current(ctx)
		if err != nil {
			return err
		}
		return fmt.Errorf("cannot %s: run %s is %s, expected run %s running", op, current.RunID, current.State, runID)
	}

	return nil
}
