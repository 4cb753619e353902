package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// JournalRepository stores task signals per run
type JournalRepository interface {
	StartRun(ctx context.Context, scenario string) (uuid.UUID, error)
	FinishRun(ctx context.Context, runID uuid.UUID, ticks uint64) error
	Append(ctx context.Context, runID uuid.UUID, signals []task.Signal) error
	Signals(ctx context.Context, runID uuid.UUID, filter SignalFilter) ([]task.Signal, error)
	CountByType(ctx context.Context, runID uuid.UUID) (map[task.SignalType]int, error)
}

// SignalFilter narrows a Signals query. Zero fields match everything.
type SignalFilter struct {
	Type   task.SignalType
	Worker shared.EntityID
	Since  uint64
	Limit  int
}

// GormJournalRepository is a GORM-based implementation
type GormJournalRepository struct {
	db        *gorm.DB
	clock     shared.Clock
	batchSize int
}

// NewGormJournalRepository creates a journal repository
// If clock is nil, uses RealClock (production behavior)
func NewGormJournalRepository(db *gorm.DB, clock shared.Clock) *GormJournalRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormJournalRepository{db: db, clock: clock, batchSize: 200}
}

// StartRun opens a new run and returns its ID
func (r *GormJournalRepository) StartRun(ctx context.Context, scenario string) (uuid.UUID, error) {
	id := uuid.New()
	run := &RunModel{ID: id.String(), Scenario: scenario, StartedAt: r.clock.Now()}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the stop time and tick count
func (r *GormJournalRepository) FinishRun(ctx context.Context, runID uuid.UUID, ticks uint64) error {
	now := r.clock.Now()
	result := r.db.WithContext(ctx).Model(&RunModel{}).
		Where("id = ?", runID.String()).
		Updates(map[string]interface{}{"stopped_at": now, "ticks": ticks})
	if result.Error != nil {
		return fmt.Errorf("failed to finish run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// Append writes signals in batches
func (r *GormJournalRepository) Append(ctx context.Context, runID uuid.UUID, signals []task.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	models := make([]TaskSignalModel, 0, len(signals))
	for _, s := range signals {
		models = append(models, toSignalModel(runID, s))
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, r.batchSize).Error; err != nil {
		return fmt.Errorf("failed to append %d signals: %w", len(signals), err)
	}
	return nil
}

// Signals returns signals of a run in tick order
func (r *GormJournalRepository) Signals(ctx context.Context, runID uuid.UUID, filter SignalFilter) ([]task.Signal, error) {
	query := r.db.WithContext(ctx).Where("run_id = ?", runID.String())
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if !filter.Worker.IsNone() {
		query = query.Where("worker_id = ?", uint64(filter.Worker))
	}
	if filter.Since > 0 {
		query = query.Where("tick >= ?", filter.Since)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []TaskSignalModel
	if err := query.Order("tick ASC").Order("at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}

	signals := make([]task.Signal, 0, len(models))
	for _, m := range models {
		signals = append(signals, fromSignalModel(m))
	}
	return signals, nil
}

// CountByType groups a run's signals by type
func (r *GormJournalRepository) CountByType(ctx context.Context, runID uuid.UUID) (map[task.SignalType]int, error) {
	var rows []struct {
		Type  string
		Count int
	}
	err := r.db.WithContext(ctx).Model(&TaskSignalModel{}).
		Select("type, count(*) as count").
		Where("run_id = ?", runID.String()).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count signals: %w", err)
	}

	counts := make(map[task.SignalType]int, len(rows))
	for _, row := range rows {
		counts[task.SignalType(row.Type)] = row.Count
	}
	return counts, nil
}

func toSignalModel(runID uuid.UUID, s task.Signal) TaskSignalModel {
	at := s.At
	if at.IsZero() {
		at = time.Now()
	}
	return TaskSignalModel{
		ID:         uuid.New().String(),
		RunID:      runID.String(),
		Tick:       s.Tick,
		Type:       string(s.Type),
		WorkerID:   uint64(s.Worker),
		Supervisor: uint64(s.Supervisor),
		WorkItemID: uint64(s.WorkItem),
		Kind:       string(s.Kind),
		TargetID:   uint64(s.Target),
		Phase:      string(s.Phase),
		Reason:     string(s.Reason),
		At:         at.UTC(),
	}
}

func fromSignalModel(m TaskSignalModel) task.Signal {
	return task.Signal{
		Type:       task.SignalType(m.Type),
		Worker:     shared.EntityID(m.WorkerID),
		Supervisor: shared.EntityID(m.Supervisor),
		WorkItem:   shared.EntityID(m.WorkItemID),
		Kind:       work.Kind(m.Kind),
		Target:     shared.EntityID(m.TargetID),
		Phase:      task.Phase(m.Phase),
		Reason:     task.AbortReason(m.Reason),
		Tick:       m.Tick,
		At:         m.At,
	}
}
