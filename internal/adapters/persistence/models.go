package persistence

import "time"

// RunModel represents the runs table: one row per daemon or simulate session
type RunModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	Scenario  string     `gorm:"column:scenario"`
	StartedAt time.Time  `gorm:"column:started_at;not null"`
	StoppedAt *time.Time `gorm:"column:stopped_at"`
	Ticks     uint64     `gorm:"column:ticks;not null;default:0"`
}

func (RunModel) TableName() string {
	return "runs"
}

// TaskSignalModel represents the task_signals table
type TaskSignalModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	RunID      string    `gorm:"column:run_id;not null;index:idx_task_signals_run_tick,priority:1"`
	Run        *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Tick       uint64    `gorm:"column:tick;not null;index:idx_task_signals_run_tick,priority:2"`
	Type       string    `gorm:"column:type;not null;index"`
	WorkerID   uint64    `gorm:"column:worker_id;not null;index"`
	Supervisor uint64    `gorm:"column:supervisor_id"`
	WorkItemID uint64    `gorm:"column:work_item_id"`
	Kind       string    `gorm:"column:kind;not null"`
	TargetID   uint64    `gorm:"column:target_id"`
	Phase      string    `gorm:"column:phase"`
	Reason     string    `gorm:"column:reason"`
	At         time.Time `gorm:"column:at;not null"`
}

func (TaskSignalModel) TableName() string {
	return "task_signals"
}
