package model

import (
	"time"

	"github.com/uptrace/bun"
)

type CacheUpdateTask struct {
	bun.BaseModel `bun:"cache_update_tasks,alias:cut"`

	ID           string     `bun:",pk" json:"id"`
	TaskType     string     `bun:"task_type,notnull" json:"taskType"`
	DataSource   string     `bun:"data_source,notnull" json:"dataSource"`
	Status       string     `bun:"status,notnull" json:"status"`
	UpdatedFiles int        `bun:"updated_files,notnull,default:0" json:"updatedFiles"`
	StartedAt    time.Time  `bun:"started_at,notnull" json:"startedAt"`
	CompletedAt  *time.Time `bun:"completed_at" json:"completedAt"`
	ErrorMessage *string    `bun:"error_message" json:"errorMessage"`
}
