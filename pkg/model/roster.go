// Package model 定义排班求解引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Roster 命名的员工名单，可保存复用。
// 连同营业日参数一起即构成一次求解的完整输入。
type Roster struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Note      string    `json:"note,omitempty" db:"note"`
	Day       DayConfig `json:"day" db:"day"`
	Workers   []Worker  `json:"workers" db:"workers"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewRoster 创建带新ID的名单
func NewRoster(name string, day DayConfig, workers []Worker) *Roster {
	now := time.Now()
	return &Roster{
		ID:        uuid.New(),
		Name:      name,
		Day:       day,
		Workers:   workers,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
