// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/model"
)

// RosterRepository 员工名单仓储
type RosterRepository struct {
	db DB
}

// NewRosterRepository 创建名单仓储
func NewRosterRepository(db DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// Create 创建名单
func (r *RosterRepository) Create(ctx context.Context, roster *model.Roster) error {
	if roster.ID == uuid.Nil {
		roster.ID = uuid.New()
	}
	now := time.Now()
	roster.CreatedAt = now
	roster.UpdatedAt = now

	dayJSON, _ := json.Marshal(roster.Day)
	workersJSON, _ := json.Marshal(roster.Workers)

	query := `
		INSERT INTO rosters (id, name, note, day, workers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		roster.ID, roster.Name, roster.Note, dayJSON, workersJSON,
		roster.CreatedAt, roster.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建名单失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取名单
func (r *RosterRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Roster, error) {
	query := `
		SELECT id, name, note, day, workers, created_at, updated_at
		FROM rosters
		WHERE id = $1
	`

	roster, err := r.scanRoster(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("名单", id.String())
	}
	return roster, err
}

// List 分页列出名单，支持按名称模糊搜索
func (r *RosterRepository) List(ctx context.Context, filter ListFilter) ([]*model.Roster, int, error) {
	where := ""
	args := []interface{}{}
	if filter.Search != "" {
		where = "WHERE name ILIKE $1"
		args = append(args, "%"+filter.Search+"%")
	}

	countQuery := "SELECT COUNT(*) FROM rosters " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计名单失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy != "name" && orderBy != "updated_at" {
		orderBy = "created_at"
	}
	orderDir := "DESC"
	if filter.OrderDir == "asc" {
		orderDir = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, name, note, day, workers, created_at, updated_at
		FROM rosters %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, orderDir, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询名单失败: %w", err)
	}
	defer rows.Close()

	var rosters []*model.Roster
	for rows.Next() {
		roster, err := r.scanRoster(rows)
		if err != nil {
			return nil, 0, err
		}
		rosters = append(rosters, roster)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("遍历名单失败: %w", err)
	}

	return rosters, total, nil
}

// Update 更新名单
func (r *RosterRepository) Update(ctx context.Context, roster *model.Roster) error {
	roster.UpdatedAt = time.Now()

	dayJSON, _ := json.Marshal(roster.Day)
	workersJSON, _ := json.Marshal(roster.Workers)

	query := `
		UPDATE rosters SET
			name = $2, note = $3, day = $4, workers = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		roster.ID, roster.Name, roster.Note, dayJSON, workersJSON, roster.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新名单失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("名单", roster.ID.String())
	}

	return nil
}

// Delete 删除名单
func (r *RosterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rosters WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("删除名单失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("名单", id.String())
	}

	return nil
}

// scanRoster 扫描单行名单记录
func (r *RosterRepository) scanRoster(s Scanner) (*model.Roster, error) {
	var roster model.Roster
	var dayJSON, workersJSON []byte

	err := s.Scan(
		&roster.ID, &roster.Name, &roster.Note,
		&dayJSON, &workersJSON,
		&roster.CreatedAt, &roster.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("扫描名单记录失败: %w", err)
	}

	if err := json.Unmarshal(dayJSON, &roster.Day); err != nil {
		return nil, fmt.Errorf("解析营业日参数失败: %w", err)
	}
	if err := json.Unmarshal(workersJSON, &roster.Workers); err != nil {
		return nil, fmt.Errorf("解析员工列表失败: %w", err)
	}

	return &roster, nil
}
