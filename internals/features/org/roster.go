// internals/features/org/roster.go
//
// Thin adapter over the surrounding application's department membership data.
// The scheduling engine only reads the roster; membership CRUD lives elsewhere.
package org

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type RosterMember struct {
	StaffID uuid.UUID `gorm:"column:department_staff_user_id" json:"staff_id"`
	Name    string    `gorm:"column:department_staff_name"    json:"name"`
	Role    string    `gorm:"column:department_staff_role"    json:"role"`
}

// RosterProvider is the engine-facing contract; failures must surface so the
// eligibility resolver can fail closed instead of working from stale data.
type RosterProvider interface {
	DepartmentRoster(ctx context.Context, departmentID uuid.UUID, roles []string) ([]RosterMember, error)
}

type gormRosterProvider struct {
	db *gorm.DB
}

func NewRosterProvider(db *gorm.DB) RosterProvider {
	return &gormRosterProvider{db: db}
}

func (p *gormRosterProvider) DepartmentRoster(ctx context.Context, departmentID uuid.UUID, roles []string) ([]RosterMember, error) {
	var members []RosterMember
	q := p.db.WithContext(ctx).
		Table("department_staff").
		Select("department_staff_user_id, department_staff_name, department_staff_role").
		Where("department_staff_department_id = ?", departmentID)
	if len(roles) > 0 {
		q = q.Where("department_staff_role = ANY(?)", pq.Array(roles))
	}
	if err := q.Order("department_staff_name ASC").Scan(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
