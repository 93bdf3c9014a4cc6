package specification

import (
	"fmt"

	"knowledgebase-be/internal/entity"

	"gorm.io/gorm"
)

// ByID filters by item ID
type ByID struct {
	ID entity.ItemID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID.Int64())
}

// ByIDs filters by a list of item IDs
type ByIDs struct {
	IDs []entity.ItemID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	ids := make([]int64, len(s.IDs))
	for i, id := range s.IDs {
		ids[i] = id.Int64()
	}
	return db.Where("id IN ?", ids)
}

// UserOwnedBy scopes a query to a single owner. Owner scoping is absolute:
// every repository read in this codebase goes through it.
type UserOwnedBy struct {
	UserID entity.UserID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID.Int64())
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
