package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/repositories"
)

// getDB returns the transaction handle when one is passed, the base
// connection otherwise. Every repository method routes through this so
// the same instance works inside and outside WithTransaction.
func getDB(base, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return base
}

// translateError maps gorm sentinel errors onto the repository error
// vocabulary.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}

// applyPaginationAndSort applies pagination and sorting with a column
// whitelist so caller input never reaches the ORDER BY clause raw.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at":     true,
		"updated_at":     true,
		"name":           true,
		"question_type":  true,
		"hardness_level": true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
