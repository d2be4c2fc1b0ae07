package repository

import "gorm.io/gorm"

// Atomic runs fn inside a database transaction. Repositories are rebound
// onto the transaction with WithTx so a multi-aggregate step (balance
// update + entry write) commits or rolls back as one unit.
func Atomic(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}
