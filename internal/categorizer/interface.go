package categorizer

import "github.com/dwarvesf/crypto-bookkeeper/internal/model"

type ICategorizer interface {
	// Categorize returns the category and direction of record as seen by
	// userAddress. The record is not modified.
	Categorize(record *model.TransactionRecord, userAddress string) (model.Category, model.Direction)
	// CategorizeAll sets Category and Direction on every record and returns
	// how many records landed in each category.
	CategorizeAll(records []*model.TransactionRecord, userAddress string) map[model.Category]int
}
