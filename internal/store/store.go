package store

import (
	"github.com/dwarvesf/crypto-bookkeeper/internal/store/account"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store/accountaimapping"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store/accountcategory"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store/cryptoasset"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store/journalentry"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store/transaction"
)

type Store struct {
	Transaction      transaction.IStore
	JournalEntry     journalentry.IStore
	Account          account.IStore
	AccountCategory  accountcategory.IStore
	CryptoAsset      cryptoasset.IStore
	AccountAIMapping accountaimapping.IStore
}

func New() *Store {
	return &Store{
		Transaction:      transaction.New(),
		JournalEntry:     journalentry.New(),
		Account:          account.New(),
		AccountCategory:  accountcategory.New(),
		CryptoAsset:      cryptoasset.New(),
		AccountAIMapping: accountaimapping.New(),
	}
}
