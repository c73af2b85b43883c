package repository

// TxRepos agrupa los repositorios atados a una misma transacción de BD.
// Todo lo que se escriba a través de ellos se confirma o se descarta junto.
type TxRepos struct {
	Items       ItemRepository
	Warehouses  WarehouseRepository
	Withdrawals WithdrawalRepository
	History     HistoryRepository
	Users       UserRepository
}
