package repository

// UnitOfWork agrupa los repositorios atados a una misma transacción.
// Todo lo escrito a través de ellos se confirma o se descarta en bloque.
type UnitOfWork struct {
	Inventory InventoryRepository
	History   HistoryRepository
	Sales     SaleRepository
	Transfers TransferRepository
	Catalog   CatalogRepository
}

// AuthUnitOfWork repositorios de autenticación atados a una transacción.
type AuthUnitOfWork struct {
	Tokens RefreshTokenRepository
	Users  UserRepository
}
