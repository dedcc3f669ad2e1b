package repository

// TxRepositories repositorios ligados a una misma unidad de trabajo.
// Todo lo escrito a través de ellos se confirma o se revierte junto.
type TxRepositories struct {
	Products  ProductRepository
	Stock     StockRepository
	Movements StockMovementRepository
	Invoices  InvoiceRepository
	Receipts  StockReceiptRepository
	Users     UserRepository
}
