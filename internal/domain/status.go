package domain

// Status описывает жизненный цикл продажи и её позиций.
// Один тип используется и для Sale, и для SaleItem: позиции проходят
// только через подмножество Active → Deleted.
type Status string

const (
	// StatusActive — продажа создана и может изменяться.
	StatusActive Status = "active"
	// StatusCompleted — продажа завершена внешним процессом; отмена и удаление запрещены.
	StatusCompleted Status = "completed"
	// StatusCancelled — продажа отменена до завершения.
	// Значение обязано отличаться от StatusCompleted: это разные бизнес-исходы.
	StatusCancelled Status = "cancelled"
	// StatusDeleted — логическое удаление; запись сохраняется для истории.
	StatusDeleted Status = "deleted"
)
