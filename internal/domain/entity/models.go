package entity

// Models возвращает все сущности, которые хранятся в БД.
// Порядок важен для AutoMigrate: Topic раньше Question из-за внешнего ключа.
func Models() []interface{} {
	return []interface{}{
		&Topic{},
		&Question{},
	}
}
