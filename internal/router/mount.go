package router

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
)

// ErrDuplicateRoute возвращается, если пара (метод, путь) регистрируется повторно
var ErrDuplicateRoute = errors.New("duplicate route")

// Mount регистрирует группы на движке. Любая ошибка сборки (повтор маршрута,
// некорректный префикс, конфликт шаблонов gin) возвращается до начала обслуживания.
func Mount(engine *gin.Engine, groups ...*Group) (err error) {
	seen := make(map[string]string)
	for _, r := range engine.Routes() {
		seen[r.Method+" "+r.Path] = "engine"
	}

	// Сначала проверяем все группы, чтобы не оставить движок наполовину собранным
	for _, g := range groups {
		if len(g.errs) > 0 {
			return errors.Join(g.errs...)
		}
		for _, r := range g.routes {
			key := r.Method + " " + g.FullPath(r.Path)
			if owner, ok := seen[key]; ok {
				return fmt.Errorf("%w: %s (group %q, already registered by %q)", ErrDuplicateRoute, key, g.name, owner)
			}
			seen[key] = g.name
		}
	}

	// gin сообщает о конфликтах шаблонов паникой
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("route registration failed: %v", rec)
		}
	}()

	for _, g := range groups {
		rg := engine.Group(g.prefix, g.middleware...)
		for _, r := range g.routes {
			rg.Handle(r.Method, r.Path, r.Handlers...)
		}
	}
	return nil
}
