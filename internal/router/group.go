// Package router описывает группы маршрутов с неизменяемым префиксом и
// их монтирование на gin.Engine. Обработчики добавляются в группу явными
// вызовами Handle/GET/POST/..., порядок импорта пакетов ни на что не влияет.
package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Route - один маршрут группы: метод, путь относительно префикса и обработчики
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// Group - именованный набор обработчиков под одним префиксом
type Group struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []Route
	errs       []error
}

// NewGroup создает группу. Префикс фиксируется здесь и дальше не меняется.
func NewGroup(name, prefix string) *Group {
	g := &Group{name: name, prefix: prefix}
	if !strings.HasPrefix(prefix, "/") {
		g.errs = append(g.errs, fmt.Errorf("group %q: prefix %q must start with '/'", name, prefix))
	}
	if len(prefix) > 1 && strings.HasSuffix(prefix, "/") {
		g.errs = append(g.errs, fmt.Errorf("group %q: prefix %q must not end with '/'", name, prefix))
	}
	return g
}

// Name возвращает имя группы
func (g *Group) Name() string { return g.name }

// Prefix возвращает префикс группы
func (g *Group) Prefix() string { return g.prefix }

// Use добавляет middleware, общие для всех маршрутов группы
func (g *Group) Use(middleware ...gin.HandlerFunc) *Group {
	g.middleware = append(g.middleware, middleware...)
	return g
}

// Handle добавляет маршрут. path пустой (корень группы) или начинается с '/'.
func (g *Group) Handle(method, path string, handlers ...gin.HandlerFunc) *Group {
	switch {
	case path != "" && !strings.HasPrefix(path, "/"):
		g.errs = append(g.errs, fmt.Errorf("group %q: path %q must start with '/'", g.name, path))
		return g
	case len(handlers) == 0:
		g.errs = append(g.errs, fmt.Errorf("group %q: %s %q has no handlers", g.name, method, path))
		return g
	}
	g.routes = append(g.routes, Route{Method: strings.ToUpper(method), Path: path, Handlers: handlers})
	return g
}

// GET добавляет GET-маршрут
func (g *Group) GET(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, path, handlers...)
}

// POST добавляет POST-маршрут
func (g *Group) POST(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, path, handlers...)
}

// PUT добавляет PUT-маршрут
func (g *Group) PUT(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPut, path, handlers...)
}

// DELETE добавляет DELETE-маршрут
func (g *Group) DELETE(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodDelete, path, handlers...)
}

// Routes возвращает копию списка маршрутов
func (g *Group) Routes() []Route {
	out := make([]Route, len(g.routes))
	copy(out, g.routes)
	return out
}

// FullPath возвращает полный путь маршрута с учетом префикса
func (g *Group) FullPath(path string) string {
	if g.prefix == "/" && path != "" {
		return path
	}
	return g.prefix + path
}
