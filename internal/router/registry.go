package router

import "github.com/gin-gonic/gin"

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	Pages       *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	pageModules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{
		Engine: engine,
		API:    engine.Group("/api"),
		Pages:  engine.Group("/u"),
	}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// AddPages registers a module on the public /u group instead of /api.
func (r *Registry) AddPages(mod Module) {
	r.pageModules = append(r.pageModules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
		r.Pages.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	for _, m := range r.pageModules {
		m.Register(r.Pages)
	}
}
