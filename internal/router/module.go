package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that can register its routes on a RouterGroup.
// Modules are registered in the order they were added to the Registry.
type Module interface {
	Register(rg *gin.RouterGroup)
}
