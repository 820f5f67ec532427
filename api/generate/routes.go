package generate

import (
	"github.com/gin-gonic/gin"
	"github.com/podforge/podforge-api/api/types"
)

// RegisterRoutes registers generation routes
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies) {
	group.POST("", Post(deps))
}
