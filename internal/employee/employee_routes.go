package employee

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	{
		employees.POST("", handler.Create)
		employees.GET("/:id/balance", handler.GetBalance)
	}
}
