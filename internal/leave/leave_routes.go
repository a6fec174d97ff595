package leave

import (
	"go-lms/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	leaves := r.Group("/leaves")
	{
		leaves.GET("", handler.GetAll)
		leaves.GET("/pending", handler.GetPending)
		leaves.GET("/:id", handler.GetByID)
		leaves.POST("", middleware.Idempotency(rdb), handler.Apply)
		leaves.POST("/cancel", handler.Cancel)
		leaves.POST("/:id/approve", handler.Approve)
		leaves.POST("/:id/reject", handler.Reject)
	}
}
