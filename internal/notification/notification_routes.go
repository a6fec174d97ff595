package notification

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("/:leaveId", handler.Status)
		notifications.POST("/:leaveId/resend", handler.Resend)
	}
}
