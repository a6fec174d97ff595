package app

import (
	"database/sql"
	"os"

	"go-lms/internal/employee"
	"go-lms/internal/leave"
	"go-lms/internal/messaging/kafka"
	"go-lms/internal/middleware"
	"go-lms/internal/notification"
	"go-lms/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	ledger := employee.NewLedger(employeeRepo, rdb)
	employeeService := employee.NewService(employeeRepo, rdb)
	leaveService := leave.NewService(db, leaveRepo, ledger, counterRepo, outboxRepo)
	notificationService := notification.NewService(
		leaveRepo,
		outboxRepo,
		notification.NewLogSender(),
		notification.Config{
			ApproverEmail: os.Getenv("APPROVER_EMAIL"),
			EmployeeEmail: os.Getenv("EMPLOYEE_EMAIL"),
		},
	)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb)
	notificationHandler := notification.NewHandler(notificationService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(20, 40))
	{
		employee.RegisterRoutes(api, employeeHandler)
		leave.RegisterRoutes(api, leaveHandler, rdb)
		notification.RegisterRoutes(api, notificationHandler)
	}

	return nil
}
