package main

import (
	"os"

	"go-lms/internal/employee"
	"go-lms/internal/leave"
	"go-lms/internal/shared/connection"
	"go-lms/internal/shared/counter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultBalances is the leave entitlement granted to every new employee, in
// days per leave type.
var defaultBalances = map[string]int{
	"Annual":      20,
	"Sick":        12,
	"Maternity":   130,
	"Paternity":   20,
	"Casual":      6,
	"Bereavement": 5,
	"Marriage":    5,
	"WFH":         24,
}

var seedEmployees = []employee.Employee{
	{ID: 1001, Name: "John Doe", Email: "john.doe@example.com", Department: "Engineering"},
	{ID: 1002, Name: "Jane Smith", Email: "jane.smith@example.com", Department: "HR"},
	{ID: 1003, Name: "Michael Johnson", Email: "michael.johnson@example.com", Department: "Finance"},
	{ID: 1004, Name: "Emily Davis", Email: "emily.davis@example.com", Department: "Marketing"},
	{ID: 1005, Name: "Robert Wilson", Email: "robert.wilson@example.com", Department: "Engineering"},
}

const outboxTableDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id UUID PRIMARY KEY,
	request_id TEXT,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	topic TEXT NOT NULL,
	payload JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	next_retry_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	log := logger.Named("cmd.seed")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		log.Fatal("connect database failed", zap.Error(err))
	}

	if err := migrate(gormDB); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}
	log.Info("schema migrated")

	if err := seed(gormDB); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed data loaded", zap.Int("employees", len(seedEmployees)))
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&employee.LeaveBalance{},
		&leave.LeaveRequest{},
		&counter.Counter{},
	); err != nil {
		return err
	}
	return db.Exec(outboxTableDDL).Error
}

// seed is idempotent, existing rows are left untouched.
func seed(db *gorm.DB) error {
	for _, emp := range seedEmployees {
		e := emp
		for leaveType, days := range defaultBalances {
			e.Balances = append(e.Balances, employee.LeaveBalance{
				EmployeeID: e.ID,
				LeaveType:  leaveType,
				Days:       days,
			})
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&e).Error; err != nil {
			return err
		}
	}

	// Start leave request ids well above the sample employee id range.
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter.Counter{
		CounterType: counter.TypeLeaveRequest,
		LastValue:   10000,
	}).Error
}
