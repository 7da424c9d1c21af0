package db

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/floorwarden/warden/internal/models"
)

var conn *gorm.DB

// Init opens the database named by dsn. A postgres:// DSN selects Postgres;
// anything else is treated as a SQLite file path.
func Init(dsn string) error {
	var err error
	if isPostgres(dsn) {
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err != nil {
			return err
		}
	} else {
		conn, err = gorm.Open(sqlite.Open(sqliteDSN(dsn)), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err != nil {
			return err
		}
		// SQLite works best with a single writer; cap the pool accordingly.
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := conn.AutoMigrate(
		&models.User{},
		&models.Floor{},
		&models.FloorLeader{},
		&models.Student{},
		&models.AttendanceSession{},
		&models.AttendanceRecord{},
		&models.Collection{},
		&models.Payment{},
		&models.Announcement{},
		&models.AnnouncementRead{},
		&models.Request{},
		&models.DutyAssignment{},
		&models.TelegramUser{},
		&models.LinkCode{},
	); err != nil {
		return err
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_students_floor_active ON students(floor_id, is_deleted)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_payments_student_paid ON payments(student_id, is_paid)")

	log.Printf("database ready (%s)", conn.Dialector.Name())
	return nil
}

func Conn() *gorm.DB {
	return conn
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}
