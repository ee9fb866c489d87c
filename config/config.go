package config

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onmax/lingai/models"
)

var DB *gorm.DB

func InitDB() {
	// Đường dẫn file SQLite, mặc định ./data/lingai.db
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/lingai.db"
	}

	// Bật foreign keys cho SQLite (mặc định tắt)
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Không thể kết nối database:", err)
	}

	DB = db

	// Lấy *sql.DB để config connection pooling.
	// SQLite chỉ nên có 1 writer nên giữ pool nhỏ.
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Không thể lấy sql.DB từ gorm:", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(DB); err != nil {
		log.Fatal("autoMigrate lỗi: ", err)
	}
	log.Println("SQLite connected & migrated successfully!")
}

// Migrate chạy AutoMigrate cho toàn bộ models (tách riêng để test dùng lại).
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.UserTopic{},
		&models.Lesson{},
		&models.Sentence{},
		&models.SentenceProgress{},
		&models.GenerationJob{},
	)
}
