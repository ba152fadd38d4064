package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iliyamo/doulacare/internal/model"
)

// DSN builds a MySQL DSN.  parseTime=true maps DATETIME to time.Time and
// loc=UTC keeps stored booking times zone-free UTC.
func DSN(user, pass, host, port, name string) string {
	cfg := mysqldrv.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL, verifies the connection and wraps the pool in gorm.
func Open(user, pass, host, port, name string) (*gorm.DB, error) {
	db, err := sql.Open("mysql", DSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return gorm.Open(gormmysql.New(gormmysql.Config{Conn: db}), GormConfig())
}

// GormConfig is shared by the MySQL pool and the test databases so both
// translate duplicate-key errors and stamp rows in UTC.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}
}

// Migrate creates or updates every table the API owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Booking{},
		&model.Review{},
		&model.Favourite{},
		&model.Message{},
	)
}
