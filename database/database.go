package database

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/talait/talaitbot/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrNoActiveChallenge = errors.New("no active challenge")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrAlreadySubmitted  = errors.New("ticket already submitted")
	ErrMemberNotFound    = errors.New("member not found")
)

type Database struct {
	conn *gorm.DB
	log  *logrus.Logger
}

func OpenDatabase(path string, logger *logrus.Logger) (*Database, error) {
	lgr, err := Zap()
	if err != nil {
		return nil, fmt.Errorf("failed to create query logger: %w", err)
	}
	defer func() { _ = lgr.Sync() }()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 NewGORMLogger(lgr),
		SkipDefaultTransaction: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	err = db.AutoMigrate(
		&models.Challenge{},
		&models.Submission{},
		&models.Ticket{},
		&models.Member{},
		&models.WeeklyXP{},
		&models.Badge{},
		&models.HallOfFameEntry{},
		&models.Guild{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Database{db, logger}, nil
}

func (db *Database) Close() error {
	conn, err := db.conn.DB()
	if err != nil {
		return err
	}
	return conn.Close()
}

// Guilds returns the IDs of all guilds that have leaderboard data.
func (db *Database) Guilds() ([]string, error) {
	var guilds []string
	if err := db.conn.Model(&models.Member{}).Distinct("guild_id").Pluck("guild_id", &guilds).Error; err != nil {
		db.log.Errorln("Failed to list guilds:", err)
		return nil, err
	}
	return guilds, nil
}
