package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// Storage drivers accepted by OpenArchive.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ArchivedEntry is one observed completion fact. The unique index spans
// the full identity tuple so replayed polls and overlapping restarts
// collapse instead of duplicating rows.
type ArchivedEntry struct {
	ID           uint      `gorm:"primaryKey"`
	Year         int       `gorm:"uniqueIndex:idx_entry_identity;not null"`
	Day          int       `gorm:"uniqueIndex:idx_entry_identity;not null"`
	Part         uint8     `gorm:"uniqueIndex:idx_entry_identity;not null"`
	MemberNumber int64     `gorm:"uniqueIndex:idx_entry_identity;not null"`
	MemberName   string    `gorm:"uniqueIndex:idx_entry_identity;size:255"`
	Rank         int       `gorm:"uniqueIndex:idx_entry_identity"`
	Timestamp    time.Time `gorm:"uniqueIndex:idx_entry_identity;not null"`
	CreatedAt    time.Time
}

// Archive is an append-only log of every completion fact the bot has
// observed. Replaying it on boot means December outages do not lose
// already announced history, and the diff against the first poll stays
// honest.
type Archive struct {
	db *gorm.DB
}

// OpenArchive connects the archive using the configured driver and
// migrates its schema.
func OpenArchive(driver, dsn string) (*Archive, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.AutoMigrate(&ArchivedEntry{}); err != nil {
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// SaveEntries appends freshly observed facts, silently skipping any the
// archive already holds.
func (a *Archive) SaveEntries(ctx context.Context, entries []aoc.Entry) error {
	if a == nil || len(entries) == 0 {
		return nil
	}
	rows := make([]ArchivedEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ArchivedEntry{
			Year:         e.Year,
			Day:          e.Day,
			Part:         uint8(e.Part),
			MemberNumber: e.Member.Number,
			MemberName:   e.Member.Name,
			Rank:         e.Rank,
			Timestamp:    e.Timestamp,
		})
	}
	if err := a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("archive entries: %w", err)
	}
	return nil
}

// Load replays the archive into a private snapshot and a global board,
// split on whether a fact carried a published rank. Global scores are
// not persisted; the next private poll repopulates them.
func (a *Archive) Load(ctx context.Context) (*aoc.Snapshot, *aoc.Leaderboard, error) {
	if a == nil {
		return aoc.NewSnapshot(), aoc.NewLeaderboard(), nil
	}
	var rows []ArchivedEntry
	if err := a.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("load archive: %w", err)
	}
	private := aoc.NewSnapshot()
	global := aoc.NewLeaderboard()
	for _, r := range rows {
		member := aoc.MemberID{Name: r.MemberName, Number: r.MemberNumber}
		entry, err := aoc.NewRankedEntry(r.Timestamp, r.Year, r.Day, aoc.Part(r.Part), member, r.Rank)
		if err != nil {
			return nil, nil, fmt.Errorf("archived row %d: %w", r.ID, err)
		}
		if entry.Rank > 0 {
			global.Add(entry)
			continue
		}
		private.Board.Add(entry)
	}
	return private, global, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
