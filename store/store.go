// Package store persists translation history and encrypted user API keys.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ZaguanLabs/transcache"
)

// ErrNotFound is returned when a record does not exist or belongs to another user.
var ErrNotFound = errors.New("record not found")

// History page limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Store is the durable record store backed by gorm.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ transcache.CredentialStore = (*Store)(nil)

// Open connects to a SQLite database (pure Go driver, no CGO) and migrates
// the schema. ":memory:" gives a private in-memory database.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if dsn == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return New(db)
}

// New wraps an existing gorm connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&CredentialRecord{}, &TranslationRecord{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ActiveCredential implements transcache.CredentialStore.
func (s *Store) ActiveCredential(ctx context.Context, userID, provider string) (string, error) {
	var rec CredentialRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ? AND is_active = ?", userID, provider, true).
		Where("(expires_at IS NULL OR expires_at > ?)", s.now()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", transcache.ErrCredentialNotFound
	}
	if err != nil {
		return "", err
	}
	return rec.EncryptedKey, nil
}

// SaveCredential stores or replaces the key for (userID, provider) and
// re-activates it.
func (s *Store) SaveCredential(ctx context.Context, userID, provider, ciphertext string, expiresAt *time.Time) (*CredentialRecord, error) {
	var rec CredentialRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND provider = ?", userID, provider).
			First(&rec).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec = CredentialRecord{
				UserID:       userID,
				Provider:     provider,
				EncryptedKey: ciphertext,
				IsActive:     true,
				ExpiresAt:    expiresAt,
			}
			return tx.Create(&rec).Error
		case err != nil:
			return err
		}

		rec.EncryptedKey = ciphertext
		rec.IsActive = true
		rec.ExpiresAt = expiresAt
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListCredentials returns every key record of a user, ordered by provider.
func (s *Store) ListCredentials(ctx context.Context, userID string) ([]CredentialRecord, error) {
	var recs []CredentialRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("provider").
		Find(&recs).Error
	return recs, err
}

// DeleteCredential removes the key for (userID, provider).
func (s *Store) DeleteCredential(ctx context.Context, userID, provider string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&CredentialRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateCredential keeps the record but stops it from being used.
func (s *Store) DeactivateCredential(ctx context.Context, userID, provider string) error {
	res := s.db.WithContext(ctx).Model(&CredentialRecord{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchCredential records that a stored key was just used.
func (s *Store) TouchCredential(ctx context.Context, userID, provider string) error {
	return s.db.WithContext(ctx).Model(&CredentialRecord{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Update("last_used", s.now()).Error
}

// SaveTranslation appends a history record.
func (s *Store) SaveTranslation(ctx context.Context, rec *TranslationRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

// History returns a page of a user's translations, newest first, and the
// total number of matching records.
func (s *Store) History(ctx context.Context, userID string, q HistoryQuery) ([]TranslationRecord, int64, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit > MaxHistoryLimit {
		q.Limit = MaxHistoryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	base := s.db.WithContext(ctx).Model(&TranslationRecord{}).Where("user_id = ?", userID)
	if q.TargetLang != "" {
		base = base.Where("target_lang = ?", q.TargetLang)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []TranslationRecord
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").Order("id DESC").
		Limit(q.Limit).Offset(q.Offset).
		Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}

// DeleteTranslation removes one of the user's history records.
func (s *Store) DeleteTranslation(ctx context.Context, userID string, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&TranslationRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UserStats aggregates a user's history. "Today" starts at midnight UTC.
func (s *Store) UserStats(ctx context.Context, userID string) (UserStats, error) {
	var stats UserStats
	db := s.db.WithContext(ctx).Model(&TranslationRecord{})

	if err := db.Session(&gorm.Session{}).Where("user_id = ?", userID).Count(&stats.TotalTranslations).Error; err != nil {
		return stats, err
	}

	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := db.Session(&gorm.Session{}).
		Where("user_id = ? AND created_at >= ?", userID, todayStart).
		Count(&stats.TranslationsToday).Error; err != nil {
		return stats, err
	}

	var top []struct {
		TargetLang string
		N          int64
	}
	if err := db.Session(&gorm.Session{}).
		Select("target_lang, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("target_lang").
		Order("n DESC").Order("target_lang").
		Limit(1).
		Scan(&top).Error; err != nil {
		return stats, err
	}
	if len(top) > 0 {
		lang := top[0].TargetLang
		stats.MostUsedLanguage = &lang
	}

	row := db.Session(&gorm.Session{}).
		Select("COALESCE(SUM(LENGTH(source_text)), 0)").
		Where("user_id = ?", userID).
		Row()
	if err := row.Scan(&stats.TotalCharacters); err != nil {
		return stats, err
	}

	return stats, nil
}
