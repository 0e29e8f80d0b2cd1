package store

import "time"

// CredentialRecord is a user's encrypted API key for one provider.
type CredentialRecord struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"-" gorm:"column:user_id;not null;uniqueIndex:idx_user_provider"`
	Provider     string     `json:"provider" gorm:"not null;uniqueIndex:idx_user_provider"`
	EncryptedKey string     `json:"-" gorm:"column:encrypted_api_key;not null"`
	IsActive     bool       `json:"is_active" gorm:"column:is_active;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// TableName specifies the table name for CredentialRecord
func (CredentialRecord) TableName() string {
	return "user_api_keys"
}

// TranslationRecord is one entry of a user's translation history.
type TranslationRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"-" gorm:"column:user_id;not null;index:idx_history_user_created,priority:1"`
	SourceText     string    `json:"source_text" gorm:"not null"`
	TranslatedText string    `json:"translated_text" gorm:"not null"`
	SourceLang     string    `json:"source_lang" gorm:"size:10"`
	TargetLang     string    `json:"target_lang" gorm:"size:10;index"`
	Provider       string    `json:"provider" gorm:"size:50"`
	Cached         bool      `json:"cached"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_history_user_created,priority:2"`
}

// TableName specifies the table name for TranslationRecord
func (TranslationRecord) TableName() string {
	return "translation_history"
}

// UserStats summarizes a user's history.
type UserStats struct {
	TotalTranslations int64   `json:"total_translations"`
	TranslationsToday int64   `json:"translations_today"`
	MostUsedLanguage  *string `json:"most_used_language"`
	TotalCharacters   int64   `json:"total_characters_translated"`
}

// HistoryQuery selects a page of history.
type HistoryQuery struct {
	Limit      int
	Offset     int
	TargetLang string // optional filter
}
