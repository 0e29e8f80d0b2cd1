package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/transcache"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_Ping(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
	assert.True(t, s.DB().Migrator().HasTable("user_api_keys"))
	assert.True(t, s.DB().Migrator().HasTable("translation_history"))
}

func TestActiveCredential_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ActiveCredential(context.Background(), "u1", "deepl")
	require.ErrorIs(t, err, transcache.ErrCredentialNotFound)
}

func TestSaveCredential_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveCredential(ctx, "u1", "deepl", "cipher-1", nil)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	require.NoError(t, s.DeactivateCredential(ctx, "u1", "deepl"))
	_, err = s.ActiveCredential(ctx, "u1", "deepl")
	require.ErrorIs(t, err, transcache.ErrCredentialNotFound)

	second, err := s.SaveCredential(ctx, "u1", "deepl", "cipher-2", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsActive)

	got, err := s.ActiveCredential(ctx, "u1", "deepl")
	require.NoError(t, err)
	assert.Equal(t, "cipher-2", got)

	recs, err := s.ListCredentials(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestActiveCredential_Expired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	_, err := s.SaveCredential(ctx, "u1", "openai", "cipher", &past)
	require.NoError(t, err)

	_, err = s.ActiveCredential(ctx, "u1", "openai")
	require.ErrorIs(t, err, transcache.ErrCredentialNotFound)

	future := time.Now().UTC().Add(time.Hour)
	_, err = s.SaveCredential(ctx, "u1", "openai", "cipher", &future)
	require.NoError(t, err)

	got, err := s.ActiveCredential(ctx, "u1", "openai")
	require.NoError(t, err)
	assert.Equal(t, "cipher", got)
}

func TestCredentials_PerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveCredential(ctx, "u1", "openai", "a", nil)
	require.NoError(t, err)
	_, err = s.SaveCredential(ctx, "u1", "deepl", "b", nil)
	require.NoError(t, err)
	_, err = s.SaveCredential(ctx, "u2", "deepl", "c", nil)
	require.NoError(t, err)

	recs, err := s.ListCredentials(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "deepl", recs[0].Provider)
	assert.Equal(t, "openai", recs[1].Provider)

	got, err := s.ActiveCredential(ctx, "u2", "deepl")
	require.NoError(t, err)
	assert.Equal(t, "c", got)
}

func TestDeleteCredential(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveCredential(ctx, "u1", "deepl", "a", nil)
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteCredential(ctx, "u2", "deepl"), ErrNotFound)
	require.NoError(t, s.DeleteCredential(ctx, "u1", "deepl"))
	require.ErrorIs(t, s.DeleteCredential(ctx, "u1", "deepl"), ErrNotFound)

	recs, err := s.ListCredentials(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTouchCredential(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveCredential(ctx, "u1", "deepl", "a", nil)
	require.NoError(t, err)
	require.NoError(t, s.TouchCredential(ctx, "u1", "deepl"))

	recs, err := s.ListCredentials(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotNil(t, recs[0].LastUsed)
}

func seedHistory(t *testing.T, s *Store, userID string, langs ...string) {
	t.Helper()
	for _, lang := range langs {
		require.NoError(t, s.SaveTranslation(context.Background(), &TranslationRecord{
			UserID:         userID,
			SourceText:     "hello",
			TranslatedText: "x",
			SourceLang:     "en",
			TargetLang:     lang,
			Provider:       "mymemory",
		}))
	}
}

func TestHistory_Paging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedHistory(t, s, "u1", "zh", "de", "zh", "fr", "zh")
	seedHistory(t, s, "u2", "zh")

	recs, total, err := s.History(ctx, "u1", HistoryQuery{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, recs, 2)
	// newest first
	assert.Greater(t, recs[0].ID, recs[1].ID)

	recs, total, err = s.History(ctx, "u1", HistoryQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, recs, 1)

	recs, total, err = s.History(ctx, "u1", HistoryQuery{TargetLang: "zh"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, recs, 3)
}

func TestHistory_LimitClamped(t *testing.T) {
	s := newTestStore(t)
	seedHistory(t, s, "u1", "zh")

	recs, total, err := s.History(context.Background(), "u1", HistoryQuery{Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, recs, 1)
}

func TestDeleteTranslation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedHistory(t, s, "u1", "zh")

	recs, _, err := s.History(ctx, "u1", HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	id := recs[0].ID

	err = s.DeleteTranslation(ctx, "u2", id)
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.DeleteTranslation(ctx, "u1", id))
	require.ErrorIs(t, s.DeleteTranslation(ctx, "u1", id), ErrNotFound)
}

func TestUserStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.UserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTranslations)
	assert.Nil(t, stats.MostUsedLanguage)
	assert.Zero(t, stats.TotalCharacters)

	seedHistory(t, s, "u1", "zh", "de", "zh")
	// yesterday's record counts toward totals but not today
	require.NoError(t, s.SaveTranslation(ctx, &TranslationRecord{
		UserID:         "u1",
		SourceText:     "goodbye",
		TranslatedText: "再见",
		SourceLang:     "en",
		TargetLang:     "de",
		CreatedAt:      time.Now().UTC().Add(-48 * time.Hour),
	}))
	seedHistory(t, s, "u2", "fr", "fr", "fr", "fr")

	stats, err = s.UserStats(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalTranslations)
	assert.EqualValues(t, 3, stats.TranslationsToday)
	require.NotNil(t, stats.MostUsedLanguage)
	// zh and de tie on count; ties break alphabetically
	assert.Equal(t, "de", *stats.MostUsedLanguage)
	assert.EqualValues(t, 3*len("hello")+len("goodbye"), stats.TotalCharacters)
}
