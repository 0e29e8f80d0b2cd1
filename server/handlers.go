package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/transcache"
	"github.com/ZaguanLabs/transcache/store"
)

// TranslateRequest is the body of POST /api/v1/translate.
type TranslateRequest struct {
	Text       string `json:"text" binding:"required"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Provider   string `json:"provider"`
}

// TranslateResponse is the reply of POST /api/v1/translate.
type TranslateResponse struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	Provider       string `json:"provider"`
	Cached         bool   `json:"cached"`
	RequestCount   *int64 `json:"request_count,omitempty"`
}

// BatchRequest is the body of POST /api/v1/translate/batch.
type BatchRequest struct {
	Requests []TranslateRequest `json:"requests" binding:"required,min=1,dive"`
}

// AddAPIKeyRequest is the body of POST /api/v1/user/api-keys.
type AddAPIKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": transcache.Description,
		"name":    transcache.Name,
		"version": transcache.Version,
		"health":  "/health",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	checks := gin.H{}
	if s.cache != nil {
		checks["cache"] = "ok"
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			status = "degraded"
		}
	}
	if s.records != nil {
		checks["database"] = "ok"
		if err := s.records.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"app_name":  transcache.Name,
		"checks":    checks,
	})
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_REQUEST"})
		return
	}

	userID := c.GetString(ctxUserID)
	res, err := s.svc.Translate(c.Request.Context(), s.toServiceRequest(req, userID))
	if err != nil {
		respondError(c, err)
		return
	}

	s.record(c, userID, res)
	c.JSON(http.StatusOK, toResponse(res))
}

func (s *Server) handleTranslateBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_REQUEST"})
		return
	}
	if len(req.Requests) > MaxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "at most " + strconv.Itoa(MaxBatchSize) + " requests per batch",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	userID := c.GetString(ctxUserID)
	reqs := make([]transcache.Request, len(req.Requests))
	for i, r := range req.Requests {
		reqs[i] = s.toServiceRequest(r, userID)
	}

	results := s.svc.TranslateBatch(c.Request.Context(), reqs, 0)

	items := make([]gin.H, len(results))
	for i, br := range results {
		if br.Err != nil {
			items[i] = gin.H{"error": errorBody(br.Err)}
			continue
		}
		s.record(c, userID, br.Result)
		items[i] = gin.H{"result": toResponse(br.Result)}
	}

	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (s *Server) handleProviders(c *gin.Context) {
	router := s.svc.Router()
	names := router.Providers()
	out := make([]gin.H, len(names))
	for i, name := range names {
		out[i] = gin.H{
			"name":                  name,
			"accepts_user_api_keys": router.AcceptsUserCredentials(name),
		}
	}
	c.JSON(http.StatusOK, gin.H{"providers": out})
}

func (s *Server) handleCacheStats(c *gin.Context) {
	if s.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not configured", "code": "UNAVAILABLE"})
		return
	}
	c.JSON(http.StatusOK, s.cache.Stats(c.Request.Context()))
}

func (s *Server) handleHistory(c *gin.Context) {
	if !s.requireRecords(c) {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultHistoryLimit)))
	if err != nil || limit < 1 || limit > store.MaxHistoryLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100", "code": "INVALID_REQUEST"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer", "code": "INVALID_REQUEST"})
		return
	}

	recs, total, err := s.records.History(c.Request.Context(), c.GetString(ctxUserID), store.HistoryQuery{
		Limit:      limit,
		Offset:     offset,
		TargetLang: transcache.NormalizeLang(c.Query("target_lang")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if recs == nil {
		recs = []store.TranslationRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"total": total, "translations": recs})
}

func (s *Server) handleDeleteHistory(c *gin.Context) {
	if !s.requireRecords(c) {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid translation id", "code": "INVALID_REQUEST"})
		return
	}

	err = s.records.DeleteTranslation(c.Request.Context(), c.GetString(ctxUserID), uint(id))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Translation not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddAPIKey(c *gin.Context) {
	if !s.requireRecords(c) {
		return
	}
	if s.vault == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "credential vault not configured", "code": "UNAVAILABLE"})
		return
	}

	var req AddAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_REQUEST"})
		return
	}
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	key := strings.TrimSpace(req.APIKey)

	if len(key) < MinAPIKeyLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key is too short", "code": "INVALID_REQUEST"})
		return
	}
	if !s.svc.Router().AcceptsUserCredentials(provider) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "provider " + provider + " does not accept user API keys",
			"code":  "UNSUPPORTED_PROVIDER",
		})
		return
	}

	if !s.svc.TestCredential(c.Request.Context(), provider, key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key", "code": "INVALID_CREDENTIAL"})
		return
	}

	ciphertext, err := s.vault.Encrypt(key)
	if err != nil {
		respondError(c, err)
		return
	}

	userID := c.GetString(ctxUserID)
	rec, err := s.records.SaveCredential(c.Request.Context(), userID, provider, ciphertext, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	s.log.Info("user api key saved", transcache.Fields{"user_id": userID, "provider": provider})
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleListAPIKeys(c *gin.Context) {
	if !s.requireRecords(c) {
		return
	}

	recs, err := s.records.ListCredentials(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	if recs == nil {
		recs = []store.CredentialRecord{}
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleDeleteAPIKey(c *gin.Context) {
	if !s.requireRecords(c) {
		return
	}

	userID := c.GetString(ctxUserID)
	provider := strings.ToLower(c.Param("provider"))
	err := s.records.DeleteCredential(c.Request.Context(), userID, provider)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API key not found", "code": "NOT_FOUND"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	s.log.Info("user api key deleted", transcache.Fields{"user_id": userID, "provider": provider})
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUserStats(c *gin.Context) {
	if !s.requireRecords(c) {
		return
	}

	stats, err := s.records.UserStats(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) requireRecords(c *gin.Context) bool {
	if s.records == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record store not configured", "code": "UNAVAILABLE"})
		return false
	}
	return true
}

func (s *Server) toServiceRequest(r TranslateRequest, userID string) transcache.Request {
	return transcache.Request{
		Text:       r.Text,
		SourceLang: r.SourceLang,
		TargetLang: r.TargetLang,
		Provider:   r.Provider,
		UserID:     userID,
	}
}

// record saves the history entry and marks a used user key, off the request path.
func (s *Server) record(c *gin.Context, userID string, res *transcache.Result) {
	if s.records == nil || userID == "" {
		return
	}

	rec := &store.TranslationRecord{
		UserID:         userID,
		SourceText:     res.OriginalText,
		TranslatedText: res.TranslatedText,
		SourceLang:     res.SourceLang,
		TargetLang:     res.TargetLang,
		Provider:       res.Provider,
		Cached:         res.Cached,
	}
	s.background(c, "save_translation", func(ctx context.Context) error {
		return s.records.SaveTranslation(ctx, rec)
	})

	if res.UsedUserCredential {
		provider := res.Provider
		s.background(c, "touch_credential", func(ctx context.Context) error {
			return s.records.TouchCredential(ctx, userID, provider)
		})
	}
}

func toResponse(res *transcache.Result) TranslateResponse {
	out := TranslateResponse{
		OriginalText:   res.OriginalText,
		TranslatedText: res.TranslatedText,
		SourceLang:     res.SourceLang,
		TargetLang:     res.TargetLang,
		Provider:       res.Provider,
		Cached:         res.Cached,
	}
	if !res.Cached {
		n := res.RequestCount
		out.RequestCount = &n
	}
	return out
}
