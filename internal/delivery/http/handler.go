package http

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/healthpal/backend/internal/domain"
	"github.com/healthpal/backend/internal/foodlog"
	"github.com/healthpal/backend/internal/keystore"
	"github.com/healthpal/backend/internal/usecase"
)

// maxScanImageBytes caps uploaded scan images at 10 MB.
const maxScanImageBytes = 10 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	summary  *usecase.SummaryService
	scan     *usecase.ScanService
	logs     *foodlog.Store
	keys     *keystore.Store
	analysis domain.AnalysisClient
}

// NewHandler creates a new HTTP handler
func NewHandler(
	summary *usecase.SummaryService,
	scan *usecase.ScanService,
	logs *foodlog.Store,
	keys *keystore.Store,
	analysis domain.AnalysisClient,
) *Handler {
	return &Handler{
		summary:  summary,
		scan:     scan,
		logs:     logs,
		keys:     keys,
		analysis: analysis,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "healthpal-backend",
		"version": "1.0.0",
	})
}

// parseDateParam reads the optional ?date=YYYY-MM-DD query parameter,
// defaulting to today. ok is false when the value is malformed (the
// handler has already written a 400).
func parseDateParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

// GetDailySummary returns the intake/spent/net/status tuple for one day.
func (h *Handler) GetDailySummary(c *gin.Context) {
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	summary, err := h.summary.DailySummary(c.Request.Context(), date)
	if err != nil {
		log.Printf("[HTTP] Summary failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// foodLogRequest is the create/update payload for a food log entry.
type foodLogRequest struct {
	Date     string `json:"date" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Calories int    `json:"calories" binding:"min=0"`
	Notes    string `json:"notes"`
}

func (r *foodLogRequest) parseDate() (time.Time, error) {
	return time.ParseInLocation("2006-01-02", r.Date, time.Local)
}

// ListFoodLogs returns the entries for one calendar day.
func (h *Handler) ListFoodLogs(c *gin.Context) {
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	entries := h.logs.EntriesForDay(date)
	if entries == nil {
		entries = []domain.FoodLog{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// CreateFoodLog adds a manually entered food log entry.
func (h *Handler) CreateFoodLog(c *gin.Context) {
	var req foodLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := req.parseDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	entry := domain.FoodLog{
		ID:       uuid.NewString(),
		Date:     domain.DayStart(date),
		Title:    req.Title,
		Calories: req.Calories,
		Notes:    req.Notes,
	}
	h.logs.Add(entry)

	c.JSON(http.StatusCreated, entry)
}

// UpdateFoodLog replaces an entry wholesale.
func (h *Handler) UpdateFoodLog(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.logs.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrEntryNotFound.Error()})
		return
	}

	var req foodLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := req.parseDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	entry := domain.FoodLog{
		ID:       id,
		Date:     domain.DayStart(date),
		Title:    req.Title,
		Calories: req.Calories,
		Notes:    req.Notes,
	}
	h.logs.Update(entry)

	c.JSON(http.StatusOK, entry)
}

// DeleteFoodLog removes an entry. Deleting an absent ID is still a success:
// the end state is the same.
func (h *Handler) DeleteFoodLog(c *gin.Context) {
	h.logs.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ScanFood accepts a multipart food photo, runs the analysis pipeline and
// logs the result. The three failure modes stay distinguishable for the
// client: missing credential (412), transport failure (502), and an image
// the model could not identify (422, a normal outcome).
func (h *Handler) ScanFood(c *gin.Context) {
	date := time.Now()
	if raw := c.PostForm("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxScanImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxScanImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}

	outcome, err := h.scan.ScanFood(c.Request.Context(), image, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoCredentialConfigured):
			c.JSON(http.StatusPreconditionFailed, gin.H{
				"error": "no AI credential configured - add one in settings",
			})
		case errors.Is(err, domain.ErrScanInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "a scan is already in progress"})
		default:
			log.Printf("[HTTP] Scan failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed - please try again"})
		}
		return
	}

	if !outcome.Usable {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "couldn't identify the food in this image",
		})
		return
	}

	c.JSON(http.StatusCreated, outcome.Entry)
}

// credentialRequest is the save payload for a provider API key.
type credentialRequest struct {
	Key string `json:"key"`
}

// SaveCredential validates and stores an API key for a provider. Validation
// is advisory: the key is saved either way and the response reports whether
// the provider accepted it.
func (h *Handler) SaveCredential(c *gin.Context) {
	provider := keystore.Provider(c.Param("provider"))
	if !provider.IsKnown() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valid := h.analysis.ValidateKey(c.Request.Context(), req.Key)

	if err := h.keys.Set(provider, req.Key); err != nil {
		log.Printf("[HTTP] Failed saving credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save credential"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider": provider,
		"valid":    valid,
	})
}

// DeleteCredential clears a provider's API key.
func (h *Handler) DeleteCredential(c *gin.Context) {
	provider := keystore.Provider(c.Param("provider"))
	if !provider.IsKnown() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	if err := h.keys.Clear(provider); err != nil {
		log.Printf("[HTTP] Failed clearing credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear credential"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCredentials reports which providers are configured. Secrets are never
// returned.
func (h *Handler) ListCredentials(c *gin.Context) {
	providers := make([]gin.H, 0, len(keystore.Providers))
	for _, provider := range keystore.Providers {
		_, configured := h.keys.Get(provider)
		providers = append(providers, gin.H{
			"provider":   provider,
			"configured": configured,
		})
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}
