package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authpkg "github.com/your-org/attendance/internal/auth"
	"github.com/your-org/attendance/internal/geo"
	"github.com/your-org/attendance/internal/ledger"
	"github.com/your-org/attendance/internal/models"
	"github.com/your-org/attendance/internal/observability"
	"github.com/your-org/attendance/internal/queue"
	"github.com/your-org/attendance/internal/storage"
	"github.com/your-org/attendance/pkg/dto"
)

type AttendanceHandler struct {
	ledger   *ledger.Ledger
	db       *storage.PostgresStore
	minio    *storage.MinIOStore
	producer *queue.Producer
}

func NewAttendanceHandler(l *ledger.Ledger, db *storage.PostgresStore, minio *storage.MinIOStore, producer *queue.Producer) *AttendanceHandler {
	return &AttendanceHandler{ledger: l, db: db, minio: minio, producer: producer}
}

func eventResponse(recID uuid.UUID, kind string, ev *models.AttendanceEvent) *dto.EventResponse {
	if ev == nil {
		return nil
	}
	resp := &dto.EventResponse{
		At:        ev.At.Format(time.RFC3339),
		Time:      ev.TimeOfDay(),
		Latitude:  ev.Latitude,
		Longitude: ev.Longitude,
		Address:   ev.Address,
	}
	if ev.PhotoKey != "" {
		resp.PhotoURL = "/v1/attendance/records/" + recID.String() + "/photo/" + kind
	}
	return resp
}

func recordResponse(rec *models.AttendanceRecord) dto.RecordResponse {
	return dto.RecordResponse{
		ID:           rec.ID,
		IdentityID:   rec.IdentityID,
		Date:         rec.Date.Format(time.DateOnly),
		CheckIn:      eventResponse(rec.ID, "in", rec.CheckIn),
		CheckOut:     eventResponse(rec.ID, "out", rec.CheckOut),
		WorkingHours: rec.WorkingHours,
		Status:       string(rec.Status),
	}
}

// eventInput reads the optional location form fields and photo upload.
// Both degrade gracefully: a failed photo store only omits the photo.
func (h *AttendanceHandler) eventInput(c *gin.Context, identityID uuid.UUID, kind string) ledger.EventInput {
	var in ledger.EventInput

	latStr, lngStr := c.PostForm("latitude"), c.PostForm("longitude")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			in.Location = &geo.Coordinates{Latitude: lat, Longitude: lng}
		}
	}

	file, _, err := c.Request.FormFile("photo")
	if err != nil {
		return in
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		slog.Warn("read attendance photo", "error", err)
		return in
	}

	key := storage.PhotoKey(identityID, models.DateOf(time.Now()), kind)
	if err := h.minio.PutObject(c.Request.Context(), key, imageData, "image/jpeg"); err != nil {
		slog.Warn("store attendance photo", "error", err)
		return in
	}
	in.PhotoKey = key
	return in
}

func (h *AttendanceHandler) publish(c *gin.Context, eventType string, rec *models.AttendanceRecord) {
	err := h.producer.PublishAttendance(c.Request.Context(), rec.IdentityID.String(), dto.WSEvent{
		Type:       eventType,
		IdentityID: rec.IdentityID,
		Data:       recordResponse(rec),
	})
	if err != nil {
		slog.Warn("publish attendance event", "type", eventType, "error", err)
	}
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	identityID := authpkg.IdentityID(c)

	rec, err := h.ledger.CheckIn(c.Request.Context(), identityID, h.eventInput(c, identityID, "in"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	observability.CheckIns.WithLabelValues(string(rec.Status)).Inc()
	h.publish(c, "checked_in", rec)

	c.JSON(http.StatusOK, recordResponse(rec))
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	identityID := authpkg.IdentityID(c)

	rec, err := h.ledger.CheckOut(c.Request.Context(), identityID, h.eventInput(c, identityID, "out"))
	if err != nil {
		if errors.Is(err, ledger.ErrNotCheckedIn) {
			c.JSON(http.StatusConflict, gin.H{"error": "no check-in recorded for today"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	observability.CheckOuts.Inc()
	h.publish(c, "checked_out", rec)

	c.JSON(http.StatusOK, recordResponse(rec))
}

func (h *AttendanceHandler) Today(c *gin.Context) {
	rec, err := h.ledger.Today(c.Request.Context(), authpkg.IdentityID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no record for today"})
		return
	}
	c.JSON(http.StatusOK, recordResponse(rec))
}

// dateRange parses the from/to query params. Defaults to the last 30
// days when absent.
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from, to := now.AddDate(0, 0, -30), now

	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse(time.DateOnly, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date, want YYYY-MM-DD")
		}
		from = t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse(time.DateOnly, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, want YYYY-MM-DD")
		}
		to = t
	}
	return from, to, nil
}

func (h *AttendanceHandler) Records(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.ledger.RecordsByDateRange(c.Request.Context(), authpkg.IdentityID(c), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.RecordResponse, 0, len(records))
	for i := range records {
		resp = append(resp, recordResponse(&records[i]))
	}
	c.JSON(http.StatusOK, dto.RecordListResponse{Records: resp, Total: len(resp)})
}

func (h *AttendanceHandler) Summary(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.ledger.RecordsByDateRange(c.Request.Context(), authpkg.IdentityID(c), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sum := ledger.Summarize(records)
	c.JSON(http.StatusOK, dto.SummaryResponse{
		TotalDays:    sum.TotalDays,
		Present:      sum.Present,
		Late:         sum.Late,
		Absent:       sum.Absent,
		HalfDay:      sum.HalfDay,
		AverageHours: sum.AverageHours,
	})
}

// Photo serves the stored check-in ("in") or check-out ("out") photo of
// one of the caller's records.
func (h *AttendanceHandler) Photo(c *gin.Context) {
	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	rec, err := h.db.RecordByID(c.Request.Context(), recID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Records of other identities are not disclosed.
	if rec == nil || rec.IdentityID != authpkg.IdentityID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	var key string
	switch c.Param("kind") {
	case "in":
		if rec.CheckIn != nil {
			key = rec.CheckIn.PhotoKey
		}
	case "out":
		if rec.CheckOut != nil {
			key = rec.CheckOut.PhotoKey
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be in or out"})
		return
	}
	if key == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no photo for this event"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}
