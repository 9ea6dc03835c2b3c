package handler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/trakxmap-backend-go/internal/models"
	"github.com/jengzang/trakxmap-backend-go/internal/service"
	"github.com/jengzang/trakxmap-backend-go/internal/track"
	"github.com/jengzang/trakxmap-backend-go/pkg/response"
)

// TrackHandler handles HTTP requests for tracks
type TrackHandler struct {
	trackService   *service.TrackService
	maxUploadBytes int64
}

// NewTrackHandler creates a new track handler accepting upload bodies of at most maxUploadBytes
func NewTrackHandler(trackService *service.TrackService, maxUploadBytes int64) *TrackHandler {
	return &TrackHandler{
		trackService:   trackService,
		maxUploadBytes: maxUploadBytes,
	}
}

// ListTracks handles GET /api/v1/tracks
func (h *TrackHandler) ListTracks(c *gin.Context) {
	var filter models.TrackFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	viewport, err := filter.Viewport()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, models.NewTrackSummaries(h.trackService.ListTracks(viewport)))
}

// GetTrack handles GET /api/v1/tracks/:id
func (h *TrackHandler) GetTrack(c *gin.Context) {
	t, ok := h.track(c)
	if !ok {
		return
	}
	response.Success(c, models.NewTrackDetail(t))
}

// GetPoints handles GET /api/v1/tracks/:id/points?kind=track|route|way
func (h *TrackHandler) GetPoints(c *gin.Context) {
	kind, ok := track.ParseKind(c.Query("kind"))
	if !ok {
		response.BadRequest(c, "Invalid kind, expected track, route or way")
		return
	}

	t, ok := h.track(c)
	if !ok {
		return
	}
	response.Success(c, models.NewPointViews(t.Points(kind)))
}

// GetStatistics handles GET /api/v1/tracks/:id/statistics
func (h *TrackHandler) GetStatistics(c *gin.Context) {
	t, ok := h.track(c)
	if !ok {
		return
	}
	response.Success(c, models.NewStatisticsView(t.Statistics()))
}

// GetExtent handles GET /api/v1/tracks/:id/extent
func (h *TrackHandler) GetExtent(c *gin.Context) {
	t, ok := h.track(c)
	if !ok {
		return
	}

	extent := models.NewExtentView(t.Extent())
	if extent == nil {
		response.NotFound(c, "Track has no extent")
		return
	}
	response.Success(c, extent)
}

// UploadTracks handles POST /api/v1/tracks with one or more multipart "files"
func (h *TrackHandler) UploadTracks(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RequestEntityTooLarge(c, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		response.BadRequest(c, "Invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.BadRequest(c, "No files uploaded")
		return
	}

	result := models.UploadResponse{
		Tracks: []models.TrackSummary{},
		Failed: []models.UploadFailure{},
	}
	for _, fh := range files {
		t, err := h.importFile(c, fh)
		if err != nil {
			log.Printf("[TrackHandler] Upload of %s failed: %v", fh.Filename, err)
			result.Failed = append(result.Failed, models.UploadFailure{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		result.Tracks = append(result.Tracks, models.NewTrackSummary(t))
	}

	if len(result.Tracks) == 0 {
		response.BadRequest(c, fmt.Sprintf("No track produced from %d files", len(files)))
		return
	}
	response.Created(c, result)
}

func (h *TrackHandler) importFile(c *gin.Context, fh *multipart.FileHeader) (*track.Track, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return h.trackService.Import(c.Request.Context(), fh.Filename, data)
}

// RenameTrack handles PUT /api/v1/tracks/:id/name
func (h *TrackHandler) RenameTrack(c *gin.Context) {
	id, ok := trackID(c)
	if !ok {
		return
	}

	var req models.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		response.BadRequest(c, "Name must not be empty")
		return
	}

	t, err := h.trackService.Rename(c.Request.Context(), id, name)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, models.NewTrackSummary(t))
}

// DeleteTrack handles DELETE /api/v1/tracks/:id
func (h *TrackHandler) DeleteTrack(c *gin.Context) {
	id, ok := trackID(c)
	if !ok {
		return
	}

	if err := h.trackService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// track resolves the :id parameter, writing the error response on failure
func (h *TrackHandler) track(c *gin.Context) (*track.Track, bool) {
	id, ok := trackID(c)
	if !ok {
		return nil, false
	}

	t, err := h.trackService.GetTrack(id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return t, true
}

func (h *TrackHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTrackNotFound) {
		response.NotFound(c, "Track not found")
		return
	}
	response.InternalError(c, err.Error())
}

func trackID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(c, "Invalid track ID")
		return 0, false
	}
	return id, true
}
