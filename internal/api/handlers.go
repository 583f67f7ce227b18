package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"sitesketch/internal/annotate"
	"sitesketch/internal/chat"
	"sitesketch/internal/publish"
	"sitesketch/internal/types"

	"github.com/gin-gonic/gin"
)

// Publisher exports a conversation's site.
type Publisher interface {
	Publish(ctx context.Context, name string, files []publish.File) (string, error)
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	chat      *chat.Service
	publisher Publisher
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(chatSvc *chat.Service, publisher Publisher) *APIHandler {
	return &APIHandler{
		chat:      chatSvc,
		publisher: publisher,
	}
}

// --- Structs for API Requests/Responses ---

type CreateConversationResponse struct {
	ID string `json:"id"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type SendMessageResponse struct {
	Reply   string          `json:"reply"`
	HTML    string          `json:"html"`
	Updated bool            `json:"updated"`
	History []types.Message `json:"history"`
}

type AnnotationEventsRequest struct {
	Events []annotate.PointerEvent `json:"events" binding:"required,dive"`
}

type CompleteAnnotationRequest struct {
	ScrollX *float64 `json:"scrollX"`
	ScrollY *float64 `json:"scrollY"`
}

type AnnotationImageResponse struct {
	Image    string `json:"image"` // data URL
	MimeType string `json:"mimeType"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type PublishResponse struct {
	Location string `json:"location"`
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrBusy),
		errors.Is(err, annotate.ErrCaptureInProgress),
		errors.Is(err, chat.ErrNotAnnotating),
		errors.Is(err, chat.ErrNoAnnotation),
		errors.Is(err, annotate.ErrDetached):
		return http.StatusConflict
	case errors.Is(err, annotate.ErrCaptureFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, annotate.ErrCompositing):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

// --- API Handlers ---

// POST /conversations
func (h *APIHandler) CreateConversation(c *gin.Context) {
	conv := h.chat.Store().Create()
	log.Printf("Created conversation %s", conv.ID)
	c.JSON(http.StatusCreated, CreateConversationResponse{ID: conv.ID})
}

// GET /conversations/:id
func (h *APIHandler) GetConversation(c *gin.Context) {
	conv, err := h.chat.Store().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv.Snapshot())
}

// DELETE /conversations/:id
func (h *APIHandler) DeleteConversation(c *gin.Context) {
	if err := h.chat.Store().Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /conversations/:id/messages
func (h *APIHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	id := c.Param("id")

	reply, err := h.chat.Send(c.Request.Context(), id, req.Message)
	if err != nil {
		log.Printf("Error sending message for conversation %s: %v", id, err)
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.chat.Store().Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SendMessageResponse{
		Reply:   reply.Text,
		HTML:    reply.HTML,
		Updated: reply.Updated,
		History: conv.Snapshot().History,
	})
}

// GET /conversations/:id/preview[?view=code]
func (h *APIHandler) Preview(c *gin.Context) {
	conv, err := h.chat.Store().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	html := conv.HTML()
	if html == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No preview has been generated yet"})
		return
	}
	if c.Query("view") == "code" {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(html))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// POST /conversations/:id/annotation
func (h *APIHandler) StartAnnotation(c *gin.Context) {
	var req chat.Layout
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	st, err := h.chat.StartAnnotation(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// GET /conversations/:id/annotation
func (h *APIHandler) AnnotationStatus(c *gin.Context) {
	st, err := h.chat.AnnotationStatus(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PUT /conversations/:id/annotation/layout
func (h *APIHandler) UpdateAnnotationLayout(c *gin.Context) {
	var req chat.Layout
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.chat.UpdateLayout(c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /conversations/:id/annotation/events
func (h *APIHandler) AnnotationEvents(c *gin.Context) {
	var req AnnotationEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	for _, ev := range req.Events {
		if !ev.Kind.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type: " + string(ev.Kind)})
			return
		}
	}
	st, err := h.chat.HandleAnnotationEvents(c.Param("id"), req.Events)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// POST /conversations/:id/annotation/complete
func (h *APIHandler) CompleteAnnotation(c *gin.Context) {
	var req CompleteAnnotationRequest
	// An empty body is fine: the last reported scroll offset is used.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
	}
	var scroll *annotate.Point
	if req.ScrollX != nil || req.ScrollY != nil {
		scroll = &annotate.Point{}
		if req.ScrollX != nil {
			scroll.X = *req.ScrollX
		}
		if req.ScrollY != nil {
			scroll.Y = *req.ScrollY
		}
	}

	id := c.Param("id")
	img, err := h.chat.CompleteAnnotation(c.Request.Context(), id, scroll)
	if err != nil {
		log.Printf("Annotation capture for conversation %s: %v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AnnotationImageResponse{
		Image:    img.DataURL(),
		MimeType: img.MimeType,
		Width:    img.Width,
		Height:   img.Height,
	})
}

// DELETE /conversations/:id/annotation
func (h *APIHandler) CancelAnnotation(c *gin.Context) {
	if err := h.chat.CancelAnnotation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /conversations/:id/annotation/image
func (h *APIHandler) AnnotationImage(c *gin.Context) {
	conv, err := h.chat.Store().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	img, ok := conv.PendingAnnotation()
	if !ok {
		respondError(c, chat.ErrNoAnnotation)
		return
	}
	c.Data(http.StatusOK, img.MimeType, img.Data)
}

// GET /conversations/:id/annotation/thumbnail
func (h *APIHandler) AnnotationThumbnail(c *gin.Context) {
	thumb, err := h.chat.Thumbnail(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", thumb)
}

// DELETE /conversations/:id/annotation/image
func (h *APIHandler) ClearAnnotationImage(c *gin.Context) {
	if err := h.chat.ClearAnnotation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /conversations/:id/publish
func (h *APIHandler) Publish(c *gin.Context) {
	conv, err := h.chat.Store().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	html := conv.HTML()
	if html == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Nothing to publish yet"})
		return
	}
	files := []publish.File{{Name: "index.html", Content: []byte(html)}}
	if img, ok := conv.PendingAnnotation(); ok {
		files = append(files, publish.File{Name: "annotation.jpg", Content: img.Data})
	}

	location, err := h.publisher.Publish(c.Request.Context(), conv.ID, files)
	if err != nil {
		log.Printf("Error publishing conversation %s: %v", conv.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish site"})
		return
	}
	c.JSON(http.StatusOK, PublishResponse{Location: location})
}
