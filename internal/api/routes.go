package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {

	// --- Conversations ---
	conversations := router.Group("/conversations")
	{
		conversations.POST("", h.CreateConversation)
		conversations.GET("/:id", h.GetConversation)
		conversations.DELETE("/:id", h.DeleteConversation)
		conversations.POST("/:id/messages", h.SendMessage)
		conversations.GET("/:id/preview", h.Preview)
		conversations.POST("/:id/publish", h.Publish)
	}

	// --- Annotation tool over the preview ---
	annotation := conversations.Group("/:id/annotation")
	{
		annotation.POST("", h.StartAnnotation)
		annotation.GET("", h.AnnotationStatus)
		annotation.DELETE("", h.CancelAnnotation)
		annotation.PUT("/layout", h.UpdateAnnotationLayout)
		annotation.POST("/events", h.AnnotationEvents)
		annotation.POST("/complete", h.CompleteAnnotation)
		annotation.GET("/image", h.AnnotationImage)
		annotation.GET("/thumbnail", h.AnnotationThumbnail)
		annotation.DELETE("/image", h.ClearAnnotationImage)
	}

	// --- Simple Health Check ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
