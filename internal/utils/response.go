package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes a 200 envelope.
func Success(c *gin.Context, data gin.H) {
	respond(c, http.StatusOK, data)
}

// Accepted writes a 202 envelope for work queued in the background.
func Accepted(c *gin.Context, data gin.H) {
	respond(c, http.StatusAccepted, data)
}

func respond(c *gin.Context, code int, data gin.H) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
	})
}
