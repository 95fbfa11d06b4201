package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires every endpoint onto the echo instance.
func RegisterRoutes(e *echo.Echo, discussionHandler *DiscussionHandler, chatHandler *ChatHandler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")
	v1.POST("/meetings/:id/discuss", discussionHandler.Discuss)
	v1.POST("/chat", chatHandler.Send)
	v1.GET("/chat-sessions/:id", chatHandler.GetSession)
	v1.DELETE("/chat-sessions/:id", chatHandler.DeleteSession)
}
