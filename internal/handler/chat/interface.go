package chat

import "github.com/gin-gonic/gin"

type IHandler interface {
	Chat(c *gin.Context)
}
