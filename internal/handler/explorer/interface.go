package explorer

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetTokenTransfers(c *gin.Context)
}
