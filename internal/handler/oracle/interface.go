package oracle

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetPrice(c *gin.Context)
	GetSupportedSymbols(c *gin.Context)
	IsSupported(c *gin.Context)
	GetCacheStatistics(c *gin.Context)
	ClearCache(c *gin.Context)
}
