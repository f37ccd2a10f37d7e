package journal

import "github.com/gin-gonic/gin"

type IHandler interface {
	Analyse(c *gin.Context)
	AnalyseWallet(c *gin.Context)
}
