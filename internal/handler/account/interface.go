package account

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetChart(c *gin.Context)
	Validate(c *gin.Context)
	Suggest(c *gin.Context)
}
