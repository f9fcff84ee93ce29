package utils

import "github.com/gin-gonic/gin"

// JSONSuccess writes the entity or aggregate as the response body.
func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// JSONError writes the uniform error body.
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
