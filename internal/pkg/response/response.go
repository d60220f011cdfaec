package response

import "github.com/gin-gonic/gin"

// InternalErrorDetail is the only message clients see for unexpected failures.
const InternalErrorDetail = "Internal server error"

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

// Detail writes the {"detail": ...} error body.
func Detail(c *gin.Context, statusCode int, detail string) {
	c.JSON(statusCode, gin.H{"detail": detail})
}

// AbortDetail is Detail for middleware that must stop the chain.
func AbortDetail(c *gin.Context, statusCode int, detail string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"detail": detail})
}
