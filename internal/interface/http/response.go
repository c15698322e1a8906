package httpapi

import (
	"errors"
	"log"
	"net/http"

	"kospi-treasure/internal/application/treasure"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, errorResponse{
		Success:   false,
		Error:     msg,
		ErrorCode: code,
	})
}

// respondError 將用例錯誤對應到 HTTP 狀態碼；未預期的錯誤只記錄不外洩細節。
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, treasure.ErrCompanyNotFound), errors.Is(err, treasure.ErrIndustryNotFound):
		writeError(c, http.StatusNotFound, errCodeNotFound, err.Error())
	default:
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, errCodeInternal, "internal error")
	}
}
