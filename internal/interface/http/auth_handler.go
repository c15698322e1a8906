package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"kospi-treasure/internal/application/auth"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "error_code": errCodeBadRequest})
		return
	}

	res, err := s.loginUC.Execute(c.Request.Context(), auth.LoginInput{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCredentialsRequired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email and password required", "error_code": errCodeBadRequest})
		case errors.Is(err, auth.ErrUserDisabled):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "user disabled", "error_code": errCodeForbidden})
		case errors.Is(err, auth.ErrInvalidCredentials):
			log.Printf("[Auth] login failure for %s: %v", body.Email, err)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password", "error_code": errCodeInvalidCredentials})
		default:
			respondError(c, err)
		}
		return
	}

	c.SetCookie("access_token", res.Token.AccessToken, int(time.Until(res.Token.ExpiresAt).Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    res.User.ID,
			"email": res.User.Email,
			"name":  res.User.Name,
			"role":  res.User.Role,
		},
		"access_token": res.Token.AccessToken,
		"token_type":   res.Token.TokenType,
		"expiry":       res.Token.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.authRepo.FindByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized", "error_code": errCodeUnauthorized})
		return
	}

	perms := make([]auth.Permission, 0)
	for _, p := range []auth.Permission{auth.PermTreasureRead, auth.PermFixturesReload, auth.PermDigestSend} {
		if s.authz.HasPermission(user.Role, p) {
			perms = append(perms, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"user":        user,
		"permissions": perms,
	})
}
