package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
	authsvc "github.com/alanyang/iobos/internal/service/auth"
)

// Register mounts the login endpoint. Responses use the {success, token,
// message} shape the login page expects.
func Register(rg *gin.RouterGroup, svc *authsvc.LoginService) {
	rg.POST("/login", login(svc))
}

type loginResp struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

func login(svc *authsvc.LoginService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domainauth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, loginResp{Message: "Invalid request body"})
			return
		}

		token, err := svc.Login(c.Request.Context(), req)
		if err != nil {
			var verr *domainauth.ValidationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusBadRequest, loginResp{Message: verr.Message})
			case errors.Is(err, domainauth.ErrUnauthorized):
				c.JSON(http.StatusUnauthorized, loginResp{Message: "Invalid credentials"})
			default:
				slog.ErrorContext(c.Request.Context(), "login failed", "error", err)
				c.JSON(http.StatusInternalServerError, loginResp{Message: "Internal server error"})
			}
			return
		}

		c.JSON(http.StatusOK, loginResp{Success: true, Token: token, Message: "Login successful"})
	}
}
