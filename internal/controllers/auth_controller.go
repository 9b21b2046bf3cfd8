package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (h *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bind(c, &input) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AuthController) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &body) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      res.Token,
		"expires_in": int64(time.Until(res.ExpiresAt).Seconds()),
		"user": gin.H{
			"id":             res.User.ID,
			"name":           res.User.Name,
			"email":          res.User.Email,
			"role":           res.User.Role,
			"wallet_balance": res.User.WalletBalance,
		},
	})
}
