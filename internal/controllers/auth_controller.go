package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rail_distance/internal/models"
	"rail_distance/internal/repository"
)

// Authenticator checks operator credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateToken(userID uint, role string) (string, error)
}

type AuthController struct {
	users  Authenticator
	tokens TokenIssuer
}

func NewAuthController(users Authenticator, tokens TokenIssuer) *AuthController {
	return &AuthController{users: users, tokens: tokens}
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.Authenticate(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
			return
		}
		logrus.WithError(err).Error("controllers: login lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	token, err := ac.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
