package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/devbyilmir/incidents-manager/internal/incident"
	"github.com/devbyilmir/incidents-manager/internal/store"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.store.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		detail(c, http.StatusConflict, "user already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		detail(c, http.StatusInternalServerError, "failed to check user")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	role := req.Role
	if role == "" {
		role = "operator"
	}

	if _, err := s.store.CreateUser(c.Request.Context(), req.Email, req.Name, role, string(hashed)); err != nil {
		detail(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user created"})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		detail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		detail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.mintToken(user.ID)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	// The token travels both ways: as an httponly cookie for browsers and
	// in the body for clients that manage the cookie themselves.
	c.SetCookie(sessionCookie, token, int(s.opts.TokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) handleMe(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		detail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.JSON(http.StatusOK, incident.UserSummary{ID: user.ID, Name: user.Name, Role: user.Role})
}
