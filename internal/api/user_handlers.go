package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yuriataaide/dailydiet/internal"
	"github.com/yuriataaide/dailydiet/internal/service"
	"github.com/yuriataaide/dailydiet/internal/session"
	"github.com/yuriataaide/dailydiet/internal/storage"
)

func PostUser(userRepo storage.UserRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := service.ValidateRegisterRequest(&req); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "name and email are required")
			return
		}

		token := session.FromContext(c)
		if _, err := service.RegisterUser(c.Request.Context(), userRepo, token, &req); err != nil {
			if errors.Is(err, storage.ErrDuplicateEmail) {
				HandleError(c, logger, err, http.StatusConflict, "email already registered")
				return
			}
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to register user")
			return
		}
		c.Status(http.StatusCreated)
	}
}

func GetUsers(userRepo storage.UserRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.FromContext(c)
		users, err := service.ListUsers(c.Request.Context(), userRepo, token)
		if err != nil {
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to fetch users")
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

func GetUserByID(userRepo storage.UserRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "user id must be a valid UUID")
			return
		}

		token := session.FromContext(c)
		user, err := service.GetUser(c.Request.Context(), userRepo, token, id)
		if err != nil {
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to fetch user")
			return
		}
		// Absent user is an empty result, not an error.
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
