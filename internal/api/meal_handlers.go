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

func PostMeal(mealRepo storage.MealRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.MealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := service.ValidateMealRequest(&req); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "name, description, isOnDiet and date are required")
			return
		}

		token := session.FromContext(c)
		if _, err := service.CreateMeal(c.Request.Context(), mealRepo, token, &req); err != nil {
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to save meal")
			return
		}
		c.Status(http.StatusCreated)
	}
}

func GetMeals(mealRepo storage.MealRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.FromContext(c)
		meals, err := service.ListMeals(c.Request.Context(), mealRepo, token)
		if err != nil {
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to fetch meals")
			return
		}
		c.JSON(http.StatusOK, gin.H{"meals": meals})
	}
}

func GetMealByID(mealRepo storage.MealRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("mealId")
		if _, err := uuid.Parse(id); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "meal id must be a valid UUID")
			return
		}

		token := session.FromContext(c)
		meal, err := service.GetMeal(c.Request.Context(), mealRepo, token, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				HandleError(c, logger, err, http.StatusNotFound, "meal not found")
				return
			}
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to fetch meal")
			return
		}
		c.JSON(http.StatusOK, gin.H{"meal": meal})
	}
}

func GetMealMetrics(mealRepo storage.MealRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.FromContext(c)
		metrics, err := service.ComputeMetrics(c.Request.Context(), mealRepo, token)
		if err != nil {
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to compute metrics")
			return
		}
		c.JSON(http.StatusOK, metrics)
	}
}

func PutMeal(mealRepo storage.MealRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("mealId")
		if _, err := uuid.Parse(id); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "meal id must be a valid UUID")
			return
		}

		var req service.MealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := service.ValidateMealRequest(&req); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "name, description, isOnDiet and date are required")
			return
		}

		token := session.FromContext(c)
		if err := service.UpdateMeal(c.Request.Context(), mealRepo, token, id, &req); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				HandleError(c, logger, err, http.StatusNotFound, "meal not found")
				return
			}
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to update meal")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func DeleteMeal(mealRepo storage.MealRepository, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("mealId")
		if _, err := uuid.Parse(id); err != nil {
			HandleError(c, logger, err, http.StatusBadRequest, "meal id must be a valid UUID")
			return
		}

		token := session.FromContext(c)
		if err := service.DeleteMeal(c.Request.Context(), mealRepo, token, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				HandleError(c, logger, err, http.StatusNotFound, "meal not found")
				return
			}
			HandleError(c, logger, err, http.StatusInternalServerError, "failed to delete meal")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
