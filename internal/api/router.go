package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yuriataaide/dailydiet/internal"
	"github.com/yuriataaide/dailydiet/internal/session"
	"github.com/yuriataaide/dailydiet/internal/storage"
)

// NewRouter wires the full route table. POST endpoints resolve or mint the
// session cookie; everything else requires an existing one.
func NewRouter(userRepo storage.UserRepository, mealRepo storage.MealRepository, logger internal.Logger, rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	if rl != nil {
		r.Use(RateLimitMiddleware(rl))
	}

	users := r.Group("/users")
	users.POST("", session.Middleware(logger), PostUser(userRepo, logger))
	users.GET("", session.Require(logger), GetUsers(userRepo, logger))
	users.GET("/:id", session.Require(logger), GetUserByID(userRepo, logger))

	meals := r.Group("/meals")
	meals.POST("", session.Middleware(logger), PostMeal(mealRepo, logger))
	meals.GET("", session.Require(logger), GetMeals(mealRepo, logger))
	meals.GET("/metrics", session.Require(logger), GetMealMetrics(mealRepo, logger))
	meals.GET("/:mealId", session.Require(logger), GetMealByID(mealRepo, logger))
	meals.PUT("/:mealId", session.Require(logger), PutMeal(mealRepo, logger))
	meals.DELETE("/:mealId", session.Require(logger), DeleteMeal(mealRepo, logger))

	return r
}
