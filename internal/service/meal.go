package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yuriataaide/dailydiet/internal"
	"github.com/yuriataaide/dailydiet/internal/storage"
)

// EpochMillis accepts either an RFC 3339 string or an integer epoch
// milliseconds value on the wire and stores epoch milliseconds.
type EpochMillis int64

func (m *EpochMillis) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		*m = EpochMillis(t.UnixMilli())
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return errors.New("date must be an RFC 3339 string or epoch milliseconds")
	}
	*m = EpochMillis(n)
	return nil
}

// MealRequest is the body of both create and update; all four fields are
// required. IsOnDiet is a pointer so an explicit false passes validation.
type MealRequest struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description" validate:"required"`
	IsOnDiet    *bool        `json:"isOnDiet" validate:"required"`
	Date        *EpochMillis `json:"date" validate:"required"`
}

func ValidateMealRequest(req *MealRequest) error {
	return validate.Struct(req)
}

func CreateMeal(ctx context.Context, mealRepo storage.MealRepository, ownerID string, req *MealRequest) (*internal.Meal, error) {
	meal := &internal.Meal{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		IsOnDiet:    *req.IsOnDiet,
		Date:        int64(*req.Date),
		CreatedAt:   time.Now(),
	}
	if err := mealRepo.SaveMeal(ctx, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

func ListMeals(ctx context.Context, mealRepo storage.MealRepository, ownerID string) ([]internal.Meal, error) {
	return mealRepo.ListMeals(ctx, ownerID)
}

func GetMeal(ctx context.Context, mealRepo storage.MealRepository, ownerID, id string) (*internal.Meal, error) {
	return mealRepo.GetMeal(ctx, ownerID, id)
}

// UpdateMeal is a full replace of the four mutable fields, scoped to owner.
func UpdateMeal(ctx context.Context, mealRepo storage.MealRepository, ownerID, id string, req *MealRequest) error {
	meal := &internal.Meal{
		ID:          id,
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		IsOnDiet:    *req.IsOnDiet,
		Date:        int64(*req.Date),
	}
	return mealRepo.UpdateMeal(ctx, meal)
}

func DeleteMeal(ctx context.Context, mealRepo storage.MealRepository, ownerID, id string) error {
	return mealRepo.DeleteMeal(ctx, ownerID, id)
}

type Metrics struct {
	TotalMeals         int `json:"totalMeals"`
	TotalMealsOnDiet   int `json:"totalMealsOnDiet"`
	TotalMealsOffDiet  int `json:"totalMealsOffDiet"`
	BestOnDietSequence int `json:"bestOnDietSequence"`
}

// CalculateMetrics reduces meals in their stored order (date descending).
// The streak is adjacency in that order, so it relies on the repository's
// deterministic sort.
func CalculateMetrics(meals []internal.Meal) Metrics {
	var metrics Metrics
	current := 0
	for _, m := range meals {
		metrics.TotalMeals++
		if m.IsOnDiet {
			metrics.TotalMealsOnDiet++
			current++
		} else {
			metrics.TotalMealsOffDiet++
			current = 0
		}
		if current > metrics.BestOnDietSequence {
			metrics.BestOnDietSequence = current
		}
	}
	return metrics
}

func ComputeMetrics(ctx context.Context, mealRepo storage.MealRepository, ownerID string) (Metrics, error) {
	meals, err := mealRepo.ListMeals(ctx, ownerID)
	if err != nil {
		return Metrics{}, err
	}
	return CalculateMetrics(meals), nil
}
