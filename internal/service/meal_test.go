package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yuriataaide/dailydiet/internal"
	"github.com/yuriataaide/dailydiet/internal/storage"
)

func boolPtr(b bool) *bool { return &b }

func testMeals(flags ...bool) []internal.Meal {
	meals := make([]internal.Meal, len(flags))
	for i, on := range flags {
		meals[i] = internal.Meal{ID: "m", IsOnDiet: on}
	}
	return meals
}

func TestCalculateMetrics_Streak(t *testing.T) {
	// Descending-date order: on, on, off, on, off
	m := CalculateMetrics(testMeals(true, true, false, true, false))
	assert.Equal(t, 5, m.TotalMeals)
	assert.Equal(t, 3, m.TotalMealsOnDiet)
	assert.Equal(t, 2, m.TotalMealsOffDiet)
	assert.Equal(t, 2, m.BestOnDietSequence)
}

func TestCalculateMetrics_AllOnDiet(t *testing.T) {
	m := CalculateMetrics(testMeals(true, true, true))
	assert.Equal(t, 3, m.BestOnDietSequence)
	assert.Equal(t, 0, m.TotalMealsOffDiet)
}

func TestCalculateMetrics_Empty(t *testing.T) {
	m := CalculateMetrics(nil)
	assert.Equal(t, Metrics{}, m)
}

func TestCalculateMetrics_PartitionInvariant(t *testing.T) {
	meals := testMeals(false, true, false, false, true, true, false)
	m := CalculateMetrics(meals)
	assert.Equal(t, len(meals), m.TotalMeals)
	assert.Equal(t, m.TotalMeals, m.TotalMealsOnDiet+m.TotalMealsOffDiet)
}

func TestValidateMealRequest(t *testing.T) {
	date := EpochMillis(time.Now().UnixMilli())

	valid := &MealRequest{Name: "Salad", Description: "Green salad", IsOnDiet: boolPtr(true), Date: &date}
	assert.NoError(t, ValidateMealRequest(valid))

	// Explicit false must pass validation.
	offDiet := &MealRequest{Name: "Burger", Description: "Cheat day", IsOnDiet: boolPtr(false), Date: &date}
	assert.NoError(t, ValidateMealRequest(offDiet))

	missingFlag := &MealRequest{Name: "Salad", Description: "Green salad", Date: &date}
	assert.Error(t, ValidateMealRequest(missingFlag))

	missingDate := &MealRequest{Name: "Salad", Description: "Green salad", IsOnDiet: boolPtr(true)}
	assert.Error(t, ValidateMealRequest(missingDate))

	missingName := &MealRequest{Description: "Green salad", IsOnDiet: boolPtr(true), Date: &date}
	assert.Error(t, ValidateMealRequest(missingName))
}

func TestEpochMillisUnmarshal(t *testing.T) {
	var m EpochMillis
	assert.NoError(t, json.Unmarshal([]byte(`"2024-05-20T12:00:00Z"`), &m))
	assert.Equal(t, time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC).UnixMilli(), int64(m))

	assert.NoError(t, json.Unmarshal([]byte(`1716206400000`), &m))
	assert.Equal(t, int64(1716206400000), int64(m))

	assert.Error(t, json.Unmarshal([]byte(`"not a date"`), &m))
	assert.Error(t, json.Unmarshal([]byte(`true`), &m))
}

func TestCreateAndComputeMetrics(t *testing.T) {
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repo, err := storage.NewMemoryStorage("", "", logger)
	assert.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	base := time.Now()
	for i, on := range []bool{false, true, false, true, true} {
		date := EpochMillis(base.Add(time.Duration(i) * time.Hour).UnixMilli())
		req := &MealRequest{Name: "Meal", Description: "d", IsOnDiet: boolPtr(on), Date: &date}
		_, err := CreateMeal(ctx, repo, "session-1", req)
		assert.NoError(t, err)
	}

	// Descending date order is [on, on, off, on, off].
	m, err := ComputeMetrics(ctx, repo, "session-1")
	assert.NoError(t, err)
	assert.Equal(t, 5, m.TotalMeals)
	assert.Equal(t, 2, m.BestOnDietSequence)

	// Another session sees nothing.
	empty, err := ComputeMetrics(ctx, repo, "session-2")
	assert.NoError(t, err)
	assert.Equal(t, Metrics{}, empty)
}
