package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/yuriataaide/dailydiet/internal"
)

// MemoryStorage keeps users and meals in memory, optionally persisted to JSON
// files with debounced background saves. Empty file paths disable persistence.
type MemoryStorage struct {
	users          map[string]*internal.User   // id -> User
	emailIndex     map[string]string           // email -> user id
	userSession    map[string][]*internal.User // sessionID -> users
	meals          map[string]*internal.Meal   // id -> Meal
	ownerMealIndex map[string][]*internal.Meal // ownerID -> meals (sorted, see mealBefore)
	mu             sync.RWMutex
	usersFile      string
	mealsFile      string
	saveUsersChan  chan struct{}
	saveMealsChan  chan struct{}
	shutdownChan   chan struct{}
	saveDelay      time.Duration
	logger         internal.Logger
}

func NewMemoryStorage(usersFile, mealsFile string, logger internal.Logger) (*MemoryStorage, error) {
	s := &MemoryStorage{
		users:          make(map[string]*internal.User),
		emailIndex:     make(map[string]string),
		userSession:    make(map[string][]*internal.User),
		meals:          make(map[string]*internal.Meal),
		ownerMealIndex: make(map[string][]*internal.Meal),
		usersFile:      usersFile,
		mealsFile:      mealsFile,
		saveUsersChan:  make(chan struct{}, 1),
		saveMealsChan:  make(chan struct{}, 1),
		shutdownChan:   make(chan struct{}),
		saveDelay:      500 * time.Millisecond,
		logger:         logger,
	}

	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}
	if err := s.loadMeals(); err != nil {
		logger.Errorf("storage: failed to load meals: %v", err)
		return nil, err
	}

	if s.usersFile != "" {
		go s.saveWorker(s.saveUsersChan, s.saveUsers, "users")
	}
	if s.mealsFile != "" {
		go s.saveWorker(s.saveMealsChan, s.saveMeals, "meals")
	}

	return s, nil
}

// mealBefore is the list order: date descending, then created_at descending,
// then id ascending. The metrics streak depends on this order being total.
func mealBefore(a, b *internal.Meal) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (s *MemoryStorage) loadUsers() error {
	if s.usersFile == "" {
		return nil
	}
	file, err := os.Open(s.usersFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var users []*internal.User
	if err := json.NewDecoder(file).Decode(&users); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.ID] = u
		s.emailIndex[u.Email] = u.ID
		s.userSession[u.SessionID] = append(s.userSession[u.SessionID], u)
	}
	return nil
}

func (s *MemoryStorage) loadMeals() error {
	if s.mealsFile == "" {
		return nil
	}
	file, err := os.Open(s.mealsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var meals []*internal.Meal
	if err := json.NewDecoder(file).Decode(&meals); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range meals {
		s.meals[m.ID] = m
		s.ownerMealIndex[m.OwnerID] = append(s.ownerMealIndex[m.OwnerID], m)
	}
	for owner := range s.ownerMealIndex {
		idx := s.ownerMealIndex[owner]
		sort.Slice(idx, func(i, j int) bool { return mealBefore(idx[i], idx[j]) })
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *MemoryStorage) saveUsers() error {
	s.mu.RLock()
	users := make([]*internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.usersFile, users)
}

func (s *MemoryStorage) saveMeals() error {
	s.mu.RLock()
	meals := make([]*internal.Meal, 0, len(s.meals))
	for _, m := range s.meals {
		meals = append(meals, m)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.mealsFile, meals)
}

func (s *MemoryStorage) saveWorker(signal chan struct{}, save func() error, what string) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *MemoryStorage) signalSave(signal chan struct{}) {
	select {
	case signal <- struct{}{}:
	default:
	}
}

// Close stops the background workers and flushes pending data.
func (s *MemoryStorage) Close() error {
	close(s.shutdownChan)
	if s.usersFile != "" {
		if err := s.saveUsers(); err != nil {
			return err
		}
	}
	if s.mealsFile != "" {
		if err := s.saveMeals(); err != nil {
			return err
		}
	}
	return nil
}

// --- UserRepository ---

func (s *MemoryStorage) SaveUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[user.Email]; exists {
		return ErrDuplicateEmail
	}
	s.users[user.ID] = user
	s.emailIndex[user.Email] = user.ID
	s.userSession[user.SessionID] = append(s.userSession[user.SessionID], user)
	s.signalSave(s.saveUsersChan)
	return nil
}

func (s *MemoryStorage) ListUsers(ctx context.Context, sessionID string) ([]internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	usersPtr := s.userSession[sessionID]
	users := make([]internal.User, len(usersPtr))
	for i, u := range usersPtr {
		users[i] = *u
	}
	return users, nil
}

func (s *MemoryStorage) GetUser(ctx context.Context, sessionID, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok || u.SessionID != sessionID {
		return nil, nil
	}
	u2 := *u
	return &u2, nil
}

// --- MealRepository ---

func (s *MemoryStorage) SaveMeal(ctx context.Context, meal *internal.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meals[meal.ID] = meal
	meals := s.ownerMealIndex[meal.OwnerID]
	inserted := false
	for i, existing := range meals {
		if mealBefore(meal, existing) {
			meals = append(meals[:i], append([]*internal.Meal{meal}, meals[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		meals = append(meals, meal)
	}
	s.ownerMealIndex[meal.OwnerID] = meals
	s.signalSave(s.saveMealsChan)
	return nil
}

func (s *MemoryStorage) ListMeals(ctx context.Context, ownerID string) ([]internal.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mealsPtr, ok := s.ownerMealIndex[ownerID]
	if !ok {
		return []internal.Meal{}, nil
	}
	meals := make([]internal.Meal, len(mealsPtr))
	for i, m := range mealsPtr {
		meals[i] = *m
	}
	return meals, nil
}

func (s *MemoryStorage) GetMeal(ctx context.Context, ownerID, id string) (*internal.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meals[id]
	if !ok || m.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	m2 := *m
	return &m2, nil
}

func (s *MemoryStorage) UpdateMeal(ctx context.Context, meal *internal.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.meals[meal.ID]
	if !ok || existing.OwnerID != meal.OwnerID {
		return ErrNotFound
	}
	existing.Name = meal.Name
	existing.Description = meal.Description
	existing.IsOnDiet = meal.IsOnDiet
	existing.Date = meal.Date

	// The date may have moved, re-sort the owner's index.
	idx := s.ownerMealIndex[existing.OwnerID]
	sort.Slice(idx, func(i, j int) bool { return mealBefore(idx[i], idx[j]) })
	s.signalSave(s.saveMealsChan)
	return nil
}

func (s *MemoryStorage) DeleteMeal(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.meals[id]
	if !ok || existing.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.meals, id)
	idx := s.ownerMealIndex[ownerID]
	for i, m := range idx {
		if m.ID == id {
			s.ownerMealIndex[ownerID] = append(idx[:i], idx[i+1:]...)
			break
		}
	}
	s.signalSave(s.saveMealsChan)
	return nil
}

// --- Compile-time assertions ---
var _ UserRepository = (*MemoryStorage)(nil)
var _ MealRepository = (*MemoryStorage)(nil)
