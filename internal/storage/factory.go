package storage

import "github.com/yuriataaide/dailydiet/internal"

func NewMemoryRepositories(usersFile, mealsFile string, logger internal.Logger) (UserRepository, MealRepository, error) {
	storage, err := NewMemoryStorage(usersFile, mealsFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return storage, storage, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (UserRepository, MealRepository, error) {
	storage, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, nil, err
	}
	return storage, storage, nil
}
