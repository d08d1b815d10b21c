package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)

	SavePlacement(ctx context.Context, in Placement) error
	ClearPlacement(ctx context.Context, taskID string) error
	SaveScores(ctx context.Context, taskID string, in Scores) error

	GetPreferences(ctx context.Context) (Preferences, error)
	SavePreferences(ctx context.Context, in Preferences) error
}
