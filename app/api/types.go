package api

import (
	"github.com/lysyi3m/politics-watch/app/database"
	"github.com/lysyi3m/politics-watch/app/tasks"
)

const (
	defaultHitLimit = 50
	maxHitLimit     = 500
)

type Handler struct {
	seenRepo  database.SeenRepository
	hitRepo   database.HitRepository
	scheduler tasks.TaskSchedulerInterface
	version   string
}
