package service

import "github.com/jengzang/trakxmap-backend-go/internal/repository"

// ErrTrackNotFound is returned for unknown track ids
var ErrTrackNotFound = repository.ErrTrackNotFound
