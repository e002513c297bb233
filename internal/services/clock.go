package services

import (
	"time"

	"communityprogram/internal/domain"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() domain.Clock { return systemClock{} }
