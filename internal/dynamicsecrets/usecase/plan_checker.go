package usecase

import (
	"context"

	"github.com/google/uuid"
)

type configPlanChecker struct {
	enabled bool
}

func (c *configPlanChecker) CanUseDynamicSecrets(context.Context, uuid.UUID) (bool, error) {
	return c.enabled, nil
}

// NewConfigPlanChecker answers every plan question with the configured flag.
// Installations with a billing backend replace it with their own PlanChecker.
func NewConfigPlanChecker(enabled bool) PlanChecker {
	return &configPlanChecker{enabled: enabled}
}
