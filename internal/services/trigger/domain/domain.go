// Package domain holds the request and report types for the HTTP trigger surface
package domain

import (
	"context"
	"time"

	"ghstats/internal/core/records"

	collectordom "ghstats/internal/services/collector/domain"
	stashdom "ghstats/internal/services/stash/domain"
)

// TriggerRequest carries the optional collection parameters accepted over
// HTTP. A zero request runs the scheduled window
type TriggerRequest struct {
	// Hours overrides the trailing window length
	Hours int `json:"hours,omitempty" validate:"omitempty,min=1,max=8760"`

	// Days overrides the trailing window when Hours is zero
	Days int `json:"days,omitempty" validate:"omitempty,min=1,max=365"`

	// Repos narrows collection to these repositories
	Repos []string `json:"repositories,omitempty" validate:"omitempty,dive,min=1"`

	// Resume picks an interrupted run back up by its id
	Resume string `json:"resume,omitempty"`
}

// Window reports the collection window a run actually covered
type Window struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
	Hours int       `json:"hours"`
}

// TriggerResponse is the data payload returned after a triggered run
type TriggerResponse struct {
	RunID        string                 `json:"run_id"`
	Status       records.RunStatus      `json:"status"`
	Organization string                 `json:"organization"`
	Window       Window                 `json:"collection_window"`
	Repositories []string               `json:"repositories,omitempty"`
	Counts       map[records.Kind]int64 `json:"counts,omitempty"`
	Partial      []string               `json:"partial,omitempty"`
	Total        int64                  `json:"total"`
	Message      string                 `json:"message"`
	Timestamp    time.Time              `json:"timestamp"`
}

// TriggerPort is the public port exposed by the module
type TriggerPort interface {
	// Trigger resolves the collection window and runs a collection to completion
	Trigger(ctx context.Context, req TriggerRequest) (TriggerResponse, error)
}

// Ports declares the cross module ports the trigger service consumes
type Ports struct {
	// Runner executes collection runs (required)
	Runner collectordom.RunnerPort

	// Stasher backs the storage report endpoints (required)
	Stasher stashdom.StasherPort
}
