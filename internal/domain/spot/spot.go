package spot

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("workout spot not found")

type WorkoutSpot struct {
	ID          string    `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	OwnerEmail  string    `json:"owner_email"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// pointers so that a missing coordinate is told apart from 0
type CreateSpotRequest struct {
	Latitude    *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Description string   `json:"description" binding:"omitempty,max=1000"`
	Type        string   `json:"type" binding:"required,max=80"`
}

// UpdateSpotRequest is a partial update: nil fields are left untouched.
// Location and owner are not part of it.
type UpdateSpotRequest struct {
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Type        *string `json:"type" binding:"omitempty,min=1,max=80"`
}

func (r UpdateSpotRequest) Empty() bool {
	return r.Description == nil && r.Type == nil
}

// Apply returns a copy of s with the patch applied.
func (r UpdateSpotRequest) Apply(s WorkoutSpot) WorkoutSpot {
	if r.Description != nil {
		s.Description = *r.Description
	}
	if r.Type != nil {
		s.Type = *r.Type
	}
	return s
}

type ByIDsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}
