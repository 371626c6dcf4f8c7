package spot

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// NewID returns a fresh 24-hex object id.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// ValidID reports whether id is a well-formed 24-hex object id.
func ValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

func NewFromCreateRequest(req CreateSpotRequest, ownerEmail string) WorkoutSpot {
	now := time.Now().UTC()

	s := WorkoutSpot{
		ID:          NewID(),
		Description: req.Description,
		Type:        req.Type,
		OwnerEmail:  ownerEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.Latitude != nil {
		s.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		s.Longitude = *req.Longitude
	}

	return s
}
