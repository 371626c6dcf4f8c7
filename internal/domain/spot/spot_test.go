package spot

import "testing"

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{NewID(), true},
		{"507f1f77bcf86cd799439011", true},
		{"507f1f77bcf86cd79943901", false},
		{"zzzzzzzzzzzzzzzzzzzzzzzz", false},
		{"", false},
		{"not-an-id", false},
	}

	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestNewFromCreateRequest(t *testing.T) {
	lat, lng := 1.0, 2.0
	s := NewFromCreateRequest(CreateSpotRequest{
		Latitude:    &lat,
		Longitude:   &lng,
		Description: "d",
		Type:        "park",
	}, "a@x.com")

	if !ValidID(s.ID) {
		t.Fatalf("generated id %q is not valid", s.ID)
	}
	if s.OwnerEmail != "a@x.com" || s.Latitude != 1 || s.Longitude != 2 || s.Type != "park" {
		t.Fatalf("unexpected spot %+v", s)
	}
}

func TestUpdateSpotRequestApplyIsPartial(t *testing.T) {
	s := WorkoutSpot{ID: "x", Description: "old", Type: "park", Latitude: 3}
	gym := "gym"

	got := UpdateSpotRequest{Type: &gym}.Apply(s)

	if got.Type != "gym" || got.Description != "old" || got.Latitude != 3 {
		t.Fatalf("unexpected spot %+v", got)
	}
	if (UpdateSpotRequest{}).Empty() != true {
		t.Fatalf("zero patch should be empty")
	}
}
