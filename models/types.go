package models

import "time"

// Vote kind constants
const (
	VoteConfirm = "confirm"
	VoteDeny    = "deny"
)

// ValidVoteKind reports whether s is a recognized vote kind.
func ValidVoteKind(s string) bool {
	return s == VoteConfirm || s == VoteDeny
}

// Position is a WGS84 coordinate in degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CameraLocation anchors a threat to the camera that reported it.
type CameraLocation struct {
	Position
	Label string `json:"label"`
}

// Request types

type ReportThreatRequest struct {
	Score       int               `json:"score"`
	Explanation string            `json:"explanation"`
	Images      []string          `json:"images,omitempty"`
	Camera      *CameraLocation   `json:"camera,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type UpdateThreatRequest struct {
	Score       int               `json:"score"`
	Explanation string            `json:"explanation"`
	Images      []string          `json:"images,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type RegisterObserverRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CastVoteRequest struct {
	Vote string `json:"vote"`
}

// Response types

type ReportThreatResponse struct {
	ThreatID string `json:"threat_id"`
}

type RegisterObserverResponse struct {
	ObserverToken string `json:"observer_token"`
}

type CastVoteResponse struct {
	Applied bool   `json:"applied"`
	Message string `json:"message"`
	Threat  Threat `json:"threat"`
}

type NearbyResponse struct {
	Threats     []ThreatView `json:"threats"`
	ActiveCount int          `json:"active_count"`
}

// Domain types

// Threat is the unit of record. Vote-derived fields (Score once voted on,
// Confirms, Denies, Voters, Resolved) are owned by the vote engine; producer
// updates must never touch them.
type Threat struct {
	ID          string            `json:"id"`
	Explanation string            `json:"explanation"`
	Score       int               `json:"score"`
	Camera      *CameraLocation   `json:"camera,omitempty"`
	Images      []string          `json:"images,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Confirms    int               `json:"confirms"`
	Denies      int               `json:"denies"`
	Voters      map[string]string `json:"-"` // observer token -> vote kind, never exposed
	Active      bool              `json:"active"`
	Resolved    bool              `json:"resolved"`
	FirstSeen   time.Time         `json:"first_seen"`
	LastSeen    time.Time         `json:"last_seen"`
}

// Clone returns a deep copy. The vote ledger transitions a copy so a failed
// commit never leaves a half-mutated threat behind.
func (t Threat) Clone() Threat {
	c := t
	if t.Camera != nil {
		cam := *t.Camera
		c.Camera = &cam
	}
	if t.Images != nil {
		c.Images = append([]string(nil), t.Images...)
	}
	if t.Metadata != nil {
		c.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	if t.Voters != nil {
		c.Voters = make(map[string]string, len(t.Voters))
		for k, v := range t.Voters {
			c.Voters[k] = v
		}
	}
	return c
}

// ThreatView is a threat annotated for one observer.
type ThreatView struct {
	Threat
	MyVote        string  `json:"my_vote,omitempty"`
	DistanceMiles float64 `json:"distance_miles"`
}

// Observer is a registered alert recipient and voter identity.
type Observer struct {
	Token     string     `json:"-"`
	Name      string     `json:"name"`
	Phone     string     `json:"-"`
	Position  *Position  `json:"position,omitempty"`
	LocatedAt *time.Time `json:"located_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// VoteRequest is one observer's vote on one threat. Ephemeral, never stored.
type VoteRequest struct {
	ThreatID   string
	ObserverID string
	Kind       string
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
