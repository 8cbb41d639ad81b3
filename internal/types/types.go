// Package types defines the resource records exchanged with the stray-animal
// care service. Field names mirror the backend's JSON contract; enum values
// are the exact wire strings the backend accepts.
package types

import (
	"encoding/json"
	"fmt"
)

// Species is the animal species classification.
type Species string

const (
	SpeciesDog   Species = "DOG"
	SpeciesCat   Species = "CAT"
	SpeciesBird  Species = "BIRD"
	SpeciesOther Species = "OTHER"
)

// Gender is the animal's gender as far as the reporter could tell.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

// HealthStatus describes the animal's observed condition.
type HealthStatus string

const (
	HealthHealthy    HealthStatus = "HEALTHY"
	HealthSick       HealthStatus = "SICK"
	HealthInjured    HealthStatus = "INJURED"
	HealthRecovering HealthStatus = "RECOVERING"
	HealthCritical   HealthStatus = "CRITICAL"
)

// Temperament describes the animal's behavior toward people.
type Temperament string

const (
	TemperamentFriendly   Temperament = "FRIENDLY"
	TemperamentShy        Temperament = "SHY"
	TemperamentAggressive Temperament = "AGGRESSIVE"
	TemperamentNeutral    Temperament = "NEUTRAL"
	TemperamentPlayful    Temperament = "PLAYFUL"
	TemperamentCalm       Temperament = "CALM"
)

// ApprovalStatus is the report workflow state gating public visibility.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Role is a user's permission level.
type Role string

const (
	RolePublicUser Role = "PUBLIC_USER"
	RoleVolunteer  Role = "VOLUNTEER"
	RoleAdmin      Role = "ADMIN"
)

// User is an authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the persisted auth state. IsAuthenticated is stored for
// round-trip fidelity with older session files but is always recomputed
// from User and Token on load.
type Session struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// LocationRecord is a normalized location produced by geocoding or manual
// entry. A record from a failed reverse geocode keeps its coordinates and
// carries empty strings for the textual fields.
type LocationRecord struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HasCoordinates reports whether the record carries a usable position.
func (l LocationRecord) HasCoordinates() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// AnimalLocation is one sighting location attached to an animal.
type AnimalLocation struct {
	ID        string  `json:"id,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	Area      string  `json:"area,omitempty"`
	City      string  `json:"city"`
	State     string  `json:"state,omitempty"`
	IsCurrent bool    `json:"isCurrent"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Reporter identifies who filed a report. The backend serializes it either
// as a bare user ID string or as an embedded user object, so it carries a
// custom unmarshaler.
type Reporter struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UnmarshalJSON accepts both the string and object encodings.
func (r *Reporter) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Reporter{ID: id}
		return nil
	}
	type plain Reporter
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("reporter: %w", err)
	}
	*r = Reporter(p)
	return nil
}

// Animal is a reported stray animal.
type Animal struct {
	ID               string           `json:"id"`
	UniqueIdentifier string           `json:"uniqueIdentifier,omitempty"`
	Name             string           `json:"name,omitempty"`
	Species          Species          `json:"species"`
	Breed            string           `json:"breed"`
	Color            string           `json:"color,omitempty"`
	Gender           Gender           `json:"gender"`
	Age              int              `json:"age,omitempty"`
	Temperament      Temperament      `json:"temperament,omitempty"`
	HealthStatus     HealthStatus     `json:"healthStatus"`
	IsVaccinated     bool             `json:"isVaccinated,omitempty"`
	IsSterilized     bool             `json:"isSterilized,omitempty"`
	IsNeutered       bool             `json:"isNeutered,omitempty"`
	Description      string           `json:"description,omitempty"`
	ApprovalStatus   ApprovalStatus   `json:"approvalStatus"`
	ReportedBy       Reporter         `json:"reportedBy"`
	ReportedAt       string           `json:"reportedAt,omitempty"`
	CreatedAt        string           `json:"createdAt,omitempty"`
	UpdatedAt        string           `json:"updatedAt,omitempty"`
	LastSeenAt       string           `json:"lastSeenAt,omitempty"`
	ImageURLs        []string         `json:"imageUrls,omitempty"`
	Locations        []AnimalLocation `json:"locations,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
}

// CurrentLocation returns the location flagged current, or the first one.
func (a *Animal) CurrentLocation() (AnimalLocation, bool) {
	for _, loc := range a.Locations {
		if loc.IsCurrent {
			return loc, true
		}
	}
	if len(a.Locations) > 0 {
		return a.Locations[0], true
	}
	return AnimalLocation{}, false
}

// Page is one page of a listing. Page numbers are 1-based at this boundary;
// the services layer translates to and from the backend's 0-based form.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Page          int `json:"page"`
}

// AnimalStats is the public animal census.
type AnimalStats struct {
	TotalAnimals    int `json:"totalAnimals"`
	ApprovedAnimals int `json:"approvedAnimals"`
	PendingAnimals  int `json:"pendingAnimals"`
	RejectedAnimals int `json:"rejectedAnimals"`
	DogsCount       int `json:"dogsCount"`
	CatsCount       int `json:"catsCount"`
	OtherCount      int `json:"otherCount"`
}

// MyStats summarizes the logged-in user's contributions.
type MyStats struct {
	TotalReports       int `json:"totalReports"`
	TotalCommunityLogs int `json:"totalCommunityLogs"`
	TotalUpvotes       int `json:"totalUpvotes"`
	AnimalsHelped      int `json:"animalsHelped"`
	RecentActivity     int `json:"recentActivity"`
}

// CareType categorizes a care record.
type CareType string

const (
	CareVaccination      CareType = "VACCINATION"
	CareSterilization    CareType = "STERILIZATION"
	CareFeeding          CareType = "FEEDING"
	CareMedicalTreatment CareType = "MEDICAL_TREATMENT"
	CareGrooming         CareType = "GROOMING"
	CareCheckup          CareType = "CHECKUP"
)

// CareRecord is a logged care action for an animal.
type CareRecord struct {
	ID          string   `json:"id"`
	AnimalID    string   `json:"animalId"`
	CareType    CareType `json:"careType"`
	Description string   `json:"description"`
	PerformedBy Reporter `json:"performedBy"`
	PerformedAt string   `json:"performedAt"`
	NextDueDate string   `json:"nextDueDate,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// FeedingLog is one feeding event for an animal.
type FeedingLog struct {
	ID       string   `json:"id"`
	AnimalID string   `json:"animalId"`
	FoodType string   `json:"foodType"`
	Quantity string   `json:"quantity,omitempty"`
	FedBy    Reporter `json:"fedBy"`
	FedAt    string   `json:"fedAt"`
	Notes    string   `json:"notes,omitempty"`
}

// CommunityLogType categorizes a community post.
type CommunityLogType string

const (
	LogSighting     CommunityLogType = "SIGHTING"
	LogFeeding      CommunityLogType = "FEEDING"
	LogHealthUpdate CommunityLogType = "HEALTH_UPDATE"
	LogBehavior     CommunityLogType = "BEHAVIOR"
	LogOther        CommunityLogType = "OTHER"
)

// Urgency grades how quickly a community log needs attention.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// CommunityLog is a community sighting or update posted against an animal.
type CommunityLog struct {
	ID          string           `json:"id"`
	AnimalID    string           `json:"animalId,omitempty"`
	Type        CommunityLogType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Urgency     Urgency          `json:"urgency"`
	CreatedBy   Reporter         `json:"createdBy"`
	CreatedAt   string           `json:"createdAt"`
	Location    *LocationRecord  `json:"location,omitempty"`
	Upvotes     int              `json:"upvotes"`
	IsUpvoted   bool             `json:"isUpvoted"`
}

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput is a registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the unwrapped payload of a successful login, registration
// or token refresh.
type AuthResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
	User         *User  `json:"user"`
}
