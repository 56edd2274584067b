package models

import "time"

// ProfileRole distinguishes the three caller roles the marketplace knows.
type ProfileRole string

const (
	RoleTenant   ProfileRole = "tenant"
	RoleLandlord ProfileRole = "landlord"
	RoleAdmin    ProfileRole = "admin"
)

// Profile is the authenticated identity record backing authorization checks.
type Profile struct {
	ID        string      `bson:"id" json:"id"`
	Email     string      `bson:"email" json:"email"`
	FullName  string      `bson:"full_name" json:"fullName"`
	Role      ProfileRole `bson:"role" json:"role"`
	CreatedAt time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether the profile carries administrative privilege.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Listing is the read-only view of a rental listing owned by an external catalog.
type Listing struct {
	ID          string  `bson:"id" json:"id"`
	LandlordID  string  `bson:"landlord_id" json:"landlordId"`
	Title       string  `bson:"title" json:"title"`
	City        string  `bson:"city" json:"city"`
	MonthlyRent float64 `bson:"monthly_rent" json:"monthlyRent"`
	Active      bool    `bson:"active" json:"active"`
}
