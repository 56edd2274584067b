package models

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseBookingDate validates a calendar date in the wire format used throughout bookings.
func ParseBookingDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// IntentMetadata is the typed form of the string map attached to a payment intent.
// It travels through the gateway so a booking can be reconciled after the
// tenant's redirect-based confirmation flow.
type IntentMetadata struct {
	ListingID    string
	LandlordID   string
	TenantID     string
	CheckInDate  string
	CheckOutDate string
}

// ToMap flattens the metadata for the gateway boundary.
func (m IntentMetadata) ToMap() map[string]string {
	return map[string]string{
		"listing_id":     m.ListingID,
		"landlord_id":    m.LandlordID,
		"tenant_id":      m.TenantID,
		"check_in_date":  m.CheckInDate,
		"check_out_date": m.CheckOutDate,
	}
}

// IntentMetadataFromMap rebuilds and validates metadata read back from the gateway.
func IntentMetadataFromMap(raw map[string]string) (IntentMetadata, error) {
	m := IntentMetadata{
		ListingID:    raw["listing_id"],
		LandlordID:   raw["landlord_id"],
		TenantID:     raw["tenant_id"],
		CheckInDate:  raw["check_in_date"],
		CheckOutDate: raw["check_out_date"],
	}
	if m.ListingID == "" || m.LandlordID == "" || m.TenantID == "" {
		return IntentMetadata{}, fmt.Errorf("intent metadata is missing required identity fields")
	}
	if _, err := ParseBookingDate(m.CheckInDate); err != nil {
		return IntentMetadata{}, fmt.Errorf("intent metadata has malformed check_in_date %q: %w", m.CheckInDate, err)
	}
	if _, err := ParseBookingDate(m.CheckOutDate); err != nil {
		return IntentMetadata{}, fmt.Errorf("intent metadata has malformed check_out_date %q: %w", m.CheckOutDate, err)
	}
	return m, nil
}

// AuthorizeBookingRequest is the tenant-facing input for creating a payment authorization.
type AuthorizeBookingRequest struct {
	ListingID       string                 `json:"listingId"`
	LandlordID      string                 `json:"landlordId"`
	CheckInDate     string                 `json:"checkInDate"`
	CheckOutDate    string                 `json:"checkOutDate"`
	FirstMonthRent  float64                `json:"firstMonthRent"`
	ServiceFee      float64                `json:"serviceFee"`
	TotalAmount     float64                `json:"totalAmount"`
	SecurityDeposit float64                `json:"securityDeposit"`
	ApplicationData map[string]interface{} `json:"applicationData"`
}

// AuthorizeBookingResponse is returned to the tenant's payment confirmation UI.
type AuthorizeBookingResponse struct {
	ClientSecret             string    `json:"clientSecret"`
	BookingID                string    `json:"bookingId"`
	PaymentIntentID          string    `json:"paymentIntentId"`
	LandlordResponseDeadline time.Time `json:"landlordResponseDeadline"`
}

// VerifyAuthorizationResult reports the reconciled state after client confirmation.
type VerifyAuthorizationResult struct {
	Booking                  *Booking      `json:"booking,omitempty"`
	PaymentStatus            PaymentStatus `json:"paymentStatus"`
	RequiresLandlordResponse bool          `json:"requiresLandlordResponse"`
}

// CapturedPayment summarizes the gateway side of a finalized charge.
type CapturedPayment struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
