package models

import "time"

// PaymentStatus is the authoritative payment state of a booking.
type PaymentStatus string

const (
	PaymentPending                 PaymentStatus = "pending"
	PaymentAuthorized              PaymentStatus = "authorized"
	PaymentApprovedAwaitingCapture PaymentStatus = "approved_awaiting_capture"
	PaymentCaptured                PaymentStatus = "captured"
	PaymentCancelled               PaymentStatus = "cancelled"
	PaymentFailed                  PaymentStatus = "failed"
)

// BookingStatus is the booking lifecycle state, coupled 1:1 to payment transitions.
type BookingStatus string

const (
	BookingPendingPayment          BookingStatus = "pending_payment"
	BookingPendingLandlordResponse BookingStatus = "pending_landlord_response"
	BookingApprovedAwaitingPayment BookingStatus = "approved_awaiting_payment"
	BookingConfirmed               BookingStatus = "confirmed"
	BookingCancelled               BookingStatus = "cancelled"
)

// LandlordResponse records the landlord's decision. Empty means not yet responded.
type LandlordResponse string

const (
	ResponseNone     LandlordResponse = ""
	ResponseApproved LandlordResponse = "approved"
	ResponseDeclined LandlordResponse = "declined"
)

// BookingCurrency is the only currency the marketplace charges in.
const BookingCurrency = "eur"

// Booking represents a tenancy booking backed by a delayed-capture payment authorization.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	ListingID  string `bson:"listing_id" json:"listingId"`
	TenantID   string `bson:"tenant_id" json:"tenantId"`
	LandlordID string `bson:"landlord_id" json:"landlordId"`

	CheckInDate  string `bson:"check_in_date" json:"checkInDate"`   // "YYYY-MM-DD"
	CheckOutDate string `bson:"check_out_date" json:"checkOutDate"` // "YYYY-MM-DD"

	MonthlyRent     float64 `bson:"monthly_rent" json:"monthlyRent"`
	SecurityDeposit float64 `bson:"security_deposit" json:"securityDeposit"`
	TotalAmount     float64 `bson:"total_amount" json:"totalAmount"`
	Currency        string  `bson:"currency" json:"currency"`

	PaymentAuthorizationID string        `bson:"payment_authorization_id" json:"paymentAuthorizationId"`
	PaymentStatus          PaymentStatus `bson:"payment_status" json:"paymentStatus"`
	AuthorizationExpiresAt time.Time     `bson:"authorization_expires_at" json:"authorizationExpiresAt"`

	LandlordResponse      LandlordResponse `bson:"landlord_response" json:"landlordResponse"`
	LandlordResponseDueAt time.Time        `bson:"landlord_response_due_at" json:"landlordResponseDueAt"`
	Status                BookingStatus    `bson:"status" json:"status"`

	ApplicationData map[string]interface{} `bson:"application_data,omitempty" json:"applicationData,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
