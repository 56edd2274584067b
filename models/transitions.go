package models

import "fmt"

// BookingAction is an event applied to a booking's payment state.
type BookingAction string

const (
	// ActionAuthorize records a successful hold (gateway reports requires_capture).
	ActionAuthorize BookingAction = "authorize"
	// ActionSettle records a payment that was captured on the gateway side.
	ActionSettle BookingAction = "settle"
	// ActionFail records a failed client confirmation.
	ActionFail BookingAction = "fail"
	// ActionApprove is the landlord accepting the booking. No capture happens here.
	ActionApprove BookingAction = "approve"
	// ActionDecline is the landlord rejecting the booking; the hold is released.
	ActionDecline BookingAction = "decline"
	// ActionCapture is the privileged finalization of an approved hold.
	ActionCapture BookingAction = "capture"
	// ActionExpire cancels a hold the landlord never answered.
	ActionExpire BookingAction = "expire"
	// ActionCancel voids a pending payment that was cancelled at the gateway.
	ActionCancel BookingAction = "cancel"
)

// BookingState couples the payment status with its booking lifecycle status.
type BookingState struct {
	Payment PaymentStatus
	Booking BookingStatus
}

// InvalidTransitionError reports an action applied outside its valid payment state.
type InvalidTransitionError struct {
	From   PaymentStatus
	Action BookingAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q is not valid while payment status is %q", e.Action, e.From)
}

var transitions = map[PaymentStatus]map[BookingAction]BookingState{
	PaymentPending: {
		ActionAuthorize: {PaymentAuthorized, BookingPendingLandlordResponse},
		ActionSettle:    {PaymentCaptured, BookingConfirmed},
		ActionFail:      {PaymentFailed, BookingCancelled},
		ActionCancel:    {PaymentCancelled, BookingCancelled},
	},
	PaymentAuthorized: {
		ActionApprove: {PaymentApprovedAwaitingCapture, BookingApprovedAwaitingPayment},
		ActionDecline: {PaymentCancelled, BookingCancelled},
		ActionExpire:  {PaymentCancelled, BookingCancelled},
	},
	PaymentApprovedAwaitingCapture: {
		ActionCapture: {PaymentCaptured, BookingConfirmed},
	},
}

// Transition resolves the state an action leads to from the current payment status.
// Every invalid (status, action) pair yields an *InvalidTransitionError.
func Transition(current PaymentStatus, action BookingAction) (BookingState, error) {
	if byAction, ok := transitions[current]; ok {
		if next, ok := byAction[action]; ok {
			return next, nil
		}
	}
	return BookingState{}, &InvalidTransitionError{From: current, Action: action}
}
