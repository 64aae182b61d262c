package model

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	VerificationStatusPending  = "pending"
	VerificationStatusVerified = "verified"
	VerificationStatusRejected = "rejected"

	ManualRequestStatusPending  = "pending"
	ManualRequestStatusApproved = "approved"
	ManualRequestStatusDeclined = "declined"
)

// Profile is any registered user of the booking product, artist or client.
type Profile struct {
	bun.BaseModel `bun:"profiles,alias:p"`

	ProfileID   string    `bun:",pk" json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// ArtistProfile extends a Profile for users that take bookings.
type ArtistProfile struct {
	bun.BaseModel `bun:"artist_profiles,alias:ap"`

	ProfileID          string    `bun:",pk" json:"id"`
	VerificationStatus string    `json:"verificationStatus"`
	Location           string    `json:"location"`
	CreatedAt          time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// ManualRequest is a booking request that needs an administrator to approve it.
type ManualRequest struct {
	bun.BaseModel `bun:"manual_requests,alias:mr"`

	RequestID       int64     `bun:",pk,autoincrement" json:"id"`
	ClientProfileID string    `json:"clientId"`
	ArtistProfileID string    `json:"artistId"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
