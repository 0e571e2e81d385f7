package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold.
const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User represents an account in the system. Passwords are stored as bcrypt
// hashes and never serialized to JSON. Accounts are soft-deleted by clearing
// is_active; documents are never removed.
type User struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                    string             `bson:"name" json:"name"`
	Email                   string             `bson:"email" json:"email"`
	Password                string             `bson:"password,omitempty" json:"-"`
	Role                    string             `bson:"role" json:"role"`
	IsActive                bool               `bson:"is_active" json:"is_active"`
	EmailVerified           bool               `bson:"email_verified" json:"email_verified"`
	VerificationToken       string             `bson:"verification_token,omitempty" json:"-"`
	VerificationTokenExpiry time.Time          `bson:"verification_token_expiry,omitempty" json:"-"`
	OTP                     string             `bson:"otp,omitempty" json:"-"`
	OTPExpiry               time.Time          `bson:"otp_expiry,omitempty" json:"-"`
	CreatedAt               time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt               time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}
