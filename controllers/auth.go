// controllers/auth.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-marketplace/middleware"
	"go-marketplace/models"
	"go-marketplace/utils"
)

// Shared request validator for all controllers.
var validate = validator.New()

const (
	verificationTokenLifetime = 24 * time.Hour
	otpLifetime               = 10 * time.Minute
)

// AuthController handles registration, login and account recovery
type AuthController struct {
	Collection   *mongo.Collection
	EmailService *utils.EmailService
	Logger       *zap.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(client *mongo.Client, emailService *utils.EmailService, logger *zap.Logger) *AuthController {
	return &AuthController{
		Collection:   utils.Collection(client, "users"),
		EmailService: emailService,
		Logger:       logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=user seller"`
}

// Register handles user registration
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	count, err := ac.Collection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		utils.RespondError(w, http.StatusConflict, "User already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	token, err := utils.GenerateToken()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error generating verification token")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	now := time.Now()
	user := models.User{
		Name:                    req.Name,
		Email:                   req.Email,
		Password:                string(hashedPassword),
		Role:                    role,
		IsActive:                true,
		EmailVerified:           false,
		VerificationToken:       token,
		VerificationTokenExpiry: now.Add(verificationTokenLifetime),
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if _, err := ac.Collection.InsertOne(ctx, user); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	go func(email, token string) {
		if err := ac.EmailService.SendVerificationEmail(email, token); err != nil {
			ac.Logger.Error("failed to send verification email", zap.String("email", email), zap.Error(err))
		}
	}(user.Email, token)

	utils.RespondSuccess(w, http.StatusCreated,
		"User registered successfully. Please check your email to verify your account.", nil)
}

// VerifyEmail handles email verification
func (ac *AuthController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "Verification token missing")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{"verification_token": token}).Decode(&user)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "User not found or already verified")
		return
	}
	if time.Now().After(user.VerificationTokenExpiry) {
		utils.RespondError(w, http.StatusBadRequest, "Verification token expired")
		return
	}

	_, err = ac.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"email_verified": true,
			"updated_at":     time.Now(),
		},
		"$unset": bson.M{
			"verification_token":        "",
			"verification_token_expiry": "",
		},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating user verification status")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Email verified successfully. You can now log in.", nil)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles user authentication
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var creds loginRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(creds); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{"email": strings.ToLower(creds.Email)}).Decode(&user)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !user.IsActive {
		utils.RespondError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}
	if !user.EmailVerified {
		utils.RespondError(w, http.StatusUnauthorized, "Email not verified")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(utils.TokenLifetime),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	user.Password = ""
	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Logout clears the session cookie
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	utils.RespondSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword generates a one-time password and emails it to the user
func (ac *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&user)
	if err != nil {
		// Do not reveal whether the email is registered.
		utils.RespondSuccess(w, http.StatusOK, "If the email is registered, a reset code has been sent.", nil)
		return
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error generating reset code")
		return
	}

	_, err = ac.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"otp":        otp,
			"otp_expiry": time.Now().Add(otpLifetime),
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error storing reset code")
		return
	}

	go func(email, otp string) {
		if err := ac.EmailService.SendOTPEmail(email, otp); err != nil {
			ac.Logger.Error("failed to send otp email", zap.String("email", email), zap.Error(err))
		}
	}(user.Email, otp)

	utils.RespondSuccess(w, http.StatusOK, "If the email is registered, a reset code has been sent.", nil)
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword verifies the one-time password and sets a new password
func (ac *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&user)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid reset code")
		return
	}

	if user.OTP == "" || user.OTP != req.OTP || time.Now().After(user.OTPExpiry) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid or expired reset code")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	_, err = ac.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"password":   string(hashedPassword),
			"updated_at": time.Now(),
		},
		"$unset": bson.M{
			"otp":        "",
			"otp_expiry": "",
		},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating password")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Password reset successfully. You can now log in.", nil)
}

// GetProfile retrieves the authenticated user's profile
func (ac *AuthController) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	user.Password = ""
	utils.RespondSuccess(w, http.StatusOK, "", map[string]interface{}{"user": user})
}

type updateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateProfile updates the authenticated user's profile fields
func (ac *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := ac.Collection.UpdateOne(ctx, bson.M{"email": claims.Email}, bson.M{
		"$set": bson.M{
			"name":       req.Name,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating profile")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Profile updated successfully", nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword sets a new password after checking the current one
func (ac *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	_, err = ac.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"password":   string(hashedPassword),
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating password")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// Contact relays a contact-form message to the support inbox
func (ac *AuthController) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ac.EmailService.SendContactEmail(req.Name, req.Email, req.Message); err != nil {
		ac.Logger.Error("failed to send contact email", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "Message sent successfully", nil)
}
