package dto

// RegisterRequest represents the request to start registration
type RegisterRequest struct {
	Username    string  `json:"username" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	FullName    string  `json:"fullName" binding:"required"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth"`
	Gender      *string `json:"gender"`
}

// VerifyEmailRequest represents the request to confirm an email with a code
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"verificationCode" binding:"required"`
}

// ResendVerificationRequest represents the request to re-send a verification code
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the request to exchange a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateProfileRequest represents the request to update the current profile
type UpdateProfileRequest struct {
	FullName    string  `json:"fullName"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth"`
	Gender      *string `json:"gender"`
}

// ChangePasswordRequest represents the request to change the password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// StartPlanRequest represents the request to start the quit plan wizard
type StartPlanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PlanStepRequest represents a single wizard step submission
type PlanStepRequest struct {
	Step              int      `json:"step" binding:"required"`
	TargetQuitDate    *string  `json:"targetQuitDate"`
	CigarettesPerDay  *int     `json:"cigarettesPerDay"`
	PricePerPack      *float64 `json:"pricePerPack"`
	CigarettesPerPack *int     `json:"cigarettesPerPack"`
}

// CreateMoodEntryRequest represents the request to record a mood entry
type CreateMoodEntryRequest struct {
	Mood         int    `json:"mood" binding:"required"`
	CravingLevel int    `json:"cravingLevel"`
	Note         string `json:"note"`
}

// UpsertProgressRequest represents the request to record daily progress
type UpsertProgressRequest struct {
	EntryDate        string  `json:"entryDate" binding:"required"`
	CigarettesSmoked int     `json:"cigarettesSmoked"`
	MoneySpent       float64 `json:"moneySpent"`
}

// CreateBookingRequest represents the request to book a coach session
type CreateBookingRequest struct {
	CoachID     string `json:"coachId" binding:"required"`
	ScheduledAt string `json:"scheduledAt" binding:"required"`
	Note        string `json:"note"`
}

// CreatePostRequest represents the request to create a community post
type CreatePostRequest struct {
	Title   string  `json:"title" binding:"required"`
	Body    string  `json:"body" binding:"required"`
	PhotoID *string `json:"photoId"`
}

// UpdatePostRequest represents the request to update a community post
type UpdatePostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// CreateCommentRequest represents the request to comment on a post
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// UpgradeMembershipRequest represents the request to change the membership tier
type UpgradeMembershipRequest struct {
	PlanCode string `json:"planCode" binding:"required"`
}
