package model

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SelfPasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UpdatePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ShareDashboardRequest struct {
	Recipients    string `json:"recipients"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	DashboardLink string `json:"dashboardLink"`
}

type VisualizationRequest struct {
	DatabaseDescription  string `json:"databaseDescription"`
	NaturalLanguageQuery string `json:"naturalLanguageQuery"`
}
