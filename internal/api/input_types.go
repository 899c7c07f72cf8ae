package api

type credentialsInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

type deleteAccountInput struct {
	Password string `json:"password" form:"password"`
}

// itemEditInput accepts the value as a JSON number or a free-form string;
// both go through the same lenient amount parser.
type itemEditInput struct {
	Field string `json:"field" form:"field"`
	Value any    `json:"value" form:"value"`
}

type saveDraftInput struct {
	Notes string `json:"notes" form:"notes"`
}
