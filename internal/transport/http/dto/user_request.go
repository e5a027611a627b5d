package dto

import "strings"

// -------- Core auth --------

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	return Validate(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return Validate(r)
}

// -------- Email verification --------

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ResendVerificationRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return Validate(r)
}

// -------- Profile / password --------

type UpdateProfileRequest struct {
	Name  string  `json:"name" validate:"required,min=3,max=32"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

func (r *UpdateProfileRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Email != nil {
		e := strings.TrimSpace(*r.Email)
		if e == "" {
			r.Email = nil
		} else {
			r.Email = &e
		}
	}
	return Validate(r)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

func (r *ChangePasswordRequest) Validate() error {
	return Validate(r)
}
