package account

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"uk.co.dudmesh.emprendenet/internal/model"
	"uk.co.dudmesh.emprendenet/internal/validate"
)

type Kind int

const (
	KindLogin Kind = iota
	KindRegister
	KindChangePassword
	KindEditProfile
	KindDeleteAccount
)

func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "login"
	case KindRegister:
		return "register"
	case KindChangePassword:
		return "change-password"
	case KindEditProfile:
		return "edit-profile"
	case KindDeleteAccount:
		return "delete-account"
	default:
		return "unknown"
	}
}

// Request is one of LoginRequest, RegisterRequest, ChangePasswordRequest,
// EditProfileRequest or DeleteAccountRequest. The set is closed, each
// member carries its own checks.
type Request interface {
	Kind() Kind
	check(ctx context.Context, s *Service) (model.Problem, error)
}

type Credentials struct {
	Name     string
	Password string
	Remember bool
}

func (c Credentials) problem() model.Problem {
	validName := validate.Is(c.Name, validate.RuleUserName)
	validPassword := validate.Is(c.Password, validate.RulePassword)
	switch {
	case !validName && !validPassword:
		return model.ProblemInvalidNameAndPassword
	case !validName:
		return model.ProblemInvalidName
	case !validPassword:
		return model.ProblemInvalidPassword
	default:
		return model.ProblemNone
	}
}

type LoginRequest struct {
	Credentials
}

func (LoginRequest) Kind() Kind { return KindLogin }

func (r LoginRequest) check(ctx context.Context, s *Service) (model.Problem, error) {
	if problem := r.problem(); problem != model.ProblemNone {
		return problem, nil
	}

	user, err := s.users.GetByName(ctx, r.Name)
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return model.ProblemNonexistentUser, nil
		}
		return model.ProblemNone, err
	}

	if !s.users.CheckPassword(user, r.Password) {
		return model.ProblemIncorrectPassword, nil
	}
	return model.ProblemNone, nil
}

type RegisterRequest struct {
	Credentials
}

func (RegisterRequest) Kind() Kind { return KindRegister }

func (r RegisterRequest) check(ctx context.Context, s *Service) (model.Problem, error) {
	if problem := r.problem(); problem != model.ProblemNone {
		return problem, nil
	}

	_, err := s.users.GetByName(ctx, r.Name)
	switch {
	case err == nil:
		return model.ProblemNameTaken, nil
	case errors.Is(err, model.ErrorUserNotFound):
		return model.ProblemNone, nil
	default:
		return model.ProblemNone, err
	}
}

type ChangePasswordRequest struct {
	User    *model.User
	Old     string
	New     string
	Confirm string
}

func (ChangePasswordRequest) Kind() Kind { return KindChangePassword }

func (r ChangePasswordRequest) check(ctx context.Context, s *Service) (model.Problem, error) {
	switch {
	case !validate.Is(r.Old, validate.RulePassword):
		return model.ProblemInvalidOldPassword, nil
	case !validate.Is(r.New, validate.RulePassword):
		return model.ProblemInvalidNewPassword, nil
	case !validate.Is(r.Confirm, validate.RulePassword):
		return model.ProblemInvalidConfirmPassword, nil
	case r.New != r.Confirm:
		return model.ProblemPasswordMismatch, nil
	case !s.users.CheckPassword(r.User, r.Old):
		return model.ProblemIncorrectOldPassword, nil
	default:
		return model.ProblemNone, nil
	}
}

type EditProfileRequest struct {
	User    *model.User
	Profile model.Profile
}

func (EditProfileRequest) Kind() Kind { return KindEditProfile }

// Sanitized returns the profile with surrounding white space removed.
func (r EditProfileRequest) Sanitized() model.Profile {
	return model.Profile{
		FullName:   strings.TrimSpace(r.Profile.FullName),
		Location:   strings.TrimSpace(r.Profile.Location),
		Occupation: strings.TrimSpace(r.Profile.Occupation),
	}
}

var profileProblems = map[string]model.Problem{
	"FullName":   model.ProblemInvalidFullName,
	"Location":   model.ProblemInvalidLocation,
	"Occupation": model.ProblemInvalidOccupation,
}

func (r EditProfileRequest) check(ctx context.Context, s *Service) (model.Problem, error) {
	err := s.validator.Struct(r.Sanitized())
	if err == nil {
		return model.ProblemNone, nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return model.ProblemNone, err
	}
	problem, ok := profileProblems[fieldErrors[0].Field()]
	if !ok {
		return model.ProblemNone, err
	}
	return problem, nil
}

type DeleteAccountRequest struct {
	User      *model.User
	Confirmed bool
}

func (DeleteAccountRequest) Kind() Kind { return KindDeleteAccount }

func (r DeleteAccountRequest) check(ctx context.Context, s *Service) (model.Problem, error) {
	if !r.Confirmed {
		return model.ProblemNotConfirmed, nil
	}
	return model.ProblemNone, nil
}
