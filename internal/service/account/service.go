// Package account runs the account forms: login, registration, password
// change, profile edit and account deletion. Rejected input is reported as a
// model.Problem, errors are reserved for infrastructure failures.
package account

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.emprendenet/internal/model"
	users "uk.co.dudmesh.emprendenet/internal/service/user"
	"uk.co.dudmesh.emprendenet/internal/validate"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
	Create(ctx context.Context, params *model.CreateUserParams) (*model.User, error)
	Update(ctx context.Context, user *model.User, mutators ...users.Mutator) error
	Delete(ctx context.Context, user *model.User) error
	CheckPassword(user *model.User, password string) bool
	PasswordChange(password string) users.Mutator
}

// Session is the cookie of the current request.
type Session interface {
	Issue(user *model.User)
	Revoke()
}

type Service struct {
	users     UserService
	validator *validator.Validate
}

func New(userService UserService) *Service {
	return &Service{
		users:     userService,
		validator: validate.New(),
	}
}

// Validate runs the checks of req without changing anything.
func (s *Service) Validate(ctx context.Context, req Request) (model.Problem, error) {
	return req.check(ctx, s)
}

func (s *Service) Login(ctx context.Context, req LoginRequest, session Session) (*model.User, model.Problem, error) {
	if problem, err := s.Validate(ctx, req); problem != model.ProblemNone || err != nil {
		return nil, problem, err
	}

	cached, err := s.users.GetByName(ctx, req.Name)
	if err != nil {
		return nil, model.ProblemNone, err
	}

	// the cached copy may be stale, the password must match the stored record
	user, err := s.users.GetByID(ctx, cached.ID.String())
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return nil, model.ProblemNonexistentUser, nil
		}
		return nil, model.ProblemNone, err
	}
	if !s.users.CheckPassword(user, req.Password) {
		return nil, model.ProblemIncorrectPassword, nil
	}

	if req.Remember && !user.Remember {
		if err := s.users.Update(ctx, user, users.RememberUpgrade()); err != nil {
			return nil, model.ProblemNone, err
		}
	}

	session.Issue(user)
	log.Infof("%s: user %s", req.Kind(), user.ID)

	return user, model.ProblemNone, nil
}

func (s *Service) Register(ctx context.Context, req RegisterRequest, session Session) (*model.User, model.Problem, error) {
	if problem, err := s.Validate(ctx, req); problem != model.ProblemNone || err != nil {
		return nil, problem, err
	}

	user, err := s.users.Create(ctx, &model.CreateUserParams{
		Name:     req.Name,
		Password: req.Password,
		Remember: req.Remember,
	})
	if err != nil {
		if errors.Is(err, model.ErrorNameTaken) {
			return nil, model.ProblemNameTaken, nil
		}
		return nil, model.ProblemNone, err
	}

	session.Issue(user)
	log.Infof("%s: user %s", req.Kind(), user.ID)

	return user, model.ProblemNone, nil
}

// ChangePassword replaces the password of req.User and issues a new cookie,
// the previous one no longer validates.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest, session Session) (model.Problem, error) {
	if problem, err := s.Validate(ctx, req); problem != model.ProblemNone || err != nil {
		return problem, err
	}

	if err := s.users.Update(ctx, req.User, s.users.PasswordChange(req.New)); err != nil {
		return model.ProblemNone, err
	}

	session.Issue(req.User)
	log.Infof("%s: user %s", req.Kind(), req.User.ID)

	return model.ProblemNone, nil
}

// EditProfile replaces the profile fields of req.User. Nothing else about
// the user can change here.
func (s *Service) EditProfile(ctx context.Context, req EditProfileRequest) (model.Problem, error) {
	if problem, err := s.Validate(ctx, req); problem != model.ProblemNone || err != nil {
		return problem, err
	}

	if err := s.users.Update(ctx, req.User, users.ProfileChange(req.Sanitized())); err != nil {
		return model.ProblemNone, err
	}

	log.Infof("%s: user %s", req.Kind(), req.User.ID)

	return model.ProblemNone, nil
}

func (s *Service) DeleteAccount(ctx context.Context, req DeleteAccountRequest, session Session) (model.Problem, error) {
	if problem, err := s.Validate(ctx, req); problem != model.ProblemNone || err != nil {
		return problem, err
	}

	if err := s.users.Delete(ctx, req.User); err != nil {
		return model.ProblemNone, err
	}

	session.Revoke()
	log.Infof("%s: user %s", req.Kind(), req.User.ID)

	return model.ProblemNone, nil
}
