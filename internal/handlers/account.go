package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.emprendenet/internal/model"
	"uk.co.dudmesh.emprendenet/internal/service/account"
	"uk.co.dudmesh.emprendenet/internal/session"
	"uk.co.dudmesh.emprendenet/internal/views"
)

type loginForm struct {
	ReturnPath string
	Name       string
	Password   string
	Remember   bool
	Register   bool
}

type profileView struct {
	User       *model.User
	Own        bool
	AdminPanel bool
}

type profileForm struct {
	UserID  model.UserID
	Profile model.Profile
}

type panelView struct {
	UserID     model.UserID
	AdminPanel bool
}

func LoginForm(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := returnPath(c)
		if session.Current(c).Authenticated() {
			return c.Redirect(http.StatusFound, withMessage(path, model.MessageAlreadyLoggedIn))
		}
		return render(c, users, http.StatusOK, "iniciar-sesion-registro.html", func(p *views.Page) {
			p.Data = &loginForm{ReturnPath: path}
		})
	}
}

// Login logs in or, when registrar is checked, registers and logs in.
func Login(users UserService, accounts AccountService, sessions Sessions) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := returnPath(c)
		if session.Current(c).Authenticated() {
			return c.Redirect(http.StatusFound, withMessage(path, model.MessageAlreadyLoggedIn))
		}

		form := &loginForm{
			ReturnPath: path,
			Name:       c.FormValue("nombre_usuario"),
			Remember:   c.FormValue("recordar") == "recordar",
			Register:   c.FormValue("registrar") == "registrar",
			Password:   c.FormValue("password"),
		}
		credentials := account.Credentials{
			Name:     form.Name,
			Password: form.Password,
			Remember: form.Remember,
		}

		ctx := c.Request().Context()
		var (
			user    *model.User
			problem model.Problem
			err     error
		)
		if form.Register {
			user, problem, err = accounts.Register(ctx, account.RegisterRequest{Credentials: credentials}, sessions.Bind(c))
		} else {
			user, problem, err = accounts.Login(ctx, account.LoginRequest{Credentials: credentials}, sessions.Bind(c))
		}
		if err != nil {
			return err
		}

		if problem != model.ProblemNone {
			return render(c, users, http.StatusOK, "iniciar-sesion-registro.html", func(p *views.Page) {
				p.Error = problem.HTML()
				p.Data = form
			})
		}

		if form.Register {
			path = "/usuario/" + user.ID.String() + "/perfil/editar"
		}
		return c.Redirect(http.StatusFound, path)
	}
}

func Logout(sessions Sessions) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !session.Current(c).Authenticated() {
			return c.Redirect(http.StatusFound, withMessage("/", model.MessageNoSession))
		}
		sessions.Bind(c).Revoke()
		return c.Redirect(http.StatusFound, withMessage("/", model.MessageLoggedOut))
	}
}

func Profile(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := users.GetByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, model.ErrorUserNotFound) || errors.Is(err, model.ErrorInvalidID) {
				return notFound(c, users, model.ProblemUserNotFound)
			}
			return err
		}

		return render(c, users, http.StatusOK, "perfil.html", func(p *views.Page) {
			p.Data = &profileView{
				User:       user,
				Own:        session.Current(c).Is(user.ID),
				AdminPanel: user.Can(model.PermissionAdminPanel),
			}
		})
	}
}

// sessionUser is the user behind a route guarded by RequireSession. A user
// deleted since the cookie was checked is sent back to the login page.
func sessionUser(c echo.Context, users UserService) (*model.User, error) {
	user, err := currentUser(c, users)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, redirectToLogin(c)
	}
	return user, nil
}

func EditProfileForm(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := sessionUser(c, users)
		if user == nil {
			return err
		}
		return render(c, users, http.StatusOK, "perfil-editar.html", func(p *views.Page) {
			p.Data = &profileForm{UserID: user.ID, Profile: user.Profile}
		})
	}
}

func EditProfile(users UserService, accounts AccountService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := sessionUser(c, users)
		if user == nil {
			return err
		}

		profile := model.Profile{}
		if err := (&echo.DefaultBinder{}).BindBody(c, &profile); err != nil {
			return err
		}

		problem, err := accounts.EditProfile(c.Request().Context(), account.EditProfileRequest{User: user, Profile: profile})
		if err != nil {
			return err
		}
		if problem != model.ProblemNone {
			return render(c, users, http.StatusOK, "perfil-editar.html", func(p *views.Page) {
				p.Error = problem.HTML()
				p.Data = &profileForm{UserID: user.ID, Profile: profile}
			})
		}

		return c.Redirect(http.StatusFound, withMessage("/usuario/"+user.ID.String()+"/perfil", model.MessageProfileEdited))
	}
}

func Panel(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := sessionUser(c, users)
		if user == nil {
			return err
		}
		return render(c, users, http.StatusOK, "panel-usuario.html", func(p *views.Page) {
			p.Data = &panelView{UserID: user.ID, AdminPanel: user.Can(model.PermissionAdminPanel)}
		})
	}
}

func ChangePassword(users UserService, accounts AccountService, sessions Sessions) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := sessionUser(c, users)
		if user == nil {
			return err
		}

		problem, err := accounts.ChangePassword(c.Request().Context(), account.ChangePasswordRequest{
			User:    user,
			Old:     c.FormValue("password_anterior"),
			New:     c.FormValue("password_nueva"),
			Confirm: c.FormValue("password_confirmar"),
		}, sessions.Bind(c))
		if err != nil {
			return err
		}
		if problem != model.ProblemNone {
			return render(c, users, http.StatusOK, "cambiar-password.html", func(p *views.Page) {
				p.Error = problem.HTML()
			})
		}

		return c.Redirect(http.StatusFound, withMessage(panelPath, model.MessagePasswordChanged))
	}
}

func DeleteAccount(users UserService, accounts AccountService, sessions Sessions) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := sessionUser(c, users)
		if user == nil {
			return err
		}

		problem, err := accounts.DeleteAccount(c.Request().Context(), account.DeleteAccountRequest{
			User:      user,
			Confirmed: c.FormValue("confirmar") == "confirmar",
		}, sessions.Bind(c))
		if err != nil {
			return err
		}
		if problem != model.ProblemNone {
			return c.Redirect(http.StatusFound, panelPath)
		}

		return c.Redirect(http.StatusFound, withMessage("/", model.MessageUserDeleted))
	}
}
