package model

import "html/template"

// MessageCode is carried in the m query parameter of a redirect and shown on
// the next page.
type MessageCode string

const (
	MessageAlreadyLoggedIn MessageCode = "ulog"
	MessageNoSession       MessageCode = "unlo"
	MessageLoggedOut       MessageCode = "logo"
	MessageMustLogIn       MessageCode = "logi"
	MessageWrongUser       MessageCode = "uinc"
	MessageProfileEdited   MessageCode = "perd"
	MessagePasswordChanged MessageCode = "cone"
	MessageUserDeleted     MessageCode = "usel"
	MessageChangesSaved    MessageCode = "caex"
	MessageNoPermission    MessageCode = "npem"
)

// messages are already HTML escaped.
var messages = map[MessageCode]string{
	MessageAlreadyLoggedIn: "Usuario ya logueado.",
	MessageNoSession:       "Sesi&oacute;n no iniciada.",
	MessageLoggedOut:       "Sesi&oacute;n cerrada.",
	MessageMustLogIn:       "Debes iniciar sesi&oacute;n antes.",
	MessageWrongUser:       "Usuario incorrecto.",
	MessageProfileEdited:   "Perfil editado correctamente.",
	MessagePasswordChanged: "Contrase&ntilde;a cambiada con &eacute;xito.",
	MessageUserDeleted:     "Usuario eliminado.",
	MessageChangesSaved:    "Cambios realizados con &eacute;xito.",
	MessageNoPermission:    "No tienes permisos para editar este mensaje.",
}

// Text returns the display text for the code, empty for unknown codes.
func (m MessageCode) Text() template.HTML {
	return template.HTML(messages[m])
}

func (m MessageCode) Known() bool {
	_, ok := messages[m]
	return ok
}

// Problem is a user facing, already escaped, description of why a form was
// rejected. The zero value means no problem.
type Problem string

const (
	ProblemNone                   Problem = ""
	ProblemInvalidNameAndPassword Problem = "Nombre de usuario y contrase&ntilde;a inv&aacute;lidos."
	ProblemInvalidName            Problem = "Nombre de usuario inv&aacute;lido."
	ProblemInvalidPassword        Problem = "Contrase&ntilde;a inv&aacute;lida."
	ProblemNonexistentUser        Problem = "Usuario inexistente."
	ProblemIncorrectPassword      Problem = "Contrase&ntilde;a incorrecta."
	ProblemNameTaken              Problem = "Nombre de usuario ya en uso."
	ProblemInvalidOldPassword     Problem = "Contrase&ntilde;a anterior inv&aacute;lida."
	ProblemInvalidNewPassword     Problem = "Nueva contrase&ntilde;a inv&aacute;lida."
	ProblemInvalidConfirmPassword Problem = "Confirmar nueva contrase&ntilde;a introducida inv&aacute;lida."
	ProblemPasswordMismatch       Problem = "Nueva contrase&ntilde;a y confirmar nueva contrase&ntilde;a no coinciden."
	ProblemIncorrectOldPassword   Problem = "Contrase&ntilde;a anterior incorrecta."
	ProblemInvalidFullName        Problem = "Nombre completo inv&aacute;lido."
	ProblemInvalidLocation        Problem = "Ubicaci&oacute;n inv&aacute;lida."
	ProblemInvalidOccupation      Problem = "Ocupaci&oacute;n inv&aacute;lida."
	ProblemNotConfirmed           Problem = "Debes confirmar la eliminaci&oacute;n del usuario."
	ProblemUserNotFound           Problem = "Usuario no encontrado."
)

func (p Problem) HTML() template.HTML {
	return template.HTML(p)
}
