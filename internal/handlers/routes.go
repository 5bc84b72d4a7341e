package handlers

import (
	"github.com/labstack/echo/v4"
)

// Routes mounts every page of the site on server.
func Routes(server *echo.Echo, users UserService, accounts AccountService, sessions Sessions, baseURL string) {
	server.GET("/", StaticPage(users, "inicio.html"))
	server.GET("/mas-informacion", StaticPage(users, "mas-informacion.html"))
	server.GET("/el-equipo", StaticPage(users, "el-equipo.html"))
	server.GET("/aviso-legal", StaticPage(users, "aviso-legal.html"))
	server.GET("/webmap", Webmap(baseURL))

	server.GET(loginPath, LoginForm(users))
	server.POST(loginPath, Login(users, accounts, sessions))
	server.GET("/cerrar-sesion", Logout(sessions))

	server.GET("/usuario/:id/perfil", Profile(users))
	editPath := "/usuario/:id/perfil/editar"
	server.GET(editPath, EditProfileForm(users), RequireSession(), RequireOwner())
	server.POST(editPath, EditProfile(users, accounts), RequireSession(), RequireOwner())

	server.GET(panelPath, Panel(users), RequireSession())
	server.GET(panelPath+"/cambiar-password", StaticPage(users, "cambiar-password.html"), RequireSession())
	server.POST(panelPath+"/cambiar-password", ChangePassword(users, accounts, sessions), RequireSession())
	server.GET(panelPath+"/eliminar-usuario", StaticPage(users, "eliminar-usuario.html"), RequireSession())
	server.POST(panelPath+"/eliminar-usuario", DeleteAccount(users, accounts, sessions), RequireSession())
}
