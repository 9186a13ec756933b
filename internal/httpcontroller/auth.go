package httpcontroller

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "counterfront-admin"

// isAuthenticated reports whether the request carries a valid admin session.
func (s *Server) isAuthenticated(c echo.Context) bool {
	session, err := s.sessions.Get(c.Request(), sessionName)
	if err != nil {
		return false
	}
	authenticated, ok := session.Values["authenticated"].(bool)
	return ok && authenticated
}

func (s *Server) handleLoginPage(c echo.Context) error {
	if s.isAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/map")
	}
	return renderView(c, http.StatusOK, "login.html", nil)
}

func (s *Server) handleLogin(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	usernameOK := subtle.ConstantTimeCompare(
		[]byte(username), []byte(s.Settings.Security.AdminUsername)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(
		[]byte(s.Settings.Security.AdminPasswordHash), []byte(password))

	if !usernameOK || passwordErr != nil {
		s.logger.Warn("failed admin login attempt", "ip", c.RealIP())
		return renderView(c, http.StatusUnauthorized, "login.html", map[string]any{
			"Error": "Invalid credentials",
		})
	}

	session, _ := s.sessions.Get(c.Request(), sessionName)
	session.Values["authenticated"] = true
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return s.HandleError(c, err, "failed to create session")
	}

	s.logger.Info("admin login", "ip", c.RealIP())
	return c.Redirect(http.StatusSeeOther, "/admin/map")
}

func (s *Server) handleLogout(c echo.Context) error {
	session, _ := s.sessions.Get(c.Request(), sessionName)
	session.Values["authenticated"] = false
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return s.HandleError(c, err, "failed to clear session")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/login")
}

func (s *Server) handleAdminMap(c echo.Context) error {
	if !s.isAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/login")
	}
	return renderView(c, http.StatusOK, "admin_dashboard.html", map[string]any{
		"Name": s.Settings.Main.Name,
	})
}
