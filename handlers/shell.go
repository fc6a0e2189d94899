package handlers

import (
	"net/http"

	"sparkathon/middleware"
	"sparkathon/models"
	"sparkathon/utils"

	"github.com/gin-gonic/gin"
)

const (
	brandName  = "BitSnatchers"
	shellTitle = "Smart Delivery Management System"
	shellDesc  = "AI-powered delivery scheduling and tracking"
)

// pageRoutes are the shell's client-side pages.
var pageRoutes = map[string]string{
	"home":   "/",
	"login":  "/login",
	"signup": "/signup",
}

// ShellHandler describes the page chrome: brand, tabs and the signed-in account.
func ShellHandler(c *gin.Context) {
	shell := models.Shell{
		Brand:       brandName,
		Title:       shellTitle,
		Description: shellDesc,
		Tabs:        models.Tabs(),
		ActiveTab:   models.TabSchedule,
		Routes:      pageRoutes,
	}
	if user, ok := middleware.CurrentUser(c); ok {
		shell.Account = &models.Account{Email: user.Email, Initial: user.Initial()}
	}
	c.JSON(http.StatusOK, shell)
}

// HealthHandler reports liveness plus the last dependency check.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Hi, I'm " + brandName,
		"checks":  utils.GetHealthStatus(),
	})
}
