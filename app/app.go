package app

import (
	"github.com/go-chi/oauth"
	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/store"
)

type App struct {
	Forms     store.Forms
	Responses store.Responses
	Users     store.Users
	*oauth.BearerServer
	config.Config
}
