package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/views"
)

// Routes registers every page.
func Routes() {
	app.Route(views.PathHome, func() app.Composer { return &homePage{} })
	app.Route(views.PathSignin, func() app.Composer { return &signinPage{} })
	app.Route(views.PathSignup, func() app.Composer { return &signupPage{} })
	app.Route(views.PathAddTask, func() app.Composer { return &addTaskPage{} })
	app.Route(views.PathProfile, func() app.Composer { return &profilePage{} })
	app.Route(views.PathLogout, func() app.Composer { return &logoutPage{} })
	app.RouteWithRegexp(`^/user/[^/]+$`, func() app.Composer { return &userPage{} })
}
