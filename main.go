package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/ui"
)

func main() {
	ui.Routes()
	app.RunWhenOnBrowser()
	serve()
}
