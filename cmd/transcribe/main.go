package main

import (
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/pitchforge/pitchforge/internal/pkg/gemini"
	"github.com/pitchforge/pitchforge/internal/pkg/transcribeservice"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &transcribeservice.Data{}
	data.Port = cfg.GetInt("port")

	gc, err := gemini.NewClient(cfg.GetString("gemini.url"), cfg.GetString("gemini.key"),
		cfg.GetString("gemini.model"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gemini client")
	}
	data.Recognizer = gc

	err = transcribeservice.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
     ____  _ __       __    ____
    / __ \(_) /______/ /_  / __/___  _________ ____
   / /_/ / / __/ ___/ __ \/ /_/ __ \/ ___/ __ ` + "`" + `/ _ \
  / ____/ / /_/ /__/ / / / __/ /_/ / /  / /_/ /  __/
 /_/   /_/\__/\___/_/ /_/_/  \____/_/   \__, /\___/
                                       /____/
    __                                  _ __
   / /__________ _____  _______________(_) /_  ___
  / __/ ___/ __ ` + "`" + `/ __ \/ ___/ ___/ ___/ / __ \/ _ \
 / /_/ /  / /_/ / / / (__  ) /__/ /  / / /_/ /  __/  v: %s
 \__/_/   \__,_/_/ /_/____/\___/_/  /_/_.___/\___/

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/pitchforge/pitchforge"))
}
