package main

import (
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/pitchforge/pitchforge/internal/pkg/gemini"
	"github.com/pitchforge/pitchforge/internal/pkg/generateservice"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &generateservice.Data{}
	data.Port = cfg.GetInt("port")

	gc, err := gemini.NewClient(cfg.GetString("gemini.url"), cfg.GetString("gemini.key"),
		cfg.GetString("gemini.model"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gemini client")
	}
	data.Generator = gc

	err = generateservice.StartWebServer(data)
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
    ____ ____  ____  ___  _________ _/ /____
   / __ ` + "`" + `/ _ \/ __ \/ _ \/ ___/ __ ` + "`" + `/ __/ _ \
  / /_/ /  __/ / / /  __/ /  / /_/ / /_/  __/  v: %s
  \__, /\___/_/ /_/\___/_/   \__,_/\__/\___/
 /____/

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/pitchforge/pitchforge"))
}
