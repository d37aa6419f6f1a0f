package main

import (
	"context"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/labstack/gommon/color"
	"github.com/pitchforge/pitchforge/internal/pkg/library"
	"github.com/pitchforge/pitchforge/internal/pkg/postgres"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &library.Data{}
	data.Port = cfg.GetInt("port")
	data.AuthSecret = cfg.GetString("auth.secret")

	ctx := context.Background()

	dbConfig, err := pgxpool.ParseConfig(cfg.GetString("db.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	dbConfig.ConnConfig.Tracer = &tracelog.TraceLog{Logger: utils.NewPgxLogAdapter(),
		LogLevel: tracelog.LogLevelDebug}

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()

	db, err := postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}
	data.DB = db

	err = library.StartWebServer(data)
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
     ___ __
    / (_) /_  _________ ________  __
   / / / __ \/ ___/ __ ` + "`" + `/ ___/ / / /
  / / / /_/ / /  / /_/ / /  / /_/ /  v: %s
 /_/_/_.___/_/   \__,_/_/   \__, /
                           /____/

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/pitchforge/pitchforge"))
}
