package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/pitchforge/pitchforge/internal/pkg/api"
	"github.com/pitchforge/pitchforge/internal/pkg/capture"
	"github.com/pitchforge/pitchforge/internal/pkg/generator"
	"github.com/pitchforge/pitchforge/internal/pkg/library"
	"github.com/pitchforge/pitchforge/internal/pkg/session"
	"github.com/pitchforge/pitchforge/internal/pkg/transcriber"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	ctx := context.Background()

	device := capture.NewPortAudioDevice()
	recorder, err := capture.NewRecorder(device)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init recorder")
	}

	var trans *transcriber.Client
	if cfg.GetString("openai.key") != "" {
		rec, err := transcriber.NewWhisperRecognizer(cfg, device)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init fallback recognizer")
		}
		trans, err = transcriber.NewWithFallback(cfg.GetString("transcribe.url"), rec)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init transcriber")
		}
	} else {
		trans, err = transcriber.NewRemote(cfg.GetString("transcribe.url"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init transcriber")
		}
	}

	gen, err := generator.NewClient(cfg.GetString("generate.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init generator")
	}

	lib, err := library.NewClient(cfg.GetString("library.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init library client")
	}
	if err := lib.WaitReady(ctx); err != nil {
		goapp.Log.Fatal().Err(err).Msg("library service not ready")
	}
	token := cfg.GetString("auth.token")

	ctrl, err := session.NewController(recorder, trans, gen,
		&librarySaver{client: lib, token: token})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init session")
	}

	run(ctx, ctrl, lib, token)
}

type librarySaver struct {
	client *library.Client
	token  string
}

func (s *librarySaver) Save(ctx context.Context, data *api.SaveRequest) (*api.PitchData, error) {
	return s.client.Save(ctx, s.token, data)
}

func run(ctx context.Context, ctrl *session.Controller, lib *library.Client, token string) {
	fmt.Println("commands: record, stop, generate, save, rerecord, delete, retry, dismiss, list, state, quit")
	sc := bufio.NewScanner(os.Stdin)
	for prompt(ctrl); sc.Scan(); prompt(ctrl) {
		var err error
		switch cmd := strings.TrimSpace(sc.Text()); cmd {
		case "record":
			err = ctrl.Record(ctx)
		case "stop":
			if err = ctrl.Stop(ctx); err == nil {
				fmt.Printf("transcript:\n%s\n", ctrl.Snapshot().Transcript)
			}
		case "generate":
			if err = ctrl.Generate(ctx); err == nil {
				printPitch(ctrl)
			}
		case "save":
			var res *api.PitchData
			if res, err = ctrl.Save(ctx); err == nil {
				fmt.Printf("saved %s (%s)\n", res.ID, res.Title)
			}
		case "rerecord":
			err = ctrl.Rerecord()
		case "delete":
			err = ctrl.Delete()
		case "retry":
			err = ctrl.Retry(ctx)
		case "dismiss":
			err = ctrl.Dismiss()
		case "list":
			err = printList(ctx, lib, token)
		case "state":
		case "quit", "exit":
			return
		case "":
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
		if err != nil {
			printErr(ctrl, err)
		}
	}
}

func prompt(ctrl *session.Controller) {
	fmt.Printf("[%s]> ", ctrl.Snapshot().View)
}

func printErr(ctrl *session.Controller, err error) {
	sn := ctrl.Snapshot()
	if sn.QuotaFlag {
		fmt.Println("transcription quota exceeded, a fallback recognition pass may help")
	}
	if kind := utils.KindOf(err); kind != 0 {
		fmt.Printf("error [%s]: %s\n", kind, err)
		return
	}
	fmt.Printf("error: %s\n", err)
}

func printPitch(ctrl *session.Controller) {
	sn := ctrl.Snapshot()
	if sn.Pitch == nil {
		return
	}
	fmt.Printf("one-liner: %s\n", sn.Pitch.OneLiner)
	for _, f := range sn.Pitch.Structure.Fields() {
		fmt.Printf("  %s: %s\n", f[0], f[1])
	}
}

func printList(ctx context.Context, lib *library.Client, token string) error {
	pitches, err := lib.List(ctx, token)
	if err != nil {
		return err
	}
	for _, p := range pitches {
		fmt.Printf("%s  %s  %s  %s\n", p.ID, p.CreatedAt, p.Status, p.Title)
	}
	if len(pitches) == 0 {
		fmt.Println("no pitches yet")
	}
	return nil
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
                                   __
    ________  _________  _________/ /
   / ___/ _ \/ ___/ __ \/ ___/ __  /
  / /  /  __/ /__/ /_/ / /  / /_/ /  v: %s
 /_/   \___/\___/\____/_/   \__,_/

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/pitchforge/pitchforge"))
}
