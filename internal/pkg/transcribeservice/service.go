package transcribeservice

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/pkg/errors"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pitchforge/pitchforge/internal/pkg/api"
	"github.com/pitchforge/pitchforge/internal/pkg/gemini"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Recognizer converts audio bytes to text
type Recognizer interface {
	TranscribeAudio(ctx context.Context, prompt, mimeType string, audio []byte, cfg gemini.GenerationConfig) (string, error)
}

// Data keeps data required for service work
type Data struct {
	Port       int
	Recognizer Recognizer
}

const transcribePrompt = "Please transcribe the following audio content. " +
	"Return only the transcribed text without any additional commentary or formatting."

const defaultMimeType = "audio/webm"

// decodeChunkSize bounds peak memory while decoding large payloads
const decodeChunkSize = 32768

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Int("port", data.Port).Msg("Starting HTTP pitchforge transcribe service")
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 180 * time.Second
	e.Server.WriteTimeout = 60 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.Recognizer == nil {
		return errors.New("no recognizer")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("pitchforge_transcribe", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{api.HdrAuthorization, api.HdrClientInfo, api.HdrAPIKey, echo.HeaderContentType},
	}))
	promMdlw.Use(e)

	e.POST("/transcribe-audio", transcribe(data))
	e.GET("/live", live(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

func transcribe(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("transcribe method")()
		ctx := c.Request().Context()

		var req api.TranscribeRequest
		if err := c.Bind(&req); err != nil {
			return errResponse(c, http.StatusBadRequest, "wrong request")
		}
		if req.Audio == "" {
			return errResponse(c, http.StatusBadRequest, "no audio data provided")
		}
		audio, err := decodeAudio(req.Audio)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return errResponse(c, http.StatusBadRequest, fmt.Sprintf("failed to decode audio data: %v", err))
		}
		if len(audio) == 0 {
			return errResponse(c, http.StatusBadRequest, "audio data is empty after decoding")
		}
		goapp.Log.Info().Int("bytes", len(audio)).Msg("audio decoded")

		mimeType := req.MimeType
		if mimeType == "" {
			mimeType = defaultMimeType
		}
		text, err := data.Recognizer.TranscribeAudio(ctx, transcribePrompt, mimeType, audio,
			gemini.GenerationConfig{Temperature: 0.1, TopK: 40, TopP: 0.95, MaxOutputTokens: 2048})
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			// message content drives client-side classification
			return errResponse(c, http.StatusInternalServerError, err.Error())
		}
		if strings.TrimSpace(text) == "" {
			return errResponse(c, http.StatusInternalServerError, "no transcription text received")
		}
		return c.JSON(http.StatusOK, api.TranscribeResponse{Text: text})
	}
}

func errResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, api.ErrorResponse{Error: msg})
}

// decodeAudio decodes base64 in fixed-size chunks
func decodeAudio(s string) ([]byte, error) {
	res := make([]byte, 0, base64.StdEncoding.DecodedLen(len(s)))
	for off := 0; off < len(s); off += decodeChunkSize {
		end := off + decodeChunkSize
		if end > len(s) {
			end = len(s)
		}
		b, err := base64.StdEncoding.DecodeString(s[off:end])
		if err != nil {
			return nil, fmt.Errorf("can't decode chunk at %d: %w", off, err)
		}
		res = append(res, b...)
	}
	return res, nil
}
