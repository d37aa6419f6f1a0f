package generateservice

import (
	"context"
	"encoding/json"
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
	"github.com/pitchforge/pitchforge/internal/pkg/pitch"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg gemini.GenerationConfig) (string, error)
}

// Data keeps data required for service work
type Data struct {
	Port      int
	Generator Generator
}

const promptTemplate = `Based on the following founder story transcript, create a compelling pitch deck structure following Guy Kawasaki's methodology. Return the response as a JSON object with the following structure:

{
  "oneLiner": "A compelling one-sentence description of the company",
  "structure": {
    "problem": "Clear problem statement",
    "solution": "Your solution description",
    "market": "Market size and opportunity",
    "competition": "Competitive landscape analysis",
    "businessModel": "How you make money",
    "traction": "Key metrics and progress",
    "team": "Team background and expertise",
    "financials": "Financial projections or current state",
    "funding": "Funding ask and use of funds",
    "timeline": "Key milestones and roadmap"
  }
}

Transcript: %s

Please analyze this transcript and generate a professional pitch deck structure. Be specific and actionable in each section.`

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Int("port", data.Port).Msg("Starting HTTP pitchforge generate service")
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 60 * time.Second
	e.Server.WriteTimeout = 60 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.Generator == nil {
		return errors.New("no generator")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("pitchforge_generate", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{api.HdrAuthorization, api.HdrClientInfo, api.HdrAPIKey, echo.HeaderContentType},
	}))
	promMdlw.Use(e)

	e.POST("/generate-pitch", generate(data))
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

func generate(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("generate method")()
		ctx := c.Request().Context()

		var req api.GenerateRequest
		if err := c.Bind(&req); err != nil {
			return errResponse(c, http.StatusBadRequest, "wrong request")
		}
		if strings.TrimSpace(req.Transcript) == "" {
			return errResponse(c, http.StatusBadRequest, "no transcript provided")
		}

		text, err := data.Generator.Generate(ctx, fmt.Sprintf(promptTemplate, req.Transcript),
			gemini.GenerationConfig{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 2048})
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return errResponse(c, http.StatusInternalServerError, err.Error())
		}
		res, err := parsePitch(text)
		if err != nil {
			goapp.Log.Error().Err(err).Str("text", truncate(text, 200)).Send()
			return errResponse(c, http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, res)
	}
}

// parsePitch extracts and validates the model answer. Absent structure
// fields decode to empty strings, so all ten keys are always present
// in the result
func parsePitch(text string) (*pitch.Generated, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract JSON from model response")
	}
	var raw struct {
		OneLiner  string           `json:"oneLiner"`
		Structure *pitch.Structure `json:"structure"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse model response")
	}
	if raw.Structure == nil {
		return nil, errors.New("model response missing pitch structure")
	}
	if strings.TrimSpace(raw.OneLiner) == "" {
		return nil, errors.New("model response missing oneLiner")
	}
	return &pitch.Generated{OneLiner: raw.OneLiner, Structure: *raw.Structure}, nil
}

func errResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, api.ErrorResponse{Error: msg})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
