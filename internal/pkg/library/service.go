package library

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pitchforge/pitchforge/internal/pkg/api"
	"github.com/pitchforge/pitchforge/internal/pkg/export"
	"github.com/pitchforge/pitchforge/internal/pkg/persistence"
	"github.com/pitchforge/pitchforge/internal/pkg/pitch"
	"github.com/pitchforge/pitchforge/internal/pkg/status"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DB provides pitch persistence
type DB interface {
	InsertPitch(ctx context.Context, rec *persistence.PitchRecord) error
	ListPitches(ctx context.Context, userID string) ([]*persistence.PitchRecord, error)
	LoadPitch(ctx context.Context, id, userID string) (*persistence.PitchRecord, error)
	DeletePitch(ctx context.Context, id, userID string) error
	Live(ctx context.Context) error
}

// Data keeps data required for service work
type Data struct {
	Port       int
	DB         DB
	AuthSecret string
}

const userIDKey = "userID"

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Int("port", data.Port).Msg("Starting HTTP pitchforge library service")
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.DB == nil {
		return errors.New("no DB")
	}
	if data.AuthSecret == "" {
		return errors.New("no auth secret")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("pitchforge_library", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{api.HdrAuthorization, api.HdrClientInfo, api.HdrAPIKey, echo.HeaderContentType},
	}))
	promMdlw.Use(e)

	e.GET("/live", live(data))
	gr := e.Group("", authMdlw(data.AuthSecret))
	gr.POST("/pitches", save(data))
	gr.GET("/pitches", list(data))
	gr.GET("/pitches/:id", load(data))
	gr.DELETE("/pitches/:id", drop(data))
	gr.GET("/pitches/:id/download", download(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		if err := data.DB.Live(c.Request().Context()); err != nil {
			goapp.Log.Error().Err(err).Send()
			return c.JSONBlob(http.StatusServiceUnavailable, []byte(`{"service":"NOT READY"}`))
		}
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

// authMdlw validates the bearer token and puts its subject into context
func authMdlw(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := bearerToken(c.Request().Header.Get(api.HdrAuthorization))
			if tokenStr == "" {
				return errResponse(c, http.StatusUnauthorized, "no authorization token")
			}
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				goapp.Log.Warn().Err(err).Msg("token rejected")
				return errResponse(c, http.StatusUnauthorized, "invalid token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return errResponse(c, http.StatusUnauthorized, "invalid token")
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				return errResponse(c, http.StatusUnauthorized, "no subject in token")
			}
			c.Set(userIDKey, sub)
			return next(c)
		}
	}
}

func bearerToken(hdr string) string {
	if l := strings.SplitN(hdr, " ", 2); len(l) == 2 && strings.EqualFold(l[0], "Bearer") {
		return strings.TrimSpace(l[1])
	}
	return ""
}

func userID(c echo.Context) string {
	res, _ := c.Get(userIDKey).(string)
	return res
}

func save(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("save method")()
		ctx := c.Request().Context()

		var req api.SaveRequest
		if err := c.Bind(&req); err != nil {
			return errResponse(c, http.StatusBadRequest, "wrong request")
		}
		if strings.TrimSpace(req.OneLiner) == "" {
			return errResponse(c, http.StatusBadRequest, "no oneLiner provided")
		}
		rec := &persistence.PitchRecord{
			ID:         uuid.NewString(),
			UserID:     userID(c),
			Title:      pitch.Title(req.OneLiner),
			OneLiner:   req.OneLiner,
			Structure:  req.Structure,
			Transcript: req.Transcript,
			Status:     status.Completed.String(),
			Created:    time.Now(),
		}
		if err := data.DB.InsertPitch(ctx, rec); err != nil {
			goapp.Log.Error().Err(err).Send()
			return errResponse(c, http.StatusInternalServerError, "can't save pitch")
		}
		goapp.Log.Info().Str("ID", rec.ID).Msg("pitch saved")
		return c.JSON(http.StatusCreated, mapPitch(rec))
	}
}

func list(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("list method")()
		recs, err := data.DB.ListPitches(c.Request().Context(), userID(c))
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return errResponse(c, http.StatusInternalServerError, "can't load pitches")
		}
		res := make([]*api.PitchData, 0, len(recs))
		for _, rec := range recs {
			res = append(res, mapPitch(rec))
		}
		return c.JSON(http.StatusOK, res)
	}
}

func load(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("load method")()
		rec, err := loadPitch(c, data)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}
		return c.JSON(http.StatusOK, mapPitch(rec))
	}
}

func drop(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("delete method")()
		rec, err := loadPitch(c, data)
		if err != nil || rec == nil {
			return err
		}
		if err := data.DB.DeletePitch(c.Request().Context(), rec.ID, userID(c)); err != nil {
			goapp.Log.Error().Err(err).Send()
			return errResponse(c, http.StatusInternalServerError, "can't delete pitch")
		}
		goapp.Log.Info().Str("ID", rec.ID).Msg("pitch deleted")
		return c.NoContent(http.StatusNoContent)
	}
}

func download(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("download method")()
		rec, err := loadPitch(c, data)
		if err != nil || rec == nil {
			return err
		}
		doc := export.Format(rec.Title, rec.OneLiner, &rec.Structure, rec.Transcript, rec.Created)
		c.Response().Header().Set("Content-Disposition", "attachment; filename="+export.FileName(rec.Title))
		return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
	}
}

// loadPitch resolves :id for the authorized user. On a miss it writes
// the 404 response itself and returns nil, nil
func loadPitch(c echo.Context, data *Data) (*persistence.PitchRecord, error) {
	id := c.Param("id")
	if id == "" {
		return nil, errResponse(c, http.StatusBadRequest, "no id")
	}
	rec, err := data.DB.LoadPitch(c.Request().Context(), id, userID(c))
	if err != nil {
		goapp.Log.Error().Err(err).Send()
		return nil, errResponse(c, http.StatusInternalServerError, "can't load pitch")
	}
	if rec == nil {
		return nil, errResponse(c, http.StatusNotFound, "no pitch")
	}
	return rec, nil
}

func mapPitch(rec *persistence.PitchRecord) *api.PitchData {
	st := status.From(rec.Status)
	if st == 0 {
		// a record is completed only when the row says so
		st = status.Processing
	}
	return &api.PitchData{
		ID:         rec.ID,
		Title:      rec.Title,
		OneLiner:   rec.OneLiner,
		Structure:  rec.Structure,
		Transcript: rec.Transcript,
		Status:     st.String(),
		CreatedAt:  rec.Created.Format(time.RFC3339),
	}
}

func errResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, api.ErrorResponse{Error: msg})
}
