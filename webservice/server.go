// Package webservice exposes a Resolver over HTTP.
package webservice

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"

	"github.com/Ramzeth/asnranger"
)

// TTL is how long clients and proxies may cache a response.
const TTL = 24 * time.Hour

const (
	indexBody        = "Beep beep"
	msgMissingIP     = "Missing IP address"
	msgInvalidIP     = "Invalid IP address"
	headerVersion    = "X-Table-Version"
	headerVaryValues = "Accept-Encoding, Accept"
	mimeJSON         = "application/json; charset=utf-8"
)

// Server answers AS lookups for the table currently held by a Resolver.
type Server struct {
	echo     *echo.Echo
	resolver *asnranger.Resolver
	logger   logrus.FieldLogger
	now      func() time.Time
}

type lookupResponse struct {
	IP        string `json:"ip"`
	Announced bool   `json:"announced"`
	*announcedRange
}

type announcedRange struct {
	FirstIP     string `json:"first_ip"`
	LastIP      string `json:"last_ip"`
	Number      uint32 `json:"as_number"`
	Country     string `json:"as_country_code"`
	Description string `json:"as_description"`
}

// New returns a Server resolving through resolver. A nil logger means the
// logrus standard logger.
func New(resolver *asnranger.Resolver, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		echo:     echo.New(),
		resolver: resolver,
		logger:   logger.WithField("component", "webservice"),
		now:      time.Now,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(logger.Out)
	e.Logger.SetLevel(echoLevel(logger.GetLevel()))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency,
				"remote_ip":  v.RemoteIP,
				"user_agent": v.UserAgent,
			})
			switch {
			case v.Status >= 500:
				entry.Error("request")
			case v.Status >= 400:
				entry.Warn("request")
			default:
				entry.Debug("request")
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/", s.index)
	v1 := e.Group("/v1")
	v1.GET("/as/ip", s.missingIP)
	v1.GET("/as/ip/", s.missingIP)
	v1.GET("/as/ip/:ip", s.lookup)
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr and serves until Shutdown is called. It returns nil
// after a graceful shutdown.
func (s *Server) Start(addr string) error {
	s.logger.WithField("listen", addr).Info("webservice ready")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setCacheHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderCacheControl, "public, max-age="+strconv.Itoa(int(TTL.Seconds())))
	h.Set("Expires", s.now().Add(TTL).UTC().Format(http.TimeFormat))
}

func (s *Server) index(c echo.Context) error {
	s.setCacheHeaders(c)
	return c.String(http.StatusOK, indexBody)
}

func (s *Server) missingIP(c echo.Context) error {
	s.setCacheHeaders(c)
	return c.String(http.StatusBadRequest, msgMissingIP)
}

func (s *Server) lookup(c echo.Context) error {
	s.setCacheHeaders(c)
	raw := c.Param("ip")
	if raw == "" {
		return c.String(http.StatusBadRequest, msgMissingIP)
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil || addr.Zone() != "" {
		return c.String(http.StatusBadRequest, msgInvalidIP)
	}

	record, found, version := s.resolver.ResolveWithVersion(addr)
	h := c.Response().Header()
	h.Set(echo.HeaderVary, headerVaryValues)
	h.Set(headerVersion, strconv.FormatUint(version, 10))
	h.Set(echo.HeaderContentType, mimeJSON)

	resp := lookupResponse{IP: raw, Announced: found}
	if found {
		resp.announcedRange = &announcedRange{
			FirstIP:     record.FirstIP.String(),
			LastIP:      record.LastIP.String(),
			Number:      record.Number,
			Country:     record.Country,
			Description: record.Description,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func echoLevel(level logrus.Level) log.Lvl {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return log.DEBUG
	case logrus.InfoLevel:
		return log.INFO
	case logrus.WarnLevel:
		return log.WARN
	case logrus.ErrorLevel:
		return log.ERROR
	default:
		return log.OFF
	}
}
