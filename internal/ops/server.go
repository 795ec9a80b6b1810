// Package ops serves the operational HTTP surface next to the streaming
// socket: health and readiness probes, Prometheus metrics, a status
// snapshot, and a websockify endpoint that carries the viewer protocol
// over a WebSocket for browser clients.
package ops

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/observability"
	"github.com/adamdewolf/OpenCentauri-VNC/internal/rfb"
	"github.com/adamdewolf/OpenCentauri-VNC/internal/server"
)

// Options configures the ops server. Source, Gate, and Logger are required;
// the rest have working defaults.
type Options struct {
	Node        string
	Device      string
	Name        string
	FPS         int
	CorsOrigins []string
	Source      rfb.FrameSource
	Gate        *server.Gate
	Logger      zerolog.Logger
}

type Server struct {
	opts    Options
	router  *gin.Engine
	started time.Time
}

func New(opts Options) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(opts.Logger))
	r.Use(observability.RequestMetricsMiddleware(opts.Node))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		opts:    opts,
		router:  r,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": s.opts.Node,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.started).String(),
			"service": s.opts.Node,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/status", func(c *gin.Context) {
		g := s.opts.Source.Geometry()
		c.JSON(http.StatusOK, gin.H{
			"device": s.opts.Device,
			"name":   s.opts.Name,
			"width":  g.Width,
			"height": g.Height,
			"stride": g.Stride,
			"fps":    rfb.ClampFPS(s.opts.FPS),
			"uptime": time.Since(s.started).String(),
		})
	})

	s.router.GET("/websockify", s.handleWebsockify)
}

// Cross-origin checks for the stream happen at the protocol layer; the
// socket carries no credentials and the handshake admits one viewer.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func (s *Server) handleWebsockify(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.opts.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn := newWSConn(ws)
	defer conn.Close()

	remote := c.Request.RemoteAddr
	if !s.opts.Gate.TryAcquire() {
		s.opts.Logger.Warn().Str("remote", remote).Msg("web viewer refused, session already active")
		ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session already active"),
			time.Now().Add(time.Second),
		)
		return
	}
	defer s.opts.Gate.Release()

	observability.RecordSessionStart("ws")
	s.opts.Logger.Info().Str("remote", remote).Msg("web viewer connected")

	sess := rfb.NewSession(conn, s.opts.Source, s.opts.Name, s.opts.FPS, s.opts.Logger)
	err = sess.Run(c.Request.Context())

	cause := server.CauseLabel(err)
	observability.RecordSessionEnd("ws", cause)
	evt := s.opts.Logger.Info()
	if rfb.IsProtocolViolation(err) {
		evt = s.opts.Logger.Warn().Err(err)
	}
	evt.Str("remote", remote).Str("cause", cause).Msg("web viewer disconnected")
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
