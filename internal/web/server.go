// Package web serves the browser front end of the pose checker: an upload
// page and the POST /analyze endpoint it calls.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/pose-tools-mcp/internal/log"
	"github.com/ironsheep/pose-tools-mcp/internal/pipeline"
)

//go:embed static
var staticFS embed.FS

const localRequestID = "request_id"

// Options configure the web server.
type Options struct {
	Addr      string
	BodyLimit int // bytes; 0 means 16 MB
	Version   string
}

// Server is the web UI server
type Server struct {
	app      *fiber.App
	addr     string
	pipeline *pipeline.Pipeline
}

// NewServer creates the fiber app and registers routes.
func NewServer(p *pipeline.Pipeline, opts Options) (*Server, error) {
	if p == nil {
		return nil, errors.New("web: pipeline is required")
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 16 * 1024 * 1024
	}

	s := &Server{
		addr:     opts.Addr,
		pipeline: p,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Pose Tools " + opts.Version,
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		JSONEncoder:           jsoniter.Marshal,
		JSONDecoder:           jsoniter.Unmarshal,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger())

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	index, err := fs.ReadFile(static, "index.html")
	if err != nil {
		return nil, err
	}

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.Send(index)
	})
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(static),
	}))
	app.Get("/health", s.handleHealth)
	app.Post("/analyze", s.handleAnalyze)

	s.app = app
	return s, nil
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured address and blocks.
func (s *Server) Start() error {
	log.Info("web UI listening", "addr", "http://"+s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestLogger tags each request with an id and logs it when done.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals(localRequestID, id)

		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.With("request_id", id).Info("http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return nil
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}
