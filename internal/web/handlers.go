package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ironsheep/pose-tools-mcp/internal/imaging"
	"github.com/ironsheep/pose-tools-mcp/internal/log"
	"github.com/ironsheep/pose-tools-mcp/internal/pipeline"
	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

// AnalyzeResponse is the body of a successful POST /analyze.
type AnalyzeResponse struct {
	Feedback  string            `json:"feedback"`
	Image     string            `json:"image"` // data URL, PNG
	Detected  bool              `json:"detected"`
	Judgments []pose.Judgment   `json:"judgments"`
	Landmarks *pose.LandmarkSet `json:"landmarks"`
	ElapsedMS int64             `json:"elapsed_ms"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	RequestID string            `json:"request_id"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleAnalyze runs the pipeline on the multipart field "image".
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	logger := log.With("request_id", requestIDFrom(c))

	fh, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no image uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read upload")
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := s.pipeline.Process(c.UserContext(), img)
	if err != nil {
		if pipeline.IsValidationError(err) {
			logger.Warn("pose validation failed", "error", err)
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		var de *pipeline.DetectError
		if errors.As(err, &de) {
			logger.Error("detector failed", "error", err)
		}
		return err
	}

	encoded, err := imaging.EncodePNG(res.Image)
	if err != nil {
		return err
	}

	logger.Info("pose analyzed", "file", fh.Filename, "detected", res.Detected, "elapsed", res.Elapsed)
	return c.JSON(AnalyzeResponse{
		Feedback:  res.Feedback,
		Image:     encoded.DataURL(),
		Detected:  res.Detected,
		Judgments: res.Judgments,
		Landmarks: res.Landmarks,
		ElapsedMS: res.Elapsed.Milliseconds(),
		Width:     encoded.Width,
		Height:    encoded.Height,
		RequestID: requestIDFrom(c),
	})
}
