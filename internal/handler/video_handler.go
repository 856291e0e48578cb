package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/talktuber/talktuber/internal/domain"
	"github.com/talktuber/talktuber/internal/port"
)

// VideoProcessor runs the transcript-to-index pipeline for one video.
type VideoProcessor interface {
	Process(ctx context.Context, videoID string) (domain.ProcessingResult, error)
	Processed(ctx context.Context, videoID string) (bool, error)
	LanguageInfo(ctx context.Context, videoID string) ([]domain.TranscriptTrack, error)
}

// Answerer answers a question about a processed video.
type Answerer interface {
	Answer(ctx context.Context, videoID, question string) (string, error)
}

// VideoHandler exposes the transcript-QA pipeline over HTTP.
type VideoHandler struct {
	pipeline VideoProcessor
	rag      Answerer
	appName  string
}

// NewVideoHandler creates the handler for all video routes.
func NewVideoHandler(pipeline VideoProcessor, rag Answerer, appName string) *VideoHandler {
	return &VideoHandler{pipeline: pipeline, rag: rag, appName: appName}
}

// Register sets up the video routes.
func (h *VideoHandler) Register(router fiber.Router) {
	router.Get("/video_status/:videoId", h.VideoStatus)
	router.Get("/video_languages/:videoId", h.VideoLanguages)
	router.Post("/process-video", h.ProcessVideo)
	router.Post("/chat", h.Chat)
	router.Get("/health", h.Health)
}

// VideoStatus reports whether a video's index is complete. A lookup failure
// degrades to not_processed rather than erroring out.
func (h *VideoHandler) VideoStatus(c fiber.Ctx) error {
	videoID := c.Params("videoId")

	processed, err := h.pipeline.Processed(c.Context(), videoID)
	if err != nil {
		slog.Error("video status lookup failed", "video_id", videoID, "error", err)
		return c.JSON(fiber.Map{
			"status": "not_processed",
			"error":  "status lookup failed",
		})
	}

	status := "not_processed"
	if processed {
		status = "processed"
	}
	return c.JSON(fiber.Map{"status": status})
}

// VideoLanguages lists the caption tracks available for a video.
func (h *VideoHandler) VideoLanguages(c fiber.Ctx) error {
	videoID := c.Params("videoId")

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	tracks, err := h.pipeline.LanguageInfo(ctx, videoID)
	if err != nil {
		if errors.Is(err, port.ErrTranscriptUnavailable) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No transcripts available for this video",
			})
		}
		slog.Error("language info failed", "video_id", videoID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching language info",
		})
	}

	hasEnglish := false
	for _, t := range tracks {
		if domain.IsEnglishCode(t.LanguageCode) {
			hasEnglish = true
			break
		}
	}

	return c.JSON(fiber.Map{
		"available_languages": tracks,
		"has_english":         hasEnglish,
		"needs_translation":   !hasEnglish,
	})
}

// ProcessVideo runs the processing pipeline for the requested video.
func (h *VideoHandler) ProcessVideo(c fiber.Ctx) error {
	var body struct {
		VideoID string `json:"videoId"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.VideoID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Video ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Minute)
	defer cancel()

	result, err := h.pipeline.Process(ctx, body.VideoID)
	if err != nil {
		if errors.Is(err, port.ErrTranscriptUnavailable) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":  "Failed to process video: no transcripts available or transcripts are disabled",
				"status": domain.ProcessStatusFailed,
			})
		}
		slog.Error("process video failed", "video_id", body.VideoID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "An error occurred while processing the video",
			"status": "error",
		})
	}

	message := fmt.Sprintf("Video %s processed successfully", result.VideoID)
	if result.Status == domain.ProcessStatusAlreadyProcessed {
		message = fmt.Sprintf("Video %s already processed", result.VideoID)
	}
	return c.JSON(fiber.Map{
		"message": message,
		"status":  result.Status,
	})
}

// Chat answers a question about a processed video. The three failure modes
// stay distinguishable: missing index, rejected credentials, everything else.
func (h *VideoHandler) Chat(c fiber.Ctx) error {
	var body struct {
		VideoID  string `json:"videoId"`
		Question string `json:"question"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.VideoID == "" || body.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Video ID and question are required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Minute)
	defer cancel()

	answer, err := h.rag.Answer(ctx, body.VideoID, body.Question)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrVideoNotProcessed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "This video has not been processed yet. Please process the video first.",
			})
		case errors.Is(err, port.ErrInvalidCredentials):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "The language model API key is invalid or expired. Please check your credentials.",
			})
		default:
			slog.Error("chat failed", "video_id", body.VideoID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Sorry, something went wrong while answering. Please try again.",
			})
		}
	}

	return c.JSON(fiber.Map{"answer": answer})
}

// Health is the liveness probe.
func (h *VideoHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": h.appName + " is running",
	})
}
