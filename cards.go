package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"trainercard/models"
	"trainercard/pkg/card"
	"trainercard/pkg/progress"
	"trainercard/pkg/queue"
)

// cardStore is the part of progress.Store the upload path writes to.
type cardStore interface {
	IsProcessed(ctx context.Context, digest string) (bool, error)
	MarkProcessed(ctx context.Context, p models.ProcessedImage) error
	Record(ctx context.Context, userID uint, c card.ParsedCard, postedAt time.Time, source string) (bool, error)
}

type jobQueue interface {
	Enqueue(ctx context.Context, p queue.RecognizePayload) (string, error)
}

// User-facing messages per failure kind.
const (
	msgLoad       = "could not read the image file"
	msgNotACard   = "no trainer card found in the image"
	msgIncomplete = "found a trainer card but couldn't read some important fields, please upload a clearer screenshot"
	msgTimeout    = "recognition timed out, please try again"
	msgInternal   = "recognition failed"
)

// failureResponse maps a recognition error to an HTTP status and message.
func failureResponse(err error) (int, string) {
	switch card.KindOf(err) {
	case card.LoadFailure:
		return http.StatusBadRequest, msgLoad
	case card.NotACardFailure:
		return http.StatusUnprocessableEntity, msgNotACard
	case card.IncompleteExtractionFailure:
		return http.StatusUnprocessableEntity, msgIncomplete
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, msgTimeout
	}
	return http.StatusInternalServerError, msgInternal
}

// uploadCardHandler recognizes an uploaded screenshot and records it. With
// ?async=1 the image is queued instead and the job id returned.
func uploadCardHandler(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	maxBytes := cfg.MaxUploadBytes()
	if file.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file too large (max %dMB)", cfg.MaxUploadMB)})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file unreadable"})
		return
	}
	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file unreadable"})
		return
	}

	ctx := c.Request.Context()
	digest := progress.Digest(data)
	done, err := cards.IsProcessed(ctx, digest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if done {
		c.JSON(http.StatusConflict, gin.H{"error": "image already processed"})
		return
	}

	postedAt := time.Now()
	if v := c.PostForm("posted_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "posted_at must be RFC3339"})
			return
		}
		postedAt = t
	}

	if c.Query("async") == "1" {
		if jobs == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "asynchronous recognition is not configured"})
			return
		}
		jobID, err := jobs.Enqueue(ctx, queue.RecognizePayload{
			UserID:   uid,
			Filename: file.Filename,
			Image:    data,
			PostedAt: postedAt,
			Digest:   digest,
		})
		if err != nil {
			log.Error().Err(err).Msg("enqueue recognition")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue unavailable"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
		return
	}

	storePath := saveUpload(uid, digest, file.Filename, data)
	rctx, cancel := context.WithTimeout(ctx, cfg.RecognizeTimeout)
	parsed, err := recognizer.RecognizeContext(rctx, data)
	cancel()
	if err != nil {
		status, msg := failureResponse(err)
		resp := gin.H{"error": msg}
		if kind := card.KindOf(err); kind != 0 {
			resp["kind"] = kind.String()
			markProcessed(ctx, uid, digest, file.Filename, storePath, false, err)
		} else {
			log.Error().Err(err).Str("file", file.Filename).Msg("recognition error")
		}
		c.JSON(status, resp)
		return
	}

	written, err := cards.Record(ctx, uid, parsed, postedAt, file.Filename)
	if err != nil {
		log.Error().Err(err).Uint("user_id", uid).Msg("record card")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record card"})
		return
	}
	markProcessed(ctx, uid, digest, file.Filename, storePath, written, nil)
	c.JSON(http.StatusOK, gin.H{"card": parsed, "recorded": written})
}

func markProcessed(ctx context.Context, uid uint, digest, name, storePath string, written bool, cause error) {
	outcome, reason := progress.Outcome(written, cause)
	err := cards.MarkProcessed(ctx, models.ProcessedImage{
		Digest:    digest,
		UserID:    &uid,
		FileName:  name,
		StorePath: storePath,
		Outcome:   outcome,
		Reason:    reason,
	})
	if err != nil {
		log.Warn().Err(err).Str("digest", digest).Msg("mark processed")
	}
}

// saveUpload keeps a copy of the screenshot under the upload base and
// returns its relative path, or "" when it could not be written.
func saveUpload(uid uint, digest, name string, data []byte) string {
	rel := filepath.Join(strconv.FormatUint(uint64(uid), 10), digest[:12]+"-"+filepath.Base(name))
	full := filepath.Join(uploadBaseDir(), rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		log.Warn().Err(err).Msg("mkdir upload dir")
		return ""
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		log.Warn().Err(err).Msg("save upload")
		return ""
	}
	return filepath.ToSlash(rel)
}
