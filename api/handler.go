package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ffclip/config"
	"ffclip/ffmpeg"
	"ffclip/media"
	"ffclip/task"
)

// Prober reads media metadata for the probe endpoint.
type Prober interface {
	Probe(ctx context.Context, path string) (*media.Metadata, error)
}

// Executor runs one operation inline for the call endpoint.
type Executor interface {
	Execute(ctx context.Context, op media.Operation) media.Result
}

type Handler struct {
	taskManager *task.Manager
	executor    Executor
	prober      Prober
	cfg         *config.Config
	log         zerolog.Logger
}

func NewHandler(tm *task.Manager, executor Executor, prober Prober, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		taskManager: tm,
		executor:    executor,
		prober:      prober,
		cfg:         cfg,
		log:         logger,
	}
}

// TaskRequest is one operation in a submission batch. Options holds the
// kind-specific fields; encoding.extraArgs is a single command string.
type TaskRequest struct {
	Kind    media.Kind      `json:"kind" binding:"required"`
	Options json.RawMessage `json:"options" binding:"required"`
}

type SubmitRequest struct {
	Tasks []TaskRequest `json:"tasks" binding:"required,min=1,dive"`
}

type ConcurrencyRequest struct {
	Limit *int `json:"limit" binding:"required"`
}

type ProbeRequest struct {
	Path string `json:"path" binding:"required"`
}

// extraArgsField picks the raw extraArgs string out of the options object.
type extraArgsField struct {
	Encoding struct {
		ExtraArgs string `json:"extraArgs"`
	} `json:"encoding"`
}

// decodeOperation turns a request into a typed operation, splitting and
// sanitizing any extra encoder arguments.
func decodeOperation(req TaskRequest) (media.Operation, error) {
	var raw extraArgsField
	if err := json.Unmarshal(req.Options, &raw); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	var extraArgs []string
	if raw.Encoding.ExtraArgs != "" {
		args, err := ffmpeg.SplitCommand(raw.Encoding.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("invalid extraArgs syntax: %w", err)
		}
		if err := ffmpeg.SanitizeAndValidateArgs(args); err != nil {
			return nil, fmt.Errorf("invalid extraArgs: %w", err)
		}
		extraArgs = args
	}

	switch req.Kind {
	case media.KindExtract:
		var o media.ExtractOptions
		if err := json.Unmarshal(req.Options, &o); err != nil {
			return nil, fmt.Errorf("invalid extract options: %w", err)
		}
		o.Encoding.ExtraArgs = extraArgs
		return o, nil
	case media.KindConcatenate:
		var o media.ConcatOptions
		if err := json.Unmarshal(req.Options, &o); err != nil {
			return nil, fmt.Errorf("invalid concatenate options: %w", err)
		}
		o.Encoding.ExtraArgs = extraArgs
		return o, nil
	case media.KindPartition:
		var o media.PartitionOptions
		if err := json.Unmarshal(req.Options, &o); err != nil {
			return nil, fmt.Errorf("invalid partition options: %w", err)
		}
		o.Encoding.ExtraArgs = extraArgs
		return o, nil
	default:
		return nil, fmt.Errorf("unknown operation kind %q", req.Kind)
	}
}

// handleCreateTasks accepts a batch of operations. Nothing is queued unless
// every entry decodes.
func (h *Handler) handleCreateTasks(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ops := make([]media.Operation, 0, len(req.Tasks))
	for i, tr := range req.Tasks {
		op, err := decodeOperation(tr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("task %d: %v", i, err)})
			return
		}
		ops = append(ops, op)
	}

	ids := h.taskManager.Submit(ops...)
	c.JSON(http.StatusAccepted, gin.H{"taskIds": ids})
}

// handleSyncCall runs a single operation without going through the queue and
// returns its result once it finishes. The request context aborts the
// operation if the client disconnects.
func (h *Handler) handleSyncCall(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, err := decodeOperation(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.executor.Execute(c.Request.Context(), op)
	if !res.Success {
		h.log.Warn().Str("kind", string(req.Kind)).Str("error", res.Error).Msg("direct call failed")
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) handleListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, h.taskManager.List())
}

func (h *Handler) handleGetTaskStatus(c *gin.Context) {
	t, found := h.taskManager.Get(c.Param("taskId"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// handleCancelTask reports 409 when the task is already finished or the
// running operation did not confirm the abort in time.
func (h *Handler) handleCancelTask(c *gin.Context) {
	taskID := c.Param("taskId")
	if _, found := h.taskManager.Get(taskID); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if !h.taskManager.Cancel(taskID) {
		t, _ := h.taskManager.Get(taskID)
		c.JSON(http.StatusConflict, gin.H{"error": "Task could not be canceled", "status": t.Status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task canceled"})
}

func (h *Handler) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tasks":            h.taskManager.Stats(),
		"concurrencyLimit": h.taskManager.ConcurrencyLimit(),
	})
}

func (h *Handler) handleCleanup(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"removed": h.taskManager.Cleanup()})
}

func (h *Handler) handleSetConcurrency(c *gin.Context) {
	var req ConcurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.taskManager.SetConcurrencyLimit(*req.Limit)
	c.JSON(http.StatusOK, gin.H{"concurrencyLimit": h.taskManager.ConcurrencyLimit()})
}

func (h *Handler) handleProbe(c *gin.Context) {
	var req ProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meta, err := h.prober.Probe(c.Request.Context(), req.Path)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *Handler) handleFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"input":          media.InputFormats,
		"output":         media.OutputFormats,
		"videoCodecs":    media.VideoCodecs,
		"audioCodecs":    media.AudioCodecs,
		"qualityPresets": media.QualityPresets,
	})
}

// handleEvents streams task lifecycle events as server-sent events until the
// client goes away.
func (h *Handler) handleEvents(c *gin.Context) {
	events, unsubscribe := h.taskManager.Subscribe(0)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(ev.Type), ev)
			c.Writer.Flush()
		}
	}
}

func errorStatus(err error) int {
	switch {
	case media.IsValidation(err):
		return http.StatusBadRequest
	case media.IsBackend(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
