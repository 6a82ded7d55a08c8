// Package preventive exposes the work-order generator over HTTP.
package preventive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/application/preventive/usecases"
	apperrors "cmms/internal/shared/errors"
	"cmms/internal/shared/logger"
	"cmms/internal/shared/utils"
)

type GenerateAllExecutor interface {
	Execute(ctx context.Context, cmd usecases.GenerateAllCommand) (*dto.GenerationResult, error)
}

type GenerateForPlanExecutor interface {
	Execute(ctx context.Context, cmd usecases.GenerateForPlanCommand) (*dto.GenerationResult, error)
}

type CheckPendingExecutor interface {
	Execute(ctx context.Context) (*dto.PendingOccurrencesResult, error)
}

type ListRunsExecutor interface {
	Execute(ctx context.Context, limit int) ([]*dto.GenerationResult, error)
}

// SchedulerInspector is nil when the scheduler runs in a separate worker.
type SchedulerInspector interface {
	Status() dto.SchedulerStatus
	History(limit int) []dto.SchedulerExecution
}

type Handler struct {
	generateAllUC     GenerateAllExecutor
	generateForPlanUC GenerateForPlanExecutor
	checkPendingUC    CheckPendingExecutor
	listRunsUC        ListRunsExecutor
	scheduler         SchedulerInspector
	logger            logger.Interface
}

func NewHandler(
	generateAllUC GenerateAllExecutor,
	generateForPlanUC GenerateForPlanExecutor,
	checkPendingUC CheckPendingExecutor,
	listRunsUC ListRunsExecutor,
	scheduler SchedulerInspector,
	logger logger.Interface,
) *Handler {
	return &Handler{
		generateAllUC:     generateAllUC,
		generateForPlanUC: generateForPlanUC,
		checkPendingUC:    checkPendingUC,
		listRunsUC:        listRunsUC,
		scheduler:         scheduler,
		logger:            logger,
	}
}

// GenerateAll handles POST /api/v1/preventive/generate
func (h *Handler) GenerateAll(c *gin.Context) {
	// A client disconnect must not fail a run that is already writing.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.generateAllUC.Execute(ctx, usecases.GenerateAllCommand{Trigger: dto.TriggerManual})
	h.respondRun(c, result, err)
}

// GenerateForPlan handles POST /api/v1/preventive/plans/:code/generate
func (h *Handler) GenerateForPlan(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.generateForPlanUC.Execute(ctx, usecases.GenerateForPlanCommand{
		PlanCode: c.Param("code"),
		Trigger:  dto.TriggerManual,
	})
	h.respondRun(c, result, err)
}

func (h *Handler) respondRun(c *gin.Context, result *dto.GenerationResult, err error) {
	if errors.Is(err, usecases.ErrGenerationInProgress) {
		utils.ErrorResponseWithError(c, apperrors.NewConflictError("a generation run is already in progress"))
		return
	}
	if err != nil {
		if !apperrors.IsAppError(err) {
			h.logger.Errorw("generation request failed", "path", c.FullPath(), "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Failed() {
		utils.PartialFailureResponse(c, http.StatusInternalServerError,
			fmt.Sprintf("generation run failed: %s", result.Error), result)
		return
	}
	utils.SuccessResponse(c, http.StatusOK,
		fmt.Sprintf("%d work orders created, %d skipped, %d errors",
			result.CreatedCount, result.SkippedCount, result.ErrorCount),
		result)
}

// Pending handles GET /api/v1/preventive/pending
func (h *Handler) Pending(c *gin.Context) {
	result, err := h.checkPendingUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to check pending occurrences", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Runs handles GET /api/v1/preventive/runs
func (h *Handler) Runs(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	runs, err := h.listRunsUC.Execute(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", runs)
}

// SchedulerStatus handles GET /api/v1/preventive/scheduler/status
func (h *Handler) SchedulerStatus(c *gin.Context) {
	if h.scheduler == nil {
		utils.ErrorResponseWithError(c, apperrors.NewUnavailableError("scheduler is not running in this process"))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", h.scheduler.Status())
}

// SchedulerHistory handles GET /api/v1/preventive/scheduler/history
func (h *Handler) SchedulerHistory(c *gin.Context) {
	if h.scheduler == nil {
		utils.ErrorResponseWithError(c, apperrors.NewUnavailableError("scheduler is not running in this process"))
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", h.scheduler.History(limit))
}

func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperrors.NewValidationError("Invalid limit", raw)
	}
	return limit, nil
}
