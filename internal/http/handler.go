package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/driveops/driveops/internal/http/middleware"
	"github.com/driveops/driveops/internal/model"
	"github.com/driveops/driveops/internal/service"
	"github.com/driveops/driveops/internal/validate"
)

type Handler struct {
	drivers *service.DriverService
	dayLogs *service.DayLogService
	reports *service.ReportService
	loc     *time.Location
	log     zerolog.Logger
}

func NewHandler(
	drivers *service.DriverService,
	dayLogs *service.DayLogService,
	reports *service.ReportService,
	loc *time.Location,
	log zerolog.Logger,
) *Handler {
	return &Handler{drivers: drivers, dayLogs: dayLogs, reports: reports, loc: loc, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.POST("/auth/login", h.login)
	router.POST("/invitations/:id/accept", h.acceptInvitation)

	driver := router.Group("/")
	driver.Use(authMiddleware)
	driver.POST("/onboarding", h.completeOnboarding)
	driver.POST("/onboarding/documents", h.uploadDocument)
	driver.POST("/logs/start-of-day", h.submitStartOfDay)
	driver.POST("/logs/end-of-day", h.submitEndOfDay)
	driver.GET("/logs/today", h.todayStatus)
	driver.POST("/incidents", h.reportIncident)

	admin := router.Group("/")
	admin.Use(authMiddleware, middleware.RequireAdmin())
	admin.POST("/invitations", h.invite)
	admin.POST("/drivers/:id/status", h.changeStatus)
	admin.POST("/drivers/:id/vehicle", h.assignVehicle)
	admin.DELETE("/drivers/:id/vehicle", h.unassignVehicle)
	admin.POST("/reports/day-logs/export", h.exportDayLogs)
	admin.POST("/reports/day-logs/export/pdf", h.exportDayLogsPDF)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.drivers.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) invite(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req validate.InvitationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invitation, err := h.drivers.Invite(c.Request.Context(), service.InviteInput{
		Principal: principal,
		Form:      req,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invitation)
}

func (h *Handler) acceptInvitation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitation id"})
		return
	}
	driver, err := h.drivers.AcceptInvitation(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": driver.Status})
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) changeStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	driver, err := h.drivers.ChangeStatus(c.Request.Context(), service.ChangeStatusInput{
		Principal: principal,
		DriverID:  driverID,
		Target:    model.DriverStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": driver.Status})
}

type assignVehicleRequest struct {
	VehicleID string `json:"vehicle_id" binding:"required"`
}

func (h *Handler) assignVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}
	var req assignVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle_id"})
		return
	}
	if err := h.drivers.AssignVehicle(c.Request.Context(), service.AssignVehicleInput{
		Principal: principal,
		DriverID:  driverID,
		VehicleID: vehicleID,
	}); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": true})
}

func (h *Handler) unassignVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}
	if err := h.drivers.UnassignVehicle(c.Request.Context(), principal, driverID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": false})
}

func (h *Handler) completeOnboarding(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req validate.OnboardingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.drivers.CompleteOnboarding(c.Request.Context(), service.OnboardingSubmission{
		DriverID: principal.UserID,
		Form:     req,
	}); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"onboarding": "saved"})
}

func (h *Handler) uploadDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	kind := service.DocumentKind(c.PostForm("kind"))
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read document"})
		return
	}
	defer src.Close()

	path, err := h.drivers.UploadDocument(c.Request.Context(), service.DocumentUpload{
		DriverID:    principal.UserID,
		Kind:        kind,
		Name:        file.Filename,
		Size:        file.Size,
		ContentType: file.Header.Get("Content-Type"),
		Content:     src,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": path})
}

func (h *Handler) submitStartOfDay(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req struct {
		LogDate string `json:"log_date" binding:"required"`
		validate.StartOfDayInput
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logDate, err := h.parseDate(req.LogDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log_date"})
		return
	}
	saved, err := h.dayLogs.SubmitStartOfDay(c.Request.Context(), service.SubmitStartOfDayInput{
		DriverID: principal.UserID,
		LogDate:  logDate,
		Form:     req.StartOfDayInput,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) submitEndOfDay(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	logDate, err := h.parseDate(c.PostForm("log_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log_date"})
		return
	}
	delivered, err := strconv.Atoi(c.PostForm("parcels_delivered"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcels_delivered"})
		return
	}
	file, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screenshot file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read screenshot"})
		return
	}
	defer src.Close()

	result, err := h.dayLogs.SubmitEndOfDay(c.Request.Context(), service.SubmitEndOfDayInput{
		DriverID: principal.UserID,
		LogDate:  logDate,
		Form: validate.EndOfDayInput{
			ParcelsDelivered: delivered,
			IssuesReported:   c.PostForm("issues_reported"),
		},
		Screenshot: service.ScreenshotUpload{
			Name:        file.Filename,
			Size:        file.Size,
			ContentType: file.Header.Get("Content-Type"),
			Content:     src,
		},
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"log": result.Log, "warnings": result.Warnings})
}

func (h *Handler) todayStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	status, err := h.dayLogs.TodayState(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) reportIncident(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req validate.IncidentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	incident, err := h.dayLogs.ReportIncident(c.Request.Context(), service.ReportIncidentInput{
		DriverID: principal.UserID,
		Form:     req,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, incident)
}

type exportRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

func (h *Handler) exportInput(c *gin.Context) (service.GenerateReportInput, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return service.GenerateReportInput{}, false
	}
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.GenerateReportInput{}, false
	}
	start, err := h.parseDate(req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start"})
		return service.GenerateReportInput{}, false
	}
	end, err := h.parseDate(req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end"})
		return service.GenerateReportInput{}, false
	}
	return service.GenerateReportInput{
		PeriodStart: start,
		PeriodEnd:   end,
		Principal:   principal,
	}, true
}

func (h *Handler) exportDayLogs(c *gin.Context) {
	input, ok := h.exportInput(c)
	if !ok {
		return
	}
	result, err := h.reports.GenerateReport(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) exportDayLogsPDF(c *gin.Context) {
	input, ok := h.exportInput(c)
	if !ok {
		return
	}
	result, err := h.reports.GenerateReportPDF(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

// handleError maps service errors onto responses. Validation failures list
// every offending field; store faults become a generic message, never raw
// platform error text.
func (h *Handler) handleError(c *gin.Context, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "validation failed",
			"fields":   validation.Result.Errors,
			"warnings": validation.Result.Warnings,
		})
	case errors.Is(err, service.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotPermitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateEntry):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
	}
}

func (h *Handler) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, raw, h.loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
