package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wellness-planner/internal/config"
	"wellness-planner/internal/metrics"
	"wellness-planner/internal/planner"
	"wellness-planner/internal/render"

	"github.com/gin-gonic/gin"
)

// How far back /api/debug looks.
const (
	usageWindowDays = 7
	recentPlanLimit = 7
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleGetPlan(c *gin.Context) {
	refresh, err := parseBool(c.Query("refresh"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "refresh must be true or false")
		return
	}

	res, err := s.plans.Resolve(c.Request.Context(), planner.Request{
		Date:         strings.TrimSpace(c.Query("date")),
		ForceRefresh: refresh,
	})
	if err != nil {
		s.respondPlanError(c, err)
		return
	}

	noCache(c)
	c.Header("X-Plan-Source", string(res.Source))
	c.JSON(http.StatusOK, res.Plan)
}

func (s *Server) handlePlanPDF(c *gin.Context) {
	res, err := s.plans.Resolve(c.Request.Context(), planner.Request{Date: strings.TrimSpace(c.Query("date"))})
	if err != nil {
		s.respondPlanError(c, err)
		return
	}

	pdf, err := render.PDF(res.Plan)
	if err != nil {
		s.log.Error("Failed to render PDF", "date", res.Plan.Date, "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to render PDF")
		return
	}

	noCache(c)
	c.Header("Content-Disposition", `attachment; filename="`+render.PDFFilename(res.Plan)+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) handleDashboard(c *gin.Context) {
	if !s.premium.Allows(c.Query("is_premium")) {
		c.HTML(http.StatusOK, "locked", nil)
		return
	}

	res, err := s.plans.Resolve(c.Request.Context(), planner.Request{})
	if err != nil {
		s.log.Error("Failed to resolve dashboard plan", "error", err)
		c.String(http.StatusInternalServerError, "Failed to load today's plan")
		return
	}

	noCache(c)
	pdfLink := "/api/plan/pdf?date=" + res.Plan.Date
	c.HTML(http.StatusOK, "dashboard", render.DashboardData(res.Plan, string(res.Source), pdfLink))
}

func (s *Server) handleDebug(c *gin.Context) {
	info := gin.H{
		"mode":                s.plans.Mode().String(),
		"storeBackend":        s.cfg.StoreBackend,
		"llmProvider":         s.cfg.LLMProvider,
		"generatorConfigured": s.cfg.GeneratorConfigured(),
		"emailConfigured":     s.cfg.Require(config.EnvSendGridAPIKey, config.EnvEmailFrom, config.EnvRecipients) == nil,
		"recipients":          len(s.cfg.Recipients),
		"telegramEnabled":     s.cfg.TelegramBotToken != "" && s.cfg.TelegramChatID != 0,
		"premiumSigned":       s.premium.Signed(),
		"today":               s.plans.Today(),
		"timezone":            s.cfg.Timezone,
		"runtime":             metrics.Snapshot(s.cfg.DataDir),
	}
	if recent, err := s.plans.Recent(c.Request.Context(), recentPlanLimit); err != nil {
		s.log.Warn("Failed to list recent plans", "error", err)
	} else {
		dates := make([]string, 0, len(recent))
		for _, p := range recent {
			dates = append(dates, p.Date)
		}
		info["recentPlans"] = dates
	}
	if s.usage != nil {
		usage, err := s.usage.GetDailyUsage(usageWindowDays)
		if err != nil {
			s.log.Warn("Failed to read usage metrics", "error", err)
		} else {
			info["usage"] = usage
		}
	}
	noCache(c)
	c.JSON(http.StatusOK, info)
}

type generateRequest struct {
	Date  string `json:"date"`
	Force bool   `json:"force"`
}

func (s *Server) handleGeneratePlan(c *gin.Context) {
	if err := s.cfg.RequireGenerator(); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	plan, err := s.plans.GenerateFor(c.Request.Context(), strings.TrimSpace(req.Date), req.Force)
	if err != nil {
		var vErr *planner.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondError(c, http.StatusBadRequest, vErr.Msg)
		case errors.Is(err, planner.ErrPlanExists):
			respondError(c, http.StatusConflict, "Plan already exists for this date. Use force=true to overwrite.")
		default:
			s.log.Error("Admin plan generation failed", "date", req.Date, "error", err)
			respondError(c, http.StatusInternalServerError, "Failed to generate plan")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Plan generated and saved for " + plan.Date,
		"plan":    plan,
	})
}

func (s *Server) handlePlanExists(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		respondError(c, http.StatusBadRequest, "Date parameter is required")
		return
	}
	exists, err := s.plans.Exists(c.Request.Context(), date)
	if err != nil {
		s.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "exists": exists})
}

func (s *Server) handleClearToday(c *gin.Context) {
	deleted, err := s.plans.ClearToday(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to clear today's plan", "error", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	today := s.plans.Today()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cleared plan for " + today,
		"date":    today,
		"deleted": deleted,
	})
}

func (s *Server) handleCleanup(c *gin.Context) {
	days := s.cfg.RetentionDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	deleted, cutoff, err := s.plans.Purge(c.Request.Context(), days)
	if err != nil {
		s.log.Error("Plan cleanup failed", "cutoff", cutoff, "error", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted, "cutoff": cutoff})
}

func (s *Server) handleCronInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Daily plan cron endpoint is working. Use POST to trigger the daily email.",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleDailyJob(c *gin.Context) {
	if err := s.cfg.Require(config.EnvSendGridAPIKey, config.EnvEmailFrom, config.EnvRecipients); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if s.job == nil {
		respondError(c, http.StatusInternalServerError, "delivery pipeline not configured")
		return
	}

	report, err := s.job.Run(c.Request.Context())
	if err != nil {
		s.log.Error("Daily job failed", "error", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      report.Summary(),
		"runId":        report.RunID,
		"planDate":     report.PlanDate,
		"planSource":   report.PlanSource,
		"emailsSent":   report.EmailsSent,
		"emailsFailed": report.EmailsFailed,
		"purged":       report.Purged,
	})
}

func (s *Server) respondPlanError(c *gin.Context, err error) {
	var vErr *planner.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(c, http.StatusBadRequest, vErr.Msg)
	case errors.Is(err, planner.ErrNotFound):
		respondError(c, http.StatusNotFound, "No plan found for "+c.Query("date"))
	default:
		s.log.Error("Plan request failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

func parseBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
