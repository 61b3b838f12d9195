package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/alimgiray/contribstats/internal/models"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ContributionReporter builds contribution reports for a username pair
type ContributionReporter interface {
	BuildReport(ctx context.Context, githubUsername, giteeUsername string) models.ContributionReport
}

// WorkbookBuilder renders a report as a spreadsheet
type WorkbookBuilder interface {
	BuildWorkbook(report models.ContributionReport) ([]byte, error)
}

type ContributionHandler struct {
	contributionService ContributionReporter
	exportService       WorkbookBuilder
}

func NewContributionHandler(contributionService ContributionReporter, exportService WorkbookBuilder) *ContributionHandler {
	return &ContributionHandler{
		contributionService: contributionService,
		exportService:       exportService,
	}
}

// GetContributions returns the daily series for the requested usernames
func (h *ContributionHandler) GetContributions(c *gin.Context) {
	githubUsername, giteeUsername, ok := usernames(c)
	if !ok {
		return
	}

	report := h.contributionService.BuildReport(c.Request.Context(), githubUsername, giteeUsername)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ok",
		"data":    report.Days,
		"window":  report.Window,
		"summary": report.Summary,
		"total":   report.Total,
	})
}

// ExportContributions returns the same report as an XLSX download
func (h *ContributionHandler) ExportContributions(c *gin.Context) {
	githubUsername, giteeUsername, ok := usernames(c)
	if !ok {
		return
	}

	report := h.contributionService.BuildReport(c.Request.Context(), githubUsername, giteeUsername)

	content, err := h.exportService.BuildWorkbook(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to build export",
		})
		return
	}

	filename := fmt.Sprintf("contributions_%s_%s.xlsx", report.Window.Start, report.Window.End)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, content)
}

// usernames reads both query parameters and rejects the request when neither is set
func usernames(c *gin.Context) (string, string, bool) {
	githubUsername := strings.TrimSpace(c.Query("githubUsername"))
	giteeUsername := strings.TrimSpace(c.Query("giteeUsername"))

	if githubUsername == "" && giteeUsername == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "githubUsername or giteeUsername is required",
		})
		return "", "", false
	}
	return githubUsername, giteeUsername, true
}
