package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
)

// callerID identifies the user performing a request. Auth is out of scope
// for this service, so the identity comes from a plain header with a
// fallback for unattributed calls.
func callerID(c *gin.Context) string {
	if userID := c.GetHeader("X-User-ID"); userID != "" {
		return userID
	}
	return "system"
}

// RegisterValidators installs the custom binding validations used by the
// request DTOs. Call once before serving requests.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("accounttype", func(fl validator.FieldLevel) bool {
		return domain.AccountType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("normalbalance", func(fl validator.FieldLevel) bool {
		return domain.NormalBalance(fl.Field().String()).IsValid()
	})
}

// Register wires all API routes onto the given router group.
func Register(group *gin.RouterGroup, svc *portssvc.ServiceContainer) {
	accountH := newAccountHandler(svc.Account)
	journalH := newJournalHandler(svc.Journal)
	detectionH := newDetectionHandler(svc.Journal, svc.Detection, svc.Suggestion, svc.Finding)

	accounts := group.Group("/accounts")
	{
		accounts.POST("", accountH.createAccount)
		accounts.GET("", accountH.listAccounts)
		accounts.GET("/:accountID", accountH.getAccount)
		accounts.DELETE("/:accountID", accountH.deactivateAccount)
	}

	entries := group.Group("/entries")
	{
		entries.POST("", journalH.createEntry)
		entries.GET("", journalH.listEntries)
		entries.GET("/:entryID", journalH.getEntry)
		entries.POST("/:entryID/post", journalH.postEntry)
		entries.POST("/:entryID/detect", detectionH.detectErrors)
		entries.GET("/:entryID/findings", detectionH.getEntryFindings)
	}

	findings := group.Group("/findings")
	{
		findings.GET("/unresolved", detectionH.listUnresolvedFindings)
		findings.POST("/:findingID/resolve", detectionH.resolveFinding)
	}
}
