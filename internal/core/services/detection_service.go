package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookcheck-dev/bookcheck/internal/apperrors"
	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portsrepo "github.com/bookcheck-dev/bookcheck/internal/core/ports/repositories"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
	"github.com/bookcheck-dev/bookcheck/internal/middleware"
)

// DetectionTuning holds the adjustable thresholds of the detection engine.
type DetectionTuning struct {
	// StdDevMultiplier is applied to the historical standard deviation when
	// computing the unusual-amount threshold.
	StdDevMultiplier float64
	// DuplicateWindowDays bounds the duplicate search to entries dated within
	// +/- this many days.
	DuplicateWindowDays int
	// HistoryWindowDays is the trailing window for baseline statistics.
	HistoryWindowDays int
	// MinBaselinePoints is the minimum number of nonzero amounts required
	// before a baseline is considered available.
	MinBaselinePoints int
}

// DefaultDetectionTuning returns the standard thresholds.
func DefaultDetectionTuning() DetectionTuning {
	return DetectionTuning{
		StdDevMultiplier:    3.0,
		DuplicateWindowDays: 30,
		HistoryWindowDays:   90,
		MinBaselinePoints:   10,
	}
}

var (
	highBalanceThreshold    = decimal.NewFromInt(1000)
	mediumBalanceThreshold  = decimal.NewFromInt(100)
	largeCashThreshold      = decimal.NewFromInt(10000)
	capitalizationThreshold = decimal.NewFromInt(5000)
	roundHundred            = decimal.NewFromInt(100)
	roundThousand           = decimal.NewFromInt(1000)
)

// detectionService runs the enumerated rule checks against a journal entry.
// Checks are independent: findings from one never suppress another, and the
// fixed execution order only affects presentation.
type detectionService struct {
	accountRepo portsrepo.AccountReader
	journalRepo portsrepo.JournalReader
	findingRepo portsrepo.FindingWriter
	statsSvc    portssvc.StatisticsSvcFacade
	tuning      DetectionTuning

	// now is swapped in tests to pin the invalid-date check.
	now func() time.Time
}

// NewDetectionService creates the detection orchestrator with its read-only
// collaborators and the finding log.
func NewDetectionService(
	accountRepo portsrepo.AccountReader,
	journalRepo portsrepo.JournalReader,
	findingRepo portsrepo.FindingWriter,
	statsSvc portssvc.StatisticsSvcFacade,
	tuning DetectionTuning,
) portssvc.DetectionSvcFacade {
	return &detectionService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		findingRepo: findingRepo,
		statsSvc:    statsSvc,
		tuning:      tuning,
		now:         time.Now,
	}
}

var _ portssvc.DetectionSvcFacade = (*detectionService)(nil)

// DetectAllErrors runs every rule check in a fixed order, persists each
// finding through the finding log, and returns the full list. It does not
// deduplicate across invocations; re-running detection appends to the log.
func (s *detectionService) DetectAllErrors(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if entry == nil {
		return nil, fmt.Errorf("%w: entry must not be nil", apperrors.ErrValidation)
	}

	findings := []domain.DetectionResult{}
	findings = append(findings, s.checkBalance(entry)...)
	findings = append(findings, s.checkZeroAmounts(entry)...)
	findings = append(findings, s.checkNegativeAmounts(entry)...)
	findings = append(findings, s.checkMissingDescriptions(entry)...)

	accountFindings, err := s.checkInvalidAccounts(ctx, entry)
	if err != nil {
		return nil, err
	}
	findings = append(findings, accountFindings...)

	findings = append(findings, s.checkInvalidDates(entry)...)

	typeFindings, err := s.checkAccountTypeConsistency(ctx, entry)
	if err != nil {
		return nil, err
	}
	findings = append(findings, typeFindings...)

	duplicateFindings, err := s.checkDuplicateEntries(ctx, entry)
	if err != nil {
		return nil, err
	}
	findings = append(findings, duplicateFindings...)

	amountFindings, err := s.checkUnusualAmounts(ctx, entry)
	if err != nil {
		return nil, err
	}
	findings = append(findings, amountFindings...)

	findings = append(findings, s.checkPostingPatterns(entry)...)

	businessFindings, err := s.checkBusinessRules(ctx, entry)
	if err != nil {
		return nil, err
	}
	findings = append(findings, businessFindings...)

	for i := range findings {
		errorID, err := s.findingRepo.LogError(ctx, findings[i])
		if err != nil {
			return nil, fmt.Errorf("failed to log finding for entry %s: %w", entry.EntryID, err)
		}
		findings[i].ErrorID = errorID
	}

	logger.Info("Detection completed",
		slog.String("entry_id", entry.EntryID),
		slog.Int("finding_count", len(findings)),
	)

	return findings, nil
}

func (s *detectionService) newFinding(entryID, lineID string, errType domain.ErrorType, severity domain.ErrorSeverity, description, correction string) domain.DetectionResult {
	return domain.DetectionResult{
		EntryID:             entryID,
		LineID:              lineID,
		ErrorType:           errType,
		ErrorSeverity:       severity,
		ErrorDescription:    description,
		SuggestedCorrection: correction,
		DetectedAt:          s.now().UTC(),
	}
}

// checkBalance flags entries whose debits and credits do not match.
func (s *detectionService) checkBalance(entry *domain.JournalEntry) []domain.DetectionResult {
	if entry.IsBalanced() {
		return nil
	}

	outOfBalance := entry.OutOfBalanceAmount()
	absAmount := outOfBalance.Abs()

	var severity domain.ErrorSeverity
	switch {
	case absAmount.GreaterThan(highBalanceThreshold):
		severity = domain.SeverityHigh
	case absAmount.GreaterThan(mediumBalanceThreshold):
		severity = domain.SeverityMedium
	default:
		severity = domain.SeverityLow
	}

	var suggestion string
	if outOfBalance.IsPositive() {
		suggestion = fmt.Sprintf("Add credit of $%s or reduce debits by $%s", absAmount, absAmount)
	} else {
		suggestion = fmt.Sprintf("Add debit of $%s or reduce credits by $%s", absAmount, absAmount)
	}

	return []domain.DetectionResult{s.newFinding(
		entry.EntryID, "",
		domain.UnbalancedEntry, severity,
		fmt.Sprintf("Entry is out of balance by $%s. Debits: $%s, Credits: $%s",
			outOfBalance, entry.TotalDebits(), entry.TotalCredits()),
		suggestion,
	)}
}

// checkZeroAmounts flags lines carrying neither a debit nor a credit.
func (s *detectionService) checkZeroAmounts(entry *domain.JournalEntry) []domain.DetectionResult {
	var findings []domain.DetectionResult
	for _, line := range entry.Lines {
		if line.DebitAmount.IsZero() && line.CreditAmount.IsZero() {
			findings = append(findings, s.newFinding(
				entry.EntryID, line.LineID,
				domain.ZeroAmount, domain.SeverityMedium,
				fmt.Sprintf("Line %d for account %s has zero amount", line.LineNumber, line.AccountID),
				"Enter the correct debit or credit amount, or remove this line",
			))
		}
	}
	return findings
}

// checkNegativeAmounts flags negative amounts. Quantization upstream should
// make these impossible, so any hit points at corrupted input.
func (s *detectionService) checkNegativeAmounts(entry *domain.JournalEntry) []domain.DetectionResult {
	var findings []domain.DetectionResult
	for _, line := range entry.Lines {
		if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			findings = append(findings, s.newFinding(
				entry.EntryID, line.LineID,
				domain.NegativeAmount, domain.SeverityHigh,
				fmt.Sprintf("Line %d has negative amount", line.LineNumber),
				"Use positive amount on the opposite side (debit vs credit)",
			))
		}
	}
	return findings
}

// checkMissingDescriptions flags inadequate entry descriptions, and for
// entries with more than two lines, inadequate line descriptions as well.
func (s *detectionService) checkMissingDescriptions(entry *domain.JournalEntry) []domain.DetectionResult {
	var findings []domain.DetectionResult

	if len(strings.TrimSpace(entry.Description)) < 5 {
		findings = append(findings, s.newFinding(
			entry.EntryID, "",
			domain.MissingDescription, domain.SeverityLow,
			"Entry description is missing or too short",
			"Add a meaningful description explaining the transaction",
		))
	}

	if len(entry.Lines) > 2 {
		for _, line := range entry.Lines {
			if len(strings.TrimSpace(line.Description)) < 3 {
				findings = append(findings, s.newFinding(
					entry.EntryID, line.LineID,
					domain.MissingDescription, domain.SeverityLow,
					fmt.Sprintf("Line %d is missing description", line.LineNumber),
					"Add description to clarify this line item",
				))
			}
		}
	}

	return findings
}

// findAccount looks up an account, mapping not-found to (nil, nil) so checks
// can treat a missing account as data rather than a failure.
func (s *detectionService) findAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up account %s: %w", accountID, err)
	}
	return account, nil
}

// checkInvalidAccounts flags lines referencing unknown or inactive accounts.
func (s *detectionService) checkInvalidAccounts(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	var findings []domain.DetectionResult
	for _, line := range entry.Lines {
		account, err := s.findAccount(ctx, line.AccountID)
		if err != nil {
			return nil, err
		}

		if account == nil {
			findings = append(findings, s.newFinding(
				entry.EntryID, line.LineID,
				domain.InvalidAccount, domain.SeverityHigh,
				fmt.Sprintf("Account ID %s does not exist", line.AccountID),
				"Select a valid account from the chart of accounts",
			))
		} else if !account.IsActive {
			findings = append(findings, s.newFinding(
				entry.EntryID, line.LineID,
				domain.InvalidAccount, domain.SeverityMedium,
				fmt.Sprintf("Account %s - %s is inactive", account.AccountCode, account.AccountName),
				"Use an active account or reactivate this account if appropriate",
			))
		}
	}
	return findings, nil
}

// checkInvalidDates flags future, stale, and weekend entry dates. The three
// sub-findings are independent and may co-occur.
func (s *detectionService) checkInvalidDates(entry *domain.JournalEntry) []domain.DetectionResult {
	var findings []domain.DetectionResult
	today := s.now()
	entryDate := entry.EntryDate

	if entryDate.After(today.AddDate(0, 0, 1)) {
		findings = append(findings, s.newFinding(
			entry.EntryID, "",
			domain.InvalidDate, domain.SeverityMedium,
			fmt.Sprintf("Entry date %s is in the future", entryDate.Format("2006-01-02")),
			"Verify the entry date is correct",
		))
	}

	if entryDate.Before(today.AddDate(0, 0, -730)) {
		findings = append(findings, s.newFinding(
			entry.EntryID, "",
			domain.InvalidDate, domain.SeverityLow,
			fmt.Sprintf("Entry date %s is more than 2 years old", entryDate.Format("2006-01-02")),
			"Verify this is not a data entry error",
		))
	}

	if wd := entryDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
		findings = append(findings, s.newFinding(
			entry.EntryID, "",
			domain.InvalidDate, domain.SeverityLow,
			fmt.Sprintf("Entry dated on weekend: %s", entryDate.Format("2006-01-02")),
			"Consider using the next business day",
		))
	}

	return findings
}

// checkAccountTypeConsistency flags unusual account type combinations that
// the entry description does not explain.
func (s *detectionService) checkAccountTypeConsistency(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	var accountTypes []domain.AccountType
	for _, line := range entry.Lines {
		account, err := s.findAccount(ctx, line.AccountID)
		if err != nil {
			return nil, err
		}
		if account != nil {
			accountTypes = append(accountTypes, account.AccountType)
		}
	}

	var findings []domain.DetectionResult
	for _, problem := range unusualTypeCombinations(accountTypes, entry.Description) {
		findings = append(findings, s.newFinding(
			entry.EntryID, "",
			domain.AccountTypeMismatch, domain.SeverityMedium,
			problem,
			"Review account selection to ensure proper categorization",
		))
	}
	return findings, nil
}

// unusualTypeCombinations evaluates the three independent combination rules
// against the per-line account types and the entry description.
func unusualTypeCombinations(accountTypes []domain.AccountType, description string) []string {
	var problems []string

	typeSet := make(map[domain.AccountType]struct{})
	for _, t := range accountTypes {
		typeSet[t] = struct{}{}
	}
	_, hasRevenue := typeSet[domain.Revenue]
	_, hasExpense := typeSet[domain.Expense]

	if len(typeSet) == 1 && hasExpense {
		if !descriptionContainsAny(description, "depreciation", "amortization", "write-off") {
			problems = append(problems, "Entry contains only expense accounts - may be missing asset/liability accounts")
		}
	}

	if hasRevenue && hasExpense {
		if !descriptionContainsAny(description, "closing", "year-end", "adjustment") {
			problems = append(problems, "Entry mixes revenue and expense accounts - verify this is intentional")
		}
	}

	assetCount := 0
	for _, t := range accountTypes {
		if t == domain.Asset {
			assetCount++
		}
	}
	if assetCount > 2 && !descriptionContainsAny(description, "transfer", "reclassification", "acquisition") {
		problems = append(problems, "Entry affects multiple asset accounts - ensure this reflects actual transaction")
	}

	return problems
}

func descriptionContainsAny(description string, words ...string) bool {
	lower := strings.ToLower(description)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// checkDuplicateEntries searches nearby entries for one with identical totals
// and substantially overlapping accounts. At most one duplicate is reported
// per invocation.
func (s *detectionService) checkDuplicateEntries(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	start := entry.EntryDate.AddDate(0, 0, -s.tuning.DuplicateWindowDays)
	end := entry.EntryDate.AddDate(0, 0, s.tuning.DuplicateWindowDays)

	candidates, err := s.journalRepo.FindEntriesByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to search for duplicate entries: %w", err)
	}

	entryAccounts := entry.AccountIDs()
	totalDebits := entry.TotalDebits()
	totalCredits := entry.TotalCredits()

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.EntryID == entry.EntryID {
			continue
		}
		if !candidate.TotalDebits().Equal(totalDebits) || !candidate.TotalCredits().Equal(totalCredits) {
			continue
		}

		// Overlap is measured against this entry's account set size.
		candidateAccounts := candidate.AccountIDs()
		overlap := 0
		for id := range entryAccounts {
			if _, ok := candidateAccounts[id]; ok {
				overlap++
			}
		}
		if float64(overlap) >= float64(len(entryAccounts))*0.5 {
			finding := s.newFinding(
				entry.EntryID, "",
				domain.DuplicateEntry, domain.SeverityHigh,
				fmt.Sprintf("Potential duplicate of entry %s dated %s",
					candidate.EntryNumber, candidate.EntryDate.Format("2006-01-02")),
				"Verify this is not a duplicate transaction",
			)
			return []domain.DetectionResult{finding}, nil
		}
	}

	return nil, nil
}

// checkUnusualAmounts flags line amounts far outside the historical baseline
// and amounts that look like they are missing a decimal point. Without a
// baseline the check degrades to no findings.
func (s *detectionService) checkUnusualAmounts(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	stats, err := s.statsSvc.HistoricalAmountStatistics(ctx, entry.EntryDate)
	if err != nil {
		return nil, err
	}
	if stats == nil || stats.StdDev == 0 {
		return nil, nil
	}

	threshold := stats.Mean + s.tuning.StdDevMultiplier*stats.StdDev

	var findings []domain.DetectionResult
	for _, line := range entry.Lines {
		lineAmount := line.Amount()
		amount := lineAmount.InexactFloat64()

		if amount > threshold {
			findings = append(findings, s.newFinding(
				entry.EntryID, line.LineID,
				domain.UnusualAmount, domain.SeverityMedium,
				fmt.Sprintf("Line %d amount $%s is unusually large (threshold: $%.2f)",
					line.LineNumber, lineAmount, threshold),
				"Verify amount is correct - may need additional approval for large amounts",
			))
		}

		if lineAmount.GreaterThanOrEqual(roundThousand) && lineAmount.Mod(roundHundred).IsZero() {
			if mightBeMissingDecimals(amount, stats.Mean) {
				findings = append(findings, s.newFinding(
					entry.EntryID, line.LineID,
					domain.UnusualAmount, domain.SeverityLow,
					fmt.Sprintf("Amount $%s might be missing decimal places", lineAmount),
					fmt.Sprintf("Verify if amount should be $%.2f", amount/100),
				))
			}
		}
	}

	return findings, nil
}

// mightBeMissingDecimals reports whether dividing the amount by 100 moves it
// toward the historical mean by at least half the original deviation.
func mightBeMissingDecimals(amount, mean float64) bool {
	originalDeviation := math.Abs(amount - mean)
	adjustedDeviation := math.Abs(amount/100 - mean)
	return adjustedDeviation < originalDeviation*0.5
}

// checkPostingPatterns flags round amounts that look like estimates and
// entries with an unusual number of lines.
func (s *detectionService) checkPostingPatterns(entry *domain.JournalEntry) []domain.DetectionResult {
	var findings []domain.DetectionResult

	for _, line := range entry.Lines {
		lineAmount := line.Amount()
		if lineAmount.GreaterThanOrEqual(roundThousand) && lineAmount.Mod(roundThousand).IsZero() {
			findings = append(findings, s.newFinding(
				entry.EntryID, line.LineID,
				domain.UnusualAmount, domain.SeverityLow,
				fmt.Sprintf("Round amount $%s might be an estimate", lineAmount),
				"Verify exact amount if this is not an estimate",
			))
		}
	}

	if len(entry.Lines) > 10 {
		findings = append(findings, s.newFinding(
			entry.EntryID, "",
			domain.UnusualAmount, domain.SeverityLow,
			fmt.Sprintf("Entry has %d lines - unusually complex", len(entry.Lines)),
			"Consider breaking into multiple entries or verify all lines are necessary",
		))
	}

	return findings
}

// checkBusinessRules runs the cash, revenue-recognition, and expense-matching
// sub-checks. They are independent of each other.
func (s *detectionService) checkBusinessRules(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	var findings []domain.DetectionResult

	cashFindings, err := s.checkCashAccountRules(ctx, entry)
	if err != nil {
		return nil, err
	}
	findings = append(findings, cashFindings...)

	revenueFindings, err := s.checkRevenueRecognitionRules(ctx, entry)
	if err != nil {
		return nil, err
	}
	findings = append(findings, revenueFindings...)

	expenseFindings, err := s.checkExpenseMatchingRules(ctx, entry)
	if err != nil {
		return nil, err
	}
	findings = append(findings, expenseFindings...)

	return findings, nil
}

func (s *detectionService) checkCashAccountRules(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	type cashLine struct {
		line    domain.JournalEntryLine
		account *domain.Account
	}
	var cashLines []cashLine

	for _, line := range entry.Lines {
		account, err := s.findAccount(ctx, line.AccountID)
		if err != nil {
			return nil, err
		}
		if account != nil && strings.Contains(strings.ToLower(account.AccountName), "cash") {
			cashLines = append(cashLines, cashLine{line: line, account: account})
		}
	}

	var findings []domain.DetectionResult

	if len(cashLines) > 1 {
		findings = append(findings, s.newFinding(
			entry.EntryID, "",
			domain.AccountTypeMismatch, domain.SeverityMedium,
			"Entry affects multiple cash accounts",
			"Verify this represents an actual cash transfer",
		))
	}

	for _, cl := range cashLines {
		lineAmount := cl.line.Amount()
		if lineAmount.GreaterThan(largeCashThreshold) && entry.Reference == "" {
			findings = append(findings, s.newFinding(
				entry.EntryID, cl.line.LineID,
				domain.MissingDescription, domain.SeverityMedium,
				fmt.Sprintf("Large cash transaction $%s without reference", lineAmount),
				"Add check number, wire transfer ID, or other reference",
			))
		}
	}

	return findings, nil
}

func (s *detectionService) checkRevenueRecognitionRules(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	hasRevenue := false
	nonRevenueTypes := make(map[domain.AccountType]struct{})

	for _, line := range entry.Lines {
		account, err := s.findAccount(ctx, line.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			continue
		}
		if account.AccountType == domain.Revenue {
			hasRevenue = true
		} else {
			nonRevenueTypes[account.AccountType] = struct{}{}
		}
	}

	if !hasRevenue {
		return nil, nil
	}

	_, hasAsset := nonRevenueTypes[domain.Asset]
	_, hasLiability := nonRevenueTypes[domain.Liability]
	if hasAsset || hasLiability {
		return nil, nil
	}

	return []domain.DetectionResult{s.newFinding(
		entry.EntryID, "",
		domain.AccountTypeMismatch, domain.SeverityMedium,
		"Revenue recognition without corresponding asset increase or liability decrease",
		"Ensure proper asset (cash/receivable) or liability reduction",
	)}, nil
}

func (s *detectionService) checkExpenseMatchingRules(ctx context.Context, entry *domain.JournalEntry) ([]domain.DetectionResult, error) {
	var findings []domain.DetectionResult

	for _, line := range entry.Lines {
		account, err := s.findAccount(ctx, line.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil || account.AccountType != domain.Expense {
			continue
		}

		lineAmount := line.Amount()
		if lineAmount.GreaterThan(capitalizationThreshold) &&
			descriptionContainsAny(account.AccountName, "equipment", "software", "improvement", "installation") {
			findings = append(findings, s.newFinding(
				entry.EntryID, line.LineID,
				domain.AccountTypeMismatch, domain.SeverityMedium,
				fmt.Sprintf("Large expense $%s for %s might need capitalization", lineAmount, account.AccountName),
				"Consider if this should be recorded as an asset and depreciated",
			))
		}
	}

	return findings, nil
}
