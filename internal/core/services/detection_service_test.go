package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bookcheck-dev/bookcheck/internal/apperrors"
	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
	"github.com/bookcheck-dev/bookcheck/internal/core/services"
)

// recentWeekday returns a date a few days back, shifted off weekends so the
// date checks stay quiet in scenarios that are not about dates.
func recentWeekday() time.Time {
	d := time.Now().UTC().AddDate(0, 0, -3)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mkLine(lineID, accountID, description string, debit, credit string) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:       lineID,
		AccountID:    accountID,
		Description:  description,
		DebitAmount:  amt(debit),
		CreditAmount: amt(credit),
	}
}

func mkAccount(id, code, name string, accType domain.AccountType, balance domain.NormalBalance, active bool) *domain.Account {
	return &domain.Account{
		AccountID:     id,
		AccountCode:   code,
		AccountName:   name,
		AccountType:   accType,
		NormalBalance: balance,
		IsActive:      active,
	}
}

func findingsOf(findings []domain.DetectionResult, errType domain.ErrorType, substr string) []domain.DetectionResult {
	var out []domain.DetectionResult
	for _, f := range findings {
		if f.ErrorType != errType {
			continue
		}
		if substr != "" && !strings.Contains(f.ErrorDescription, substr) {
			continue
		}
		out = append(out, f)
	}
	return out
}

type DetectionServiceTestSuite struct {
	suite.Suite
	accountRepo *MockAccountRepository
	journalRepo *MockJournalRepository
	findingRepo *MockFindingRepository
	statsSvc    *MockStatisticsService
	service     portssvc.DetectionSvcFacade

	accReceivable *domain.Account
	accSales      *domain.Account
	accPayable    *domain.Account
	accSupplies   *domain.Account
}

func (s *DetectionServiceTestSuite) SetupTest() {
	s.accountRepo = new(MockAccountRepository)
	s.journalRepo = new(MockJournalRepository)
	s.findingRepo = new(MockFindingRepository)
	s.statsSvc = new(MockStatisticsService)
	s.service = services.NewDetectionService(
		s.accountRepo, s.journalRepo, s.findingRepo, s.statsSvc,
		services.DefaultDetectionTuning(),
	)

	s.accReceivable = mkAccount("acc-recv", "1200", "Accounts Receivable", domain.Asset, domain.DebitBalance, true)
	s.accSales = mkAccount("acc-sales", "4000", "Sales Revenue", domain.Revenue, domain.CreditBalance, true)
	s.accPayable = mkAccount("acc-pay", "2000", "Notes Payable", domain.Liability, domain.CreditBalance, true)
	s.accSupplies = mkAccount("acc-supplies", "6100", "Office Supplies Expense", domain.Expense, domain.DebitBalance, true)
}

// stubQuietBackground makes the history-dependent checks come up empty and
// lets every finding be logged.
func (s *DetectionServiceTestSuite) stubQuietBackground() {
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{}, nil)
	s.statsSvc.On("HistoricalAmountStatistics", mock.Anything, mock.Anything).
		Return(nil, nil)
	s.findingRepo.On("LogError", mock.Anything, mock.Anything).
		Return("logged-finding-id", nil)
}

func (s *DetectionServiceTestSuite) stubAccount(account *domain.Account) {
	s.accountRepo.On("FindAccountByID", mock.Anything, account.AccountID).Return(account, nil)
}

func (s *DetectionServiceTestSuite) stubMissingAccount(accountID string) {
	s.accountRepo.On("FindAccountByID", mock.Anything, accountID).Return(nil, apperrors.ErrNotFound)
}

func (s *DetectionServiceTestSuite) newEntry(lines ...domain.JournalEntryLine) *domain.JournalEntry {
	entry := &domain.JournalEntry{
		EntryID:     "entry-1",
		EntryNumber: "JE-100",
		EntryDate:   recentWeekday(),
		Description: "Invoice customer ABC",
		Lines:       lines,
	}
	for i := range entry.Lines {
		entry.Lines[i].EntryID = entry.EntryID
		entry.Lines[i].LineNumber = i + 1
	}
	return entry
}

func (s *DetectionServiceTestSuite) detect(entry *domain.JournalEntry) []domain.DetectionResult {
	findings, err := s.service.DetectAllErrors(context.Background(), entry)
	s.Require().NoError(err)
	return findings
}

func (s *DetectionServiceTestSuite) TestCleanBalancedEntry_NoFindings() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "512.34", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "512.34"),
	)

	findings := s.detect(entry)
	s.Empty(findings)
	s.findingRepo.AssertNotCalled(s.T(), "LogError", mock.Anything, mock.Anything)
}

func (s *DetectionServiceTestSuite) TestUnbalancedEntry_SeverityBoundaries() {
	cases := []struct {
		debit    string
		credit   string
		severity domain.ErrorSeverity
	}{
		{"200.00", "100.00", domain.SeverityLow},       // off by 100.00, not above threshold
		{"200.01", "100.00", domain.SeverityMedium},    // off by 100.01
		{"1100.00", "100.00", domain.SeverityMedium},   // off by exactly 1000.00
		{"1100.01", "100.00", domain.SeverityHigh},     // off by 1000.01
		{"100.00", "1100.01", domain.SeverityHigh},     // excess credits
	}

	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	for _, tc := range cases {
		entry := s.newEntry(
			mkLine("l1", "acc-recv", "Invoice 1042", tc.debit, "0"),
			mkLine("l2", "acc-sales", "Invoice 1042", "0", tc.credit),
		)
		findings := findingsOf(s.detect(entry), domain.UnbalancedEntry, "out of balance")
		s.Require().Len(findings, 1, "debit %s credit %s", tc.debit, tc.credit)
		s.Equal(tc.severity, findings[0].ErrorSeverity, "debit %s credit %s", tc.debit, tc.credit)
		s.Empty(findings[0].LineID)
	}
}

func (s *DetectionServiceTestSuite) TestUnbalancedEntry_SuggestionDirection() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	excessDebits := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "350.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "100.00"),
	)
	findings := findingsOf(s.detect(excessDebits), domain.UnbalancedEntry, "")
	s.Require().Len(findings, 1)
	s.Contains(findings[0].SuggestedCorrection, "Add credit of $250")

	excessCredits := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "100.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "350.00"),
	)
	findings = findingsOf(s.detect(excessCredits), domain.UnbalancedEntry, "")
	s.Require().Len(findings, 1)
	s.Contains(findings[0].SuggestedCorrection, "Add debit of $250")
}

func (s *DetectionServiceTestSuite) TestZeroAmountLine() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "100.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "100.00"),
		mkLine("l3", "acc-recv", "Placeholder row", "0", "0"),
	)

	findings := findingsOf(s.detect(entry), domain.ZeroAmount, "zero amount")
	s.Require().Len(findings, 1)
	s.Equal(domain.SeverityMedium, findings[0].ErrorSeverity)
	s.Equal("l3", findings[0].LineID)
}

func (s *DetectionServiceTestSuite) TestNegativeAmountLine() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "-100.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "-100.00"),
	)

	findings := findingsOf(s.detect(entry), domain.NegativeAmount, "negative amount")
	s.Require().Len(findings, 2)
	for _, f := range findings {
		s.Equal(domain.SeverityHigh, f.ErrorSeverity)
	}
}

func (s *DetectionServiceTestSuite) TestMissingDescriptions() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	// Trimmed length 3 is below the minimum of 5.
	entry := s.newEntry(
		mkLine("l1", "acc-recv", "ok line", "100.00", "0"),
		mkLine("l2", "acc-sales", "ok line", "0", "100.00"),
	)
	entry.Description = " Adj  "

	findings := findingsOf(s.detect(entry), domain.MissingDescription, "")
	s.Require().Len(findings, 1)
	s.Equal(domain.SeverityLow, findings[0].ErrorSeverity)
	s.Empty(findings[0].LineID)
}

func (s *DetectionServiceTestSuite) TestMissingLineDescriptions_OnlyAboveTwoLines() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	// Two lines: blank line descriptions are tolerated.
	twoLines := s.newEntry(
		mkLine("l1", "acc-recv", "", "100.00", "0"),
		mkLine("l2", "acc-sales", "", "0", "100.00"),
	)
	s.Empty(findingsOf(s.detect(twoLines), domain.MissingDescription, "missing description"))

	// Three lines: every short line description is flagged.
	threeLines := s.newEntry(
		mkLine("l1", "acc-recv", "ab", "50.00", "0"),
		mkLine("l2", "acc-recv", "Invoice detail", "50.00", "0"),
		mkLine("l3", "acc-sales", "", "0", "100.00"),
	)
	findings := findingsOf(s.detect(threeLines), domain.MissingDescription, "missing description")
	s.Require().Len(findings, 2)
	s.Equal("l1", findings[0].LineID)
	s.Equal("l3", findings[1].LineID)
}

func (s *DetectionServiceTestSuite) TestInvalidAccounts() {
	s.stubQuietBackground()
	inactive := mkAccount("acc-old", "1900", "Legacy Clearing", domain.Asset, domain.DebitBalance, false)
	s.stubAccount(inactive)
	s.stubAccount(s.accSales)
	s.stubMissingAccount("acc-ghost")

	entry := s.newEntry(
		mkLine("l1", "acc-ghost", "Invoice 1042", "100.00", "0"),
		mkLine("l2", "acc-old", "Invoice 1042", "100.00", "0"),
		mkLine("l3", "acc-sales", "Invoice 1042", "0", "200.00"),
	)

	findings := findingsOf(s.detect(entry), domain.InvalidAccount, "")
	s.Require().Len(findings, 2)
	s.Equal(domain.SeverityHigh, findings[0].ErrorSeverity)
	s.Contains(findings[0].ErrorDescription, "does not exist")
	s.Equal(domain.SeverityMedium, findings[1].ErrorSeverity)
	s.Contains(findings[1].ErrorDescription, "is inactive")
}

func (s *DetectionServiceTestSuite) TestInvalidDates() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "100.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "100.00"),
	)

	entry.EntryDate = time.Now().UTC().AddDate(0, 0, 3)
	future := findingsOf(s.detect(entry), domain.InvalidDate, "in the future")
	s.Require().Len(future, 1)
	s.Equal(domain.SeverityMedium, future[0].ErrorSeverity)

	// Tomorrow is still within tolerance.
	entry.EntryDate = time.Now().UTC().AddDate(0, 0, 1)
	s.Empty(findingsOf(s.detect(entry), domain.InvalidDate, "in the future"))

	old := time.Now().UTC().AddDate(0, 0, -800)
	for old.Weekday() == time.Saturday || old.Weekday() == time.Sunday {
		old = old.AddDate(0, 0, -1)
	}
	entry.EntryDate = old
	stale := findingsOf(s.detect(entry), domain.InvalidDate, "more than 2 years old")
	s.Require().Len(stale, 1)
	s.Equal(domain.SeverityLow, stale[0].ErrorSeverity)

	weekend := time.Now().UTC().AddDate(0, 0, -2)
	for weekend.Weekday() != time.Saturday {
		weekend = weekend.AddDate(0, 0, -1)
	}
	entry.EntryDate = weekend
	weekendFindings := findingsOf(s.detect(entry), domain.InvalidDate, "weekend")
	s.Require().Len(weekendFindings, 1)
	s.Equal(domain.SeverityLow, weekendFindings[0].ErrorSeverity)
}

func (s *DetectionServiceTestSuite) TestAccountTypeConsistency_ExpenseOnly() {
	s.stubQuietBackground()
	rent := mkAccount("acc-rent", "6200", "Rent Expense", domain.Expense, domain.DebitBalance, true)
	s.stubAccount(s.accSupplies)
	s.stubAccount(rent)

	entry := s.newEntry(
		mkLine("l1", "acc-supplies", "Supplies restock", "100.00", "0"),
		mkLine("l2", "acc-rent", "Rent allocation", "0", "100.00"),
	)

	findings := findingsOf(s.detect(entry), domain.AccountTypeMismatch, "only expense accounts")
	s.Require().Len(findings, 1)
	s.Equal(domain.SeverityMedium, findings[0].ErrorSeverity)

	// A recognized keyword in the description suppresses the rule.
	entry.Description = "Monthly depreciation allocation"
	s.Empty(findingsOf(s.detect(entry), domain.AccountTypeMismatch, "only expense accounts"))
}

func (s *DetectionServiceTestSuite) TestAccountTypeConsistency_RevenueExpenseMix() {
	s.stubQuietBackground()
	s.stubAccount(s.accSupplies)
	s.stubAccount(s.accSales)

	entry := s.newEntry(
		mkLine("l1", "acc-supplies", "Supplies restock", "100.00", "0"),
		mkLine("l2", "acc-sales", "Revenue side", "0", "100.00"),
	)

	mix := findingsOf(s.detect(entry), domain.AccountTypeMismatch, "mixes revenue and expense")
	s.Require().Len(mix, 1)

	entry.Description = "Year-end closing entries"
	s.Empty(findingsOf(s.detect(entry), domain.AccountTypeMismatch, "mixes revenue and expense"))
}

func (s *DetectionServiceTestSuite) TestAccountTypeConsistency_MultipleAssets() {
	s.stubQuietBackground()
	checking := mkAccount("acc-check", "1000", "Operating Checking", domain.Asset, domain.DebitBalance, true)
	savings := mkAccount("acc-save", "1010", "Reserve Savings", domain.Asset, domain.DebitBalance, true)
	s.stubAccount(s.accReceivable)
	s.stubAccount(checking)
	s.stubAccount(savings)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Allocation one", "50.00", "0"),
		mkLine("l2", "acc-check", "Allocation two", "50.00", "0"),
		mkLine("l3", "acc-save", "Allocation three", "0", "100.00"),
	)

	multi := findingsOf(s.detect(entry), domain.AccountTypeMismatch, "multiple asset accounts")
	s.Require().Len(multi, 1)

	entry.Description = "Interbank transfer of reserves"
	s.Empty(findingsOf(s.detect(entry), domain.AccountTypeMismatch, "multiple asset accounts"))
}

func (s *DetectionServiceTestSuite) TestDuplicateDetection() {
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)
	s.statsSvc.On("HistoricalAmountStatistics", mock.Anything, mock.Anything).Return(nil, nil)
	s.findingRepo.On("LogError", mock.Anything, mock.Anything).Return("logged-finding-id", nil)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "250.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "250.00"),
	)

	mkCandidate := func(id, number string, debit, credit string) domain.JournalEntry {
		c := domain.JournalEntry{
			EntryID:     id,
			EntryNumber: number,
			EntryDate:   entry.EntryDate.AddDate(0, 0, -5),
		}
		c.Lines = []domain.JournalEntryLine{
			mkLine(id+"-l1", "acc-recv", "", debit, "0"),
			mkLine(id+"-l2", "acc-sales", "", "0", credit),
		}
		return c
	}

	// Two matching candidates, but at most one duplicate is reported.
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{
			mkCandidate("entry-7", "JE-090", "250.00", "250.00"),
			mkCandidate("entry-8", "JE-091", "250.00", "250.00"),
		}, nil).Once()

	findings := findingsOf(s.detect(entry), domain.DuplicateEntry, "Potential duplicate")
	s.Require().Len(findings, 1)
	s.Equal(domain.SeverityHigh, findings[0].ErrorSeverity)
	s.Contains(findings[0].ErrorDescription, "JE-090")

	// Different totals are never duplicates, regardless of account overlap.
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{
			mkCandidate("entry-9", "JE-092", "999.00", "999.00"),
		}, nil).Once()
	s.Empty(findingsOf(s.detect(entry), domain.DuplicateEntry, ""))

	// The entry under inspection never matches itself.
	self := mkCandidate("entry-1", "JE-100", "250.00", "250.00")
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{self}, nil).Once()
	s.Empty(findingsOf(s.detect(entry), domain.DuplicateEntry, ""))
}

func (s *DetectionServiceTestSuite) TestUnusualAmounts_ThresholdBoundary() {
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{}, nil)
	s.findingRepo.On("LogError", mock.Anything, mock.Anything).Return("logged-finding-id", nil)
	// threshold = 200 + 3*50 = 350
	s.statsSvc.On("HistoricalAmountStatistics", mock.Anything, mock.Anything).
		Return(&domain.AmountStatistics{Mean: 200, StdDev: 50, Median: 195, Count: 40}, nil)

	over := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "360.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "360.00"),
	)
	findings := findingsOf(s.detect(over), domain.UnusualAmount, "unusually large")
	s.Require().Len(findings, 2)
	s.Equal(domain.SeverityMedium, findings[0].ErrorSeverity)

	under := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "340.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "340.00"),
	)
	s.Empty(findingsOf(s.detect(under), domain.UnusualAmount, "unusually large"))
}

func (s *DetectionServiceTestSuite) TestUnusualAmounts_NoBaseline() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "987654.32", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "987654.32"),
	)

	s.Empty(findingsOf(s.detect(entry), domain.UnusualAmount, "unusually large"))
}

func (s *DetectionServiceTestSuite) TestUnusualAmounts_ZeroStdDev() {
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{}, nil)
	s.findingRepo.On("LogError", mock.Anything, mock.Anything).Return("logged-finding-id", nil)
	s.statsSvc.On("HistoricalAmountStatistics", mock.Anything, mock.Anything).
		Return(&domain.AmountStatistics{Mean: 200, StdDev: 0, Median: 200, Count: 15}, nil)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "987654.32", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "987654.32"),
	)
	s.Empty(findingsOf(s.detect(entry), domain.UnusualAmount, "unusually large"))
}

func (s *DetectionServiceTestSuite) TestMissingDecimalHeuristic() {
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{}, nil)
	s.findingRepo.On("LogError", mock.Anything, mock.Anything).Return("logged-finding-id", nil)
	s.statsSvc.On("HistoricalAmountStatistics", mock.Anything, mock.Anything).
		Return(&domain.AmountStatistics{Mean: 50, StdDev: 10, Median: 48, Count: 30}, nil)

	// 5000/100 = 50 lands exactly on the mean: clearly closer.
	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "5000.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "5000.00"),
	)
	decimalFindings := findingsOf(s.detect(entry), domain.UnusualAmount, "missing decimal places")
	s.Require().Len(decimalFindings, 2)
	s.Equal(domain.SeverityLow, decimalFindings[0].ErrorSeverity)
	s.Contains(decimalFindings[0].SuggestedCorrection, "$50.00")

	// 120.00 is round but under 1000, so the heuristic stays quiet.
	small := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "120.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "120.00"),
	)
	s.Empty(findingsOf(s.detect(small), domain.UnusualAmount, "missing decimal places"))
}

func (s *DetectionServiceTestSuite) TestPostingPatterns_RoundAmounts() {
	s.stubQuietBackground()
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "2000.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "2000.00"),
	)
	round := findingsOf(s.detect(entry), domain.UnusualAmount, "might be an estimate")
	s.Require().Len(round, 2)
	s.Equal(domain.SeverityLow, round[0].ErrorSeverity)

	// 2500 is a multiple of 100 but not of 1000.
	notRound := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "2500.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "2500.00"),
	)
	s.Empty(findingsOf(s.detect(notRound), domain.UnusualAmount, "might be an estimate"))
}

func (s *DetectionServiceTestSuite) TestPostingPatterns_TooManyLines() {
	s.stubQuietBackground()
	s.stubAccount(s.accSupplies)
	s.stubAccount(s.accPayable)

	lines := make([]domain.JournalEntryLine, 0, 12)
	for i := 0; i < 11; i++ {
		lines = append(lines, mkLine(fmt.Sprintf("l%d", i+1), "acc-supplies", "Cost allocation", "10.37", "0"))
	}
	lines = append(lines, mkLine("l12", "acc-pay", "Accrued total", "0", "114.07"))
	entry := s.newEntry(lines...)

	complexFindings := findingsOf(s.detect(entry), domain.UnusualAmount, "unusually complex")
	s.Require().Len(complexFindings, 1)
	s.Equal(domain.SeverityLow, complexFindings[0].ErrorSeverity)
	s.Contains(complexFindings[0].ErrorDescription, "12 lines")
}

func (s *DetectionServiceTestSuite) TestCashRules() {
	s.stubQuietBackground()
	petty := mkAccount("acc-petty", "1050", "Petty Cash", domain.Asset, domain.DebitBalance, true)
	operating := mkAccount("acc-cash", "1000", "Cash Operating", domain.Asset, domain.DebitBalance, true)
	s.stubAccount(petty)
	s.stubAccount(operating)

	entry := s.newEntry(
		mkLine("l1", "acc-petty", "Cash movement", "50.00", "0"),
		mkLine("l2", "acc-cash", "Cash movement", "0", "50.00"),
	)
	multi := findingsOf(s.detect(entry), domain.AccountTypeMismatch, "multiple cash accounts")
	s.Require().Len(multi, 1)
	s.Equal(domain.SeverityMedium, multi[0].ErrorSeverity)
}

func (s *DetectionServiceTestSuite) TestLargeCashWithoutReference() {
	s.stubQuietBackground()
	operating := mkAccount("acc-cash", "1000", "Cash Operating", domain.Asset, domain.DebitBalance, true)
	s.stubAccount(operating)
	s.stubAccount(s.accSales)

	entry := s.newEntry(
		mkLine("l1", "acc-cash", "Payment received", "10000.01", "0"),
		mkLine("l2", "acc-sales", "Payment received", "0", "10000.01"),
	)

	findings := findingsOf(s.detect(entry), domain.MissingDescription, "without reference")
	s.Require().Len(findings, 1)
	s.Equal(domain.SeverityMedium, findings[0].ErrorSeverity)
	s.Equal("l1", findings[0].LineID)

	// Supplying a reference satisfies the rule.
	entry.Reference = "WIRE-20240117-001"
	s.Empty(findingsOf(s.detect(entry), domain.MissingDescription, "without reference"))
}

func (s *DetectionServiceTestSuite) TestRevenueRecognitionRule() {
	s.stubQuietBackground()
	s.stubAccount(s.accSupplies)
	s.stubAccount(s.accSales)
	s.stubAccount(s.accReceivable)

	// Revenue against an expense only: no asset or liability movement.
	entry := s.newEntry(
		mkLine("l1", "acc-supplies", "Cost offset", "100.00", "0"),
		mkLine("l2", "acc-sales", "Revenue side", "0", "100.00"),
	)
	findings := findingsOf(s.detect(entry), domain.AccountTypeMismatch, "Revenue recognition without")
	s.Require().Len(findings, 1)
	s.Equal(domain.SeverityMedium, findings[0].ErrorSeverity)

	// Revenue against a receivable is the normal shape.
	normal := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "100.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "100.00"),
	)
	s.Empty(findingsOf(s.detect(normal), domain.AccountTypeMismatch, "Revenue recognition without"))
}

func (s *DetectionServiceTestSuite) TestExpenseCapitalizationRule() {
	s.stubQuietBackground()
	equipment := mkAccount("acc-equip", "6500", "Equipment Expense", domain.Expense, domain.DebitBalance, true)
	s.stubAccount(equipment)
	s.stubAccount(s.accPayable)

	entry := s.newEntry(
		mkLine("l1", "acc-equip", "Server purchase", "5000.01", "0"),
		mkLine("l2", "acc-pay", "Server purchase", "0", "5000.01"),
	)

	findings := findingsOf(s.detect(entry), domain.AccountTypeMismatch, "might need capitalization")
	s.Require().Len(findings, 1)
	s.Equal(domain.SeverityMedium, findings[0].ErrorSeverity)
	s.Equal("l1", findings[0].LineID)

	// At exactly the threshold the rule stays quiet.
	atThreshold := s.newEntry(
		mkLine("l1", "acc-equip", "Server purchase", "5000.00", "0"),
		mkLine("l2", "acc-pay", "Server purchase", "0", "5000.00"),
	)
	s.Empty(findingsOf(s.detect(atThreshold), domain.AccountTypeMismatch, "might need capitalization"))
}

func (s *DetectionServiceTestSuite) TestFindingsArePersisted() {
	s.stubAccount(s.accReceivable)
	s.stubAccount(s.accSales)
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{}, nil)
	s.statsSvc.On("HistoricalAmountStatistics", mock.Anything, mock.Anything).Return(nil, nil)
	s.findingRepo.On("LogError", mock.Anything, mock.Anything).Return("log-1", nil)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "350.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "100.00"),
	)

	findings := s.detect(entry)
	s.Require().Len(findings, 1)
	s.Equal("log-1", findings[0].ErrorID)
	s.findingRepo.AssertNumberOfCalls(s.T(), "LogError", 1)
}

func (s *DetectionServiceTestSuite) TestStructuralErrorAbortsRun() {
	s.accountRepo.On("FindAccountByID", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("connection reset"))
	s.journalRepo.On("FindEntriesByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.JournalEntry{}, nil)
	s.statsSvc.On("HistoricalAmountStatistics", mock.Anything, mock.Anything).Return(nil, nil)

	entry := s.newEntry(
		mkLine("l1", "acc-recv", "Invoice 1042", "100.00", "0"),
		mkLine("l2", "acc-sales", "Invoice 1042", "0", "100.00"),
	)

	_, err := s.service.DetectAllErrors(context.Background(), entry)
	s.Require().Error(err)
	s.findingRepo.AssertNotCalled(s.T(), "LogError", mock.Anything, mock.Anything)
}

func (s *DetectionServiceTestSuite) TestNilEntryRejected() {
	_, err := s.service.DetectAllErrors(context.Background(), nil)
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func TestDetectionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DetectionServiceTestSuite))
}
