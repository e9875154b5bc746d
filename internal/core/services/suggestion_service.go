package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bookcheck-dev/bookcheck/internal/apperrors"
	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portsrepo "github.com/bookcheck-dev/bookcheck/internal/core/ports/repositories"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
	"github.com/bookcheck-dev/bookcheck/internal/utils/accounting"
)

// similarityThreshold is the minimum score for an account to be offered as
// an alternative.
const similarityThreshold = 0.3

// maxSimilarAccounts caps how many alternatives are suggested per line.
const maxSimilarAccounts = 3

// suggestionService turns findings into categorized remediation text.
type suggestionService struct {
	accountRepo portsrepo.AccountReader
}

// NewSuggestionService creates the correction suggestion engine.
func NewSuggestionService(accountRepo portsrepo.AccountReader) portssvc.SuggestionSvcFacade {
	return &suggestionService{accountRepo: accountRepo}
}

var _ portssvc.SuggestionSvcFacade = (*suggestionService)(nil)

// SuggestCorrections generates remediation suggestions for every finding,
// keyed by error type name. Findings of the same type accumulate into the
// same list. No finding ever maps to an empty list: types without a specific
// generator, and generators that come up empty, fall back to the finding's
// own suggested correction verbatim.
func (s *suggestionService) SuggestCorrections(ctx context.Context, entry *domain.JournalEntry, findings []domain.DetectionResult) (map[string][]string, error) {
	suggestions := make(map[string][]string)

	for i := range findings {
		finding := &findings[i]
		specific, err := s.generateSpecificSuggestions(ctx, entry, finding)
		if err != nil {
			return nil, err
		}
		if len(specific) == 0 {
			specific = []string{finding.SuggestedCorrection}
		}
		key := string(finding.ErrorType)
		suggestions[key] = append(suggestions[key], specific...)
	}

	return suggestions, nil
}

func (s *suggestionService) generateSpecificSuggestions(ctx context.Context, entry *domain.JournalEntry, finding *domain.DetectionResult) ([]string, error) {
	switch finding.ErrorType {
	case domain.UnbalancedEntry:
		return suggestBalanceCorrections(entry), nil
	case domain.AccountTypeMismatch:
		return s.suggestAccountCorrections(ctx, entry)
	case domain.DuplicateEntry:
		return suggestDuplicateCorrections(), nil
	case domain.UnusualAmount:
		return suggestAmountCorrections(entry, finding), nil
	default:
		return []string{finding.SuggestedCorrection}, nil
	}
}

// suggestBalanceCorrections names common balancing accounts for the side
// needed to close the gap.
func suggestBalanceCorrections(entry *domain.JournalEntry) []string {
	outOfBalance := entry.OutOfBalanceAmount()
	absAmount := outOfBalance.Abs()

	if outOfBalance.IsPositive() {
		return []string{
			fmt.Sprintf("Add credit to Cash account: $%s", absAmount),
			fmt.Sprintf("Add credit to Accounts Payable: $%s", absAmount),
			fmt.Sprintf("Add credit to Revenue account: $%s", absAmount),
			fmt.Sprintf("Reduce existing debit by: $%s", absAmount),
		}
	}
	return []string{
		fmt.Sprintf("Add debit to Cash account: $%s", absAmount),
		fmt.Sprintf("Add debit to Accounts Receivable: $%s", absAmount),
		fmt.Sprintf("Add debit to Expense account: $%s", absAmount),
		fmt.Sprintf("Reduce existing credit by: $%s", absAmount),
	}
}

// suggestAccountCorrections offers up to three similar accounts as
// alternatives for each line's account.
func (s *suggestionService) suggestAccountCorrections(ctx context.Context, entry *domain.JournalEntry) ([]string, error) {
	var suggestions []string

	for _, line := range entry.Lines {
		current, err := s.accountRepo.FindAccountByID(ctx, line.AccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to look up account %s for suggestions: %w", line.AccountID, err)
		}

		similar, err := s.findSimilarAccounts(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, alt := range similar {
			suggestions = append(suggestions, fmt.Sprintf(
				"Consider using %s - %s instead of %s",
				alt.AccountCode, alt.AccountName, current.AccountCode))
		}
	}

	return suggestions, nil
}

// findSimilarAccounts ranks same-type active accounts by similarity score and
// returns the top candidates above the threshold.
func (s *suggestionService) findSimilarAccounts(ctx context.Context, account *domain.Account) ([]domain.Account, error) {
	allAccounts, err := s.accountRepo.ListActiveAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for similarity ranking: %w", err)
	}

	type scored struct {
		account domain.Account
		score   float64
	}
	var candidates []scored

	for _, candidate := range allAccounts {
		if candidate.AccountID == account.AccountID {
			continue
		}
		if candidate.AccountType != account.AccountType {
			continue
		}
		score := accounting.SimilarityScore(*account, candidate)
		if score > similarityThreshold {
			candidates = append(candidates, scored{account: candidate, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxSimilarAccounts {
		candidates = candidates[:maxSimilarAccounts]
	}

	result := make([]domain.Account, len(candidates))
	for i, c := range candidates {
		result[i] = c.account
	}
	return result, nil
}

func suggestDuplicateCorrections() []string {
	return []string{
		"Review both entries to confirm they represent different transactions",
		"If duplicate, void one of the entries",
		"Add distinguishing information to descriptions",
		"Check source documents to verify separate transactions",
	}
}

// suggestAmountCorrections reinterprets a flagged line amount, including
// divide-by-100 and divide-by-10 readings.
func suggestAmountCorrections(entry *domain.JournalEntry, finding *domain.DetectionResult) []string {
	if finding.LineID == "" {
		return nil
	}

	for _, line := range entry.Lines {
		if line.LineID != finding.LineID {
			continue
		}
		amount := line.Amount()
		value := amount.InexactFloat64()
		return []string{
			fmt.Sprintf("Verify source document for $%s amount", amount),
			fmt.Sprintf("Check if amount should be $%.2f (missing decimals)", value/100),
			fmt.Sprintf("Consider if amount should be $%.2f (extra zero)", value/10),
			"Obtain additional approval for large amounts",
			"Break large amount into multiple, smaller entries if appropriate",
		}
	}
	return nil
}
