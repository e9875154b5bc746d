package services

// ServiceContainer holds instances of all the application services. Handlers
// receive this rather than individual constructor arguments.
type ServiceContainer struct {
	Account    AccountSvcFacade
	Journal    JournalSvcFacade
	Statistics StatisticsSvcFacade
	Detection  DetectionSvcFacade
	Suggestion SuggestionSvcFacade
	Finding    FindingSvcFacade
}
