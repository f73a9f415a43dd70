package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	JournalRepo      JournalRepositoryFacade
	IssueRepo        IssueRepositoryWithTx
	SubmissionRepo   SubmissionRepositoryWithTx
	UserRepo         UserRepositoryFacade
	NotificationRepo NotificationRepositoryFacade
	SubscriptionRepo SubscriptionRepositoryFacade
	StatisticsRepo   StatisticsRepository
	JobRepo          JobRepository
	APITokenRepo     APITokenRepository
}
