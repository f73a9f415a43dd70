package services

import (
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// Initialize the journal service first since most services authorize
	// against journal membership
	container.Journal = NewJournalService(repos.JournalRepo)

	container.Identifier = NewIdentifierService(repos.IssueRepo, repos.SubmissionRepo)
	container.Notification = NewNotificationService(repos.NotificationRepo, repos.JournalRepo, repos.UserRepo)

	// The issue service carries the lifecycle side effects: DOI assignment,
	// notification fan-out and hook dispatch
	container.Issue = NewIssueService(
		repos.IssueRepo,
		repos.JournalRepo,
		repos.SubmissionRepo,
		container.Journal,
		WithIdentifierService(container.Identifier),
		WithNotificationService(container.Notification),
		WithLifecycleHooks(NewLifecycleHooks()),
	)

	container.Submission = NewSubmissionService(repos.SubmissionRepo, repos.IssueRepo, container.Journal)
	container.User = NewUserService(repos.UserRepo)
	container.Subscription = NewSubscriptionService(repos.SubscriptionRepo, container.Journal)
	container.Statistics = NewStatisticsService(repos.StatisticsRepo, repos.JobRepo, container.Journal)

	// Initialize TokenService
	container.TokenService = NewTokenService(cfg, container.User)

	// Initialize GoogleOAuthHandlerSvcFacade
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	container.APIToken = NewAPITokenService(repos.APITokenRepo, container.User)

	return container
}
