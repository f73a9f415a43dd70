package pgsql

import (
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	journalRepo := newPgxJournalRepository(dbPool)
	issueRepo := newPgxIssueRepository(dbPool)
	submissionRepo := newPgxSubmissionRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	notificationRepo := newPgxNotificationRepository(dbPool)
	subscriptionRepo := newPgxSubscriptionRepository(dbPool)
	statisticsRepo := newPgxStatisticsRepository(dbPool)
	jobRepo := newPgxJobRepository(dbPool)
	apiTokenRepo := newPgxAPITokenRepository(dbPool)

	return portsrepo.RepositoryProvider{
		JournalRepo:      journalRepo,
		IssueRepo:        issueRepo,
		SubmissionRepo:   submissionRepo,
		UserRepo:         userRepo,
		NotificationRepo: notificationRepo,
		SubscriptionRepo: subscriptionRepo,
		StatisticsRepo:   statisticsRepo,
		JobRepo:          jobRepo,
		APITokenRepo:     apiTokenRepo,
	}
}
