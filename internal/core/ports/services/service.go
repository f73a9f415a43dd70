package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Journal            JournalSvcFacade
	Issue              IssueSvcFacade
	Submission         SubmissionSvcFacade
	User               UserSvcFacade
	Notification       NotificationSvcFacade
	Subscription       SubscriptionSvcFacade
	Statistics         StatisticsSvcFacade
	Identifier         IdentifierSvcFacade
	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
	APIToken           APITokenSvc
}
