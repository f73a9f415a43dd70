package services

import (
	"context"
	"log/slog"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// JournalAuthorizer is used for journal-scoped authorization checks
	JournalAuthorizer portssvc.JournalAuthorizerSvc
}

// GetLogger returns the logger from context or creates a new one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		logger = slog.Default()
	}
	return logger
}

// LogError logs an error with context
func (s *BaseService) LogError(ctx context.Context, err error, msg string, args ...any) {
	logger := s.GetLogger(ctx)
	logger.Error(msg, append([]any{slog.String("error", err.Error())}, args...)...)
}

// LogInfo logs an informational message with context
func (s *BaseService) LogInfo(ctx context.Context, msg string, args ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, args...)
}

// LogDebug logs a debug message with context
func (s *BaseService) LogDebug(ctx context.Context, msg string, args ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, args...)
}

// AuthorizeUser checks if a user has the required role in a journal
func (s *BaseService) AuthorizeUser(ctx context.Context, userID, journalID string, requiredRole domain.UserJournalRole) error {
	if s.JournalAuthorizer == nil {
		s.LogDebug(ctx, "No journal authorizer configured, skipping authorization check")
		return nil
	}

	return s.JournalAuthorizer.AuthorizeUserAction(ctx, userID, journalID, requiredRole)
}
