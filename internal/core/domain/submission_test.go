package domain_test

import (
	"testing"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestDeriveSubmissionStatus(t *testing.T) {
	issueID := "issue_123"

	tests := []struct {
		name         string
		publications []domain.Publication
		want         domain.SubmissionStatus
	}{
		{
			name:         "no publications",
			publications: nil,
			want:         domain.SubmissionQueued,
		},
		{
			name: "single queued publication",
			publications: []domain.Publication{
				{PublicationID: "pub_1", Status: domain.SubmissionQueued},
			},
			want: domain.SubmissionQueued,
		},
		{
			name: "scheduled publication wins over queued",
			publications: []domain.Publication{
				{PublicationID: "pub_1", Status: domain.SubmissionQueued},
				{PublicationID: "pub_2", Status: domain.SubmissionScheduled, IssueID: &issueID},
			},
			want: domain.SubmissionScheduled,
		},
		{
			name: "published publication wins over scheduled",
			publications: []domain.Publication{
				{PublicationID: "pub_1", Status: domain.SubmissionScheduled, IssueID: &issueID},
				{PublicationID: "pub_2", Status: domain.SubmissionPublished, IssueID: &issueID},
			},
			want: domain.SubmissionPublished,
		},
		{
			name: "published first in slice",
			publications: []domain.Publication{
				{PublicationID: "pub_1", Status: domain.SubmissionPublished, IssueID: &issueID},
				{PublicationID: "pub_2", Status: domain.SubmissionQueued},
			},
			want: domain.SubmissionPublished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.DeriveSubmissionStatus(tt.publications)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIssue_IsOpenToReaders(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name  string
		issue domain.Issue
		want  bool
	}{
		{
			name:  "open access issue",
			issue: domain.Issue{AccessStatus: domain.AccessOpen},
			want:  true,
		},
		{
			name:  "subscription issue without open access date",
			issue: domain.Issue{AccessStatus: domain.AccessSubscription},
			want:  false,
		},
		{
			name:  "subscription issue with future open access date",
			issue: domain.Issue{AccessStatus: domain.AccessSubscription, OpenAccessDate: &future},
			want:  false,
		},
		{
			name:  "subscription issue with past open access date",
			issue: domain.Issue{AccessStatus: domain.AccessSubscription, OpenAccessDate: &past},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.issue.IsOpenToReaders(now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIssue_Identification(t *testing.T) {
	tests := []struct {
		name  string
		issue domain.Issue
		want  string
	}{
		{
			name: "all parts shown",
			issue: domain.Issue{
				Volume: 12, Number: "3", Year: 2024, Title: "Special Issue",
				ShowVolume: true, ShowNumber: true, ShowYear: true, ShowTitle: true,
			},
			want: "Vol. 12 No. 3 (2024): Special Issue",
		},
		{
			name: "volume and year only",
			issue: domain.Issue{
				Volume: 7, Number: "1", Year: 2023,
				ShowVolume: true, ShowYear: true,
			},
			want: "Vol. 7 (2023)",
		},
		{
			name: "title only",
			issue: domain.Issue{
				Title: "Anniversary Collection", ShowTitle: true,
			},
			want: "Anniversary Collection",
		},
		{
			name:  "nothing shown",
			issue: domain.Issue{Volume: 1, Number: "1", Year: 2020},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.issue.Identification())
		})
	}
}

func TestOptional_Ptr(t *testing.T) {
	set := domain.NewOptional("value")
	assert.True(t, set.Set)
	assert.False(t, set.Null)
	if assert.NotNil(t, set.Ptr()) {
		assert.Equal(t, "value", *set.Ptr())
	}

	null := domain.NewNullOptional[string]()
	assert.True(t, null.Set)
	assert.True(t, null.Null)
	assert.Nil(t, null.Ptr())

	var absent domain.Optional[string]
	assert.False(t, absent.Set)

	s := "ptr"
	fromPtr := domain.NewOptionalFromPtr(&s)
	assert.True(t, fromPtr.Set)
	assert.Equal(t, "ptr", fromPtr.Value)
	assert.False(t, domain.NewOptionalFromPtr[string](nil).Set)
}
