package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *SQLiteStore) *User {
	t.Helper()
	user, err := s.CreateUser("test@example.com", "Test User", "hash")
	require.NoError(t, err)
	return user
}

func createTestOrg(t *testing.T, s *SQLiteStore, userID int64) *Organization {
	t.Helper()
	desc := "A test organization"
	org, err := s.CreateOrganization(userID, "Test Org", &desc)
	require.NoError(t, err)
	return org
}

func createTestProposal(t *testing.T, s *SQLiteStore, userID, orgID int64) *Proposal {
	t.Helper()
	proposal, err := s.CreateProposal(userID, orgID, "Test Proposal", nil)
	require.NoError(t, err)
	return proposal
}

func strPtr(s string) *string { return &s }

func TestCreateProposalDefaults(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)

	proposal, err := s.CreateProposal(user.ID, org.ID, "Grant A", nil)
	require.NoError(t, err)

	assert.Equal(t, ProposalStatusPlanning, proposal.Status)
	assert.Equal(t, PhasePlanning, proposal.CurrentPhase)
	assert.Nil(t, proposal.Description)
	assert.Equal(t, "Grant A", proposal.Title)
}

func TestGetProposalByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProposalByID(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProposalPartial(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	// Only status supplied; every other field must survive untouched.
	status := ProposalStatusDrafting
	updated, err := s.UpdateProposal(proposal.ID, ProposalUpdate{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, ProposalStatusDrafting, updated.Status)
	assert.Equal(t, proposal.Title, updated.Title)
	assert.Equal(t, proposal.Description, updated.Description)
	assert.Equal(t, proposal.CurrentPhase, updated.CurrentPhase)

	// Status and phase move independently.
	phase := PhaseDrafting
	updated, err = s.UpdateProposal(proposal.ID, ProposalUpdate{CurrentPhase: &phase})
	require.NoError(t, err)
	assert.Equal(t, ProposalStatusDrafting, updated.Status)
	assert.Equal(t, PhaseDrafting, updated.CurrentPhase)
}

func TestUpdateProposalNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateProposal(42, ProposalUpdate{Title: strPtr("nope")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSectionOnlyBumpsTimestamp(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	section, err := s.CreateSection(proposal.ID, "Budget", strPtr("initial text"), 3)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	// Empty update: nothing but updated_at may change.
	updated, err := s.UpdateSection(section.ID, SectionUpdate{})
	require.NoError(t, err)

	assert.Equal(t, section.Title, updated.Title)
	assert.Equal(t, *section.Content, *updated.Content)
	assert.Equal(t, section.OrderIndex, updated.OrderIndex)
	assert.Equal(t, section.IsCompleted, updated.IsCompleted)
	assert.True(t, updated.UpdatedAt.After(section.UpdatedAt))
}

func TestUpdateSectionPartial(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	section, err := s.CreateSection(proposal.ID, "Summary", nil, 0)
	require.NoError(t, err)
	assert.False(t, section.IsCompleted)

	done := true
	updated, err := s.UpdateSection(section.ID, SectionUpdate{
		Content:     strPtr("final words"),
		IsCompleted: &done,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "final words", *updated.Content)
	assert.Equal(t, "Summary", updated.Title)
	assert.Equal(t, 0, updated.OrderIndex)
}

func TestSectionsOrderedByOrderIndex(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	_, err := s.CreateSection(proposal.ID, "Third", nil, 2)
	require.NoError(t, err)
	_, err = s.CreateSection(proposal.ID, "First", nil, 0)
	require.NoError(t, err)
	_, err = s.CreateSection(proposal.ID, "Second", nil, 1)
	require.NoError(t, err)

	sections, err := s.GetSectionsByProposalID(proposal.ID)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "First", sections[0].Title)
	assert.Equal(t, "Second", sections[1].Title)
	assert.Equal(t, "Third", sections[2].Title)
}

func TestCompletedSectionsFilter(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	done, err := s.CreateSection(proposal.ID, "Done", strPtr("ready"), 1)
	require.NoError(t, err)
	_, err = s.CreateSection(proposal.ID, "Draft", strPtr("not yet"), 0)
	require.NoError(t, err)

	completed := true
	_, err = s.UpdateSection(done.ID, SectionUpdate{IsCompleted: &completed})
	require.NoError(t, err)

	sections, err := s.GetCompletedSectionsByProposalID(proposal.ID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Done", sections[0].Title)
}

func TestMessagesChronologicalAndTail(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	contents := []string{"one", "two", "three", "four", "five", "six"}
	for _, c := range contents {
		msg := &ChatMessage{ProposalID: proposal.ID, Role: RoleUser, Content: c, MessageType: MessageTypeChat}
		require.NoError(t, s.CreateChatMessage(msg))
		assert.NotEmpty(t, msg.ID)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := s.GetMessagesByProposalID(proposal.ID)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "one", all[0].Content)
	assert.Equal(t, "six", all[5].Content)

	tail, err := s.GetLastNMessagesByProposalID(proposal.ID, 5)
	require.NoError(t, err)
	require.Len(t, tail, 5)
	assert.Equal(t, "six", tail[0].Content) // newest first
	assert.Equal(t, "two", tail[4].Content) // "one" fell out of the window
}

func TestDeleteChatMessage(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	msg := &ChatMessage{ProposalID: proposal.ID, Role: RoleUser, Content: "ephemeral", MessageType: MessageTypeChat}
	require.NoError(t, s.CreateChatMessage(msg))
	require.NoError(t, s.DeleteChatMessage(msg.ID))

	all, err := s.GetMessagesByProposalID(proposal.ID)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, s.DeleteChatMessage(msg.ID), ErrNotFound)
}

func TestMemoryNewestFirst(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	first := &MemoryEntry{ProposalID: proposal.ID, MemoryType: MemoryPlanningNotes, Content: "older"}
	require.NoError(t, s.CreateMemoryEntry(first))
	time.Sleep(2 * time.Millisecond)
	second := &MemoryEntry{ProposalID: proposal.ID, MemoryType: MemoryUserFeedback, Content: "newer", Source: strPtr("chat")}
	require.NoError(t, s.CreateMemoryEntry(second))

	entries, err := s.GetMemoryByProposalID(proposal.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].Content)
	assert.Equal(t, "older", entries[1].Content)
	assert.Equal(t, "chat", *entries[0].Source)
	assert.Nil(t, entries[1].Source)
}

func TestDocumentCountIgnoresStatus(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)

	doc, err := s.CreateDocument(org.ID, "a.pdf", "/uploads/org_1/a.pdf", FileTypePDF, 100)
	require.NoError(t, err)
	assert.Equal(t, UploadStatusPending, doc.UploadStatus)

	_, err = s.CreateDocument(org.ID, "b.docx", "/uploads/org_1/b.docx", FileTypeDOCX, 200)
	require.NoError(t, err)

	// External ingestion may flip a status at any time; counts are unaffected.
	require.NoError(t, s.UpdateDocumentStatus(doc.ID, UploadStatusFailed))

	count, err := s.CountDocumentsByOrganizationID(org.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProposalOverviewJoin(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s)
	org := createTestOrg(t, s, user.ID)
	proposal := createTestProposal(t, s, user.ID, org.ID)

	ov, err := s.GetProposalOverview(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Proposal", ov.ProposalTitle)
	assert.Equal(t, "Test Org", ov.OrganizationName)
	assert.Equal(t, org.ID, ov.OrganizationID)
	require.NotNil(t, ov.OrganizationDescription)
	assert.Equal(t, "A test organization", *ov.OrganizationDescription)

	_, err = s.GetProposalOverview(proposal.ID + 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
