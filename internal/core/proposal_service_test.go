package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grantwise.io/copilot/internal/store"
)

func strPtr(s string) *string { return &s }

func TestCreateProposalDefaults(t *testing.T) {
	env := newTestEnv(t)
	user, err := env.accounts.CreateUser("a@example.com", "A", "hash")
	require.NoError(t, err)
	org, err := env.accounts.CreateOrganization(user.ID, "Org", nil)
	require.NoError(t, err)

	proposal, err := env.proposals.CreateProposal(user.ID, org.ID, "Grant A", nil)
	require.NoError(t, err)
	assert.Equal(t, store.ProposalStatusPlanning, proposal.Status)
	assert.Equal(t, store.PhasePlanning, proposal.CurrentPhase)
	assert.Nil(t, proposal.Description)
}

func TestCreateProposalMissingParents(t *testing.T) {
	env := newTestEnv(t)
	user, err := env.accounts.CreateUser("a@example.com", "A", "hash")
	require.NoError(t, err)
	org, err := env.accounts.CreateOrganization(user.ID, "Org", nil)
	require.NoError(t, err)

	// Missing user fails before any write.
	_, err = env.proposals.CreateProposal(user.ID+1, org.ID, "Grant", nil)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Missing organization fails before any write.
	_, err = env.proposals.CreateProposal(user.ID, org.ID+1, "Grant", nil)
	assert.ErrorIs(t, err, store.ErrNotFound)

	proposals, err := env.proposals.GetProposalsByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, proposals)
}

func TestCreateSectionUnknownProposal(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.proposals.CreateSection(7, "Summary", nil, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateSectionDuplicateOrderIndex(t *testing.T) {
	env := newTestEnv(t)
	proposal := env.seedProposal(t, "Grant")

	_, err := env.proposals.CreateSection(proposal.ID, "One", nil, 1)
	require.NoError(t, err)
	// Duplicate order indexes are caller-owned and tolerated.
	_, err = env.proposals.CreateSection(proposal.ID, "Other One", nil, 1)
	require.NoError(t, err)

	sections, err := env.proposals.GetSections(proposal.ID)
	require.NoError(t, err)
	assert.Len(t, sections, 2)
}

func TestAssembleDocument(t *testing.T) {
	env := newTestEnv(t)
	proposal := env.seedProposal(t, "Water Access Grant")

	done := true
	sec1, err := env.proposals.CreateSection(proposal.ID, "Summary", strPtr("clean water for everyone"), 2)
	require.NoError(t, err)
	_, err = env.proposals.UpdateSection(sec1.ID, store.SectionUpdate{IsCompleted: &done})
	require.NoError(t, err)

	sec2, err := env.proposals.CreateSection(proposal.ID, "Intro", strPtr("  we    begin here "), 1)
	require.NoError(t, err)
	_, err = env.proposals.UpdateSection(sec2.ID, store.SectionUpdate{IsCompleted: &done})
	require.NoError(t, err)

	// Completed but empty content: included, contributes zero words.
	sec3, err := env.proposals.CreateSection(proposal.ID, "Placeholder", nil, 3)
	require.NoError(t, err)
	_, err = env.proposals.UpdateSection(sec3.ID, store.SectionUpdate{IsCompleted: &done})
	require.NoError(t, err)

	// Not completed: excluded entirely.
	_, err = env.proposals.CreateSection(proposal.ID, "Draft", strPtr("many words that do not count"), 0)
	require.NoError(t, err)

	doc, err := env.proposals.AssembleDocument(proposal.ID)
	require.NoError(t, err)

	assert.Equal(t, "Water Access Grant", doc.Title)
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "Intro", doc.Sections[0].Title)
	assert.Equal(t, "Summary", doc.Sections[1].Title)
	assert.Equal(t, "Placeholder", doc.Sections[2].Title)
	// 3 words from Intro + 4 from Summary + 0 from Placeholder.
	assert.Equal(t, 7, doc.WordCount)
	assert.False(t, doc.GeneratedAt.IsZero())
}

func TestAssembleDocumentUnknownProposal(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.proposals.AssembleDocument(31)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateProposalStatusAndPhaseIndependent(t *testing.T) {
	env := newTestEnv(t)
	proposal := env.seedProposal(t, "Grant")

	// Any status may follow any other; phase is untouched by a status write.
	for _, status := range []store.ProposalStatus{
		store.ProposalStatusArchived,
		store.ProposalStatusPlanning,
		store.ProposalStatusCompleted,
		store.ProposalStatusDrafting,
	} {
		status := status
		updated, err := env.proposals.UpdateProposal(proposal.ID, store.ProposalUpdate{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
		assert.Equal(t, store.PhasePlanning, updated.CurrentPhase)
	}
}
