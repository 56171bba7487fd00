package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"grantwise.io/copilot/internal/store"
)

func testContext() *ReplyContext {
	return &ReplyContext{
		ProposalTitle:    "Water Access Grant",
		Status:           store.ProposalStatusPlanning,
		Phase:            store.PhasePlanning,
		OrganizationName: "Clean Rivers Alliance",
	}
}

func TestSynthesizePlanningOutline(t *testing.T) {
	r := NewResponder()

	for _, input := range []string{"help me outline this", "What SECTIONS should I include?"} {
		reply := r.Synthesize(input, store.MessageTypePlanning, testContext())
		assert.Contains(t, reply, "Executive Summary", "input %q", input)
		assert.Contains(t, reply, "Water Access Grant", "input %q", input)
		assert.Contains(t, reply, "Clean Rivers Alliance", "input %q", input)
		assert.Contains(t, reply, "6. Expected Outcomes", "input %q", input)
	}
}

func TestSynthesizePlanningTimeline(t *testing.T) {
	r := NewResponder()

	ctx := testContext()
	reply := r.Synthesize("can we build a schedule?", store.MessageTypePlanning, ctx)
	assert.Contains(t, reply, "Phase 4: Review and Finalization")
	assert.NotContains(t, reply, "document(s) uploaded")

	ctx.DocumentCount = 3
	reply = r.Synthesize("what's the timeline", store.MessageTypePlanning, ctx)
	assert.Contains(t, reply, "I notice you have 3 document(s) uploaded.")
}

func TestSynthesizePlanningOutlineWinsOverTimeline(t *testing.T) {
	r := NewResponder()

	// Rules are ordered first-match: a message naming both sections and a
	// timeline gets the outline reply.
	reply := r.Synthesize("outline the timeline for me", store.MessageTypePlanning, testContext())
	assert.Contains(t, reply, "Executive Summary")
	assert.NotContains(t, reply, "Phase 1: Research and Analysis")
}

func TestSynthesizePlanningDefault(t *testing.T) {
	r := NewResponder()

	reply := r.Synthesize("hmm where do I even start", store.MessageTypePlanning, testContext())
	assert.Contains(t, reply, "plan your proposal \"Water Access Grant\"")
	assert.Contains(t, reply, "Identifying key stakeholders")
}

func TestSynthesizeFeedback(t *testing.T) {
	r := NewResponder()

	ctx := testContext()
	reply := r.Synthesize("please review", store.MessageTypeFeedback, ctx)
	assert.Contains(t, reply, "Thank you for your feedback on \"Water Access Grant\"")
	assert.NotContains(t, reply, "I've noted your input")
	assert.NotContains(t, reply, "drafting phase")

	ctx.Phase = store.PhaseDrafting
	ctx.RecentMemory = []store.MemoryEntry{{Content: "prefers shorter sections"}}
	reply = r.Synthesize("please review", store.MessageTypeFeedback, ctx)
	assert.Contains(t, reply, "I've noted your input")
	assert.Contains(t, reply, "Since you're in the drafting phase")
}

func TestSynthesizeChatHelp(t *testing.T) {
	r := NewResponder()

	ctx := testContext()
	reply := r.Synthesize("can you help me?", store.MessageTypeChat, ctx)
	assert.Contains(t, reply, "Water Access Grant")
	assert.Contains(t, reply, "**Planning**")
	assert.NotContains(t, reply, "document(s) that I can reference")

	ctx.DocumentCount = 2
	reply = r.Synthesize("assist me", store.MessageTypeChat, ctx)
	assert.Contains(t, reply, "You have 2 document(s) that I can reference for context.")
}

func TestSynthesizeChatDocuments(t *testing.T) {
	r := NewResponder()

	ctx := testContext()
	ctx.DocumentCount = 2
	reply := r.Synthesize("what about my documents", store.MessageTypeChat, ctx)
	assert.Contains(t, reply, "2 document")
	assert.Contains(t, reply, "During the planning phase")

	// Without documents the keyword falls through to the generic reply.
	ctx.DocumentCount = 0
	reply = r.Synthesize("what about my documents", store.MessageTypeChat, ctx)
	assert.Contains(t, reply, "I understand you're working on")
}

func TestSynthesizeChatDefaultPhaseSentence(t *testing.T) {
	r := NewResponder()

	ctx := testContext()
	reply := r.Synthesize("good morning", store.MessageTypeChat, ctx)
	assert.Contains(t, reply, "In the planning phase, I can help you structure and organize your ideas.")

	ctx.Phase = store.PhaseDrafting
	reply = r.Synthesize("good morning", store.MessageTypeChat, ctx)
	assert.Contains(t, reply, "In the drafting phase, I can help you develop and refine your content.")
}

func TestSynthesizeAlwaysNamesProposal(t *testing.T) {
	r := NewResponder()

	inputs := map[store.MessageType][]string{
		store.MessageTypePlanning: {"outline please", "schedule please", "anything"},
		store.MessageTypeFeedback: {"thoughts?"},
		store.MessageTypeChat:     {"help", "hello there"},
	}
	for messageType, texts := range inputs {
		for _, text := range texts {
			reply := r.Synthesize(text, messageType, testContext())
			assert.Contains(t, reply, "Water Access Grant", "type %s input %q", messageType, text)
		}
	}
}

func TestSynthesizeIgnoresHistoryContent(t *testing.T) {
	r := NewResponder()

	// The conversation tail rides along in the context but must not change
	// the output under the current ruleset.
	ctx := testContext()
	base := r.Synthesize("hello", store.MessageTypeChat, ctx)

	ctx.RecentMessages = []store.ChatMessage{
		{Role: store.RoleUser, Content: "help with documents and timeline"},
		{Role: store.RoleAssistant, Content: strings.Repeat("x", 500)},
	}
	withHistory := r.Synthesize("hello", store.MessageTypeChat, ctx)
	assert.Equal(t, base, withHistory)
}
