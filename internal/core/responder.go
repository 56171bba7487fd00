package core

import (
	"fmt"
	"strings"

	"grantwise.io/copilot/internal/store"
)

// Responder is the deterministic stand-in for a language model: an ordered
// list of (predicate, builder) rules per message type, evaluated first-match.
// It is pure — no store access, no side effects — so it can be unit-tested
// without persistence. Templates interpolate the proposal title and
// organization name verbatim.
type Responder struct {
	rules map[store.MessageType][]replyRule
}

type replyRule struct {
	match func(text string, ctx *ReplyContext) bool
	build func(ctx *ReplyContext) string
}

func NewResponder() *Responder {
	return &Responder{
		rules: map[store.MessageType][]replyRule{
			store.MessageTypePlanning: {
				{match: containsAny("section", "outline"), build: buildSectionOutline},
				{match: containsAny("timeline", "schedule"), build: buildTimeline},
				{match: matchAlways, build: buildPlanningMenu},
			},
			store.MessageTypeFeedback: {
				{match: matchAlways, build: buildFeedbackAck},
			},
			store.MessageTypeChat: {
				{match: containsAny("help", "assist"), build: buildCapabilityMenu},
				{match: mentionsDocuments, build: buildDocumentOffer},
				{match: matchAlways, build: buildContextualDefault},
			},
		},
	}
}

// Synthesize maps (message text, message type, context) to a reply. The recent
// messages in ctx are intentionally unused by the current ruleset; they stay in
// ReplyContext so future rules can consume history without a signature change.
func (r *Responder) Synthesize(userText string, messageType store.MessageType, ctx *ReplyContext) string {
	rules, ok := r.rules[messageType]
	if !ok {
		rules = r.rules[store.MessageTypeChat]
	}

	text := strings.ToLower(userText)
	for _, rule := range rules {
		if rule.match(text, ctx) {
			return rule.build(ctx)
		}
	}
	// Unreachable: every table ends with matchAlways.
	return buildContextualDefault(ctx)
}

func containsAny(keywords ...string) func(string, *ReplyContext) bool {
	return func(text string, _ *ReplyContext) bool {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}
}

func mentionsDocuments(text string, ctx *ReplyContext) bool {
	return strings.Contains(text, "document") && ctx.DocumentCount > 0
}

func matchAlways(string, *ReplyContext) bool { return true }

// Template builders. Wording follows the production ruleset; tests assert on
// substring containment of the interpolated values.

func buildSectionOutline(ctx *ReplyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your proposal %q, I recommend structuring it with these key sections:\n\n", ctx.ProposalTitle)
	b.WriteString("1. Executive Summary\n")
	b.WriteString("2. Problem Statement\n")
	b.WriteString("3. Proposed Solution\n")
	b.WriteString("4. Implementation Timeline\n")
	b.WriteString("5. Budget and Resources\n")
	b.WriteString("6. Expected Outcomes\n\n")
	if ctx.OrganizationName != "" {
		fmt.Fprintf(&b, "For %s, ", ctx.OrganizationName)
	}
	b.WriteString("I can help you develop content for each section. Which section would you like to start with?")
	return b.String()
}

func buildTimeline(ctx *ReplyContext) string {
	var b strings.Builder
	b.WriteString("For your proposal planning, I suggest breaking down the timeline into phases:\n\n")
	b.WriteString("Phase 1: Research and Analysis (2-3 weeks)\n")
	b.WriteString("Phase 2: Solution Development (3-4 weeks)\n")
	b.WriteString("Phase 3: Implementation Planning (1-2 weeks)\n")
	b.WriteString("Phase 4: Review and Finalization (1 week)\n\n")
	if ctx.DocumentCount > 0 {
		fmt.Fprintf(&b, "I notice you have %d document(s) uploaded. ", ctx.DocumentCount)
	}
	b.WriteString("Would you like me to help you create a detailed timeline for any specific phase?")
	return b.String()
}

func buildPlanningMenu(ctx *ReplyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I'm here to help you plan your proposal %q. ", ctx.ProposalTitle)
	if ctx.OrganizationName != "" {
		fmt.Fprintf(&b, "For %s, ", ctx.OrganizationName)
	}
	b.WriteString("I can assist with:\n\n")
	b.WriteString("- Creating section outlines\n")
	b.WriteString("- Developing timelines\n")
	b.WriteString("- Identifying key stakeholders\n")
	b.WriteString("- Structuring your arguments\n\n")
	b.WriteString("What aspect of planning would you like to focus on?")
	return b.String()
}

func buildFeedbackAck(ctx *ReplyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your feedback on %q. ", ctx.ProposalTitle)
	if len(ctx.RecentMemory) > 0 {
		b.WriteString("I've noted your input and ")
	}
	b.WriteString("I'll help you refine and improve the content.\n\n")
	if ctx.Phase == store.PhaseDrafting {
		b.WriteString("Since you're in the drafting phase, ")
	}
	b.WriteString("Would you like me to:\n")
	b.WriteString("- Review specific sections for clarity\n")
	b.WriteString("- Suggest improvements to your arguments\n")
	b.WriteString("- Help strengthen your proposal structure\n\n")
	b.WriteString("What specific area would you like feedback on?")
	return b.String()
}

func buildCapabilityMenu(ctx *ReplyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I'm here to help you with your proposal %q! ", ctx.ProposalTitle)
	if ctx.OrganizationName != "" {
		fmt.Fprintf(&b, "For %s, ", ctx.OrganizationName)
	}
	b.WriteString("I can assist you with:\n\n")
	b.WriteString("- **Planning**: Structure, timeline, and organization\n")
	b.WriteString("- **Drafting**: Content development and writing\n")
	b.WriteString("- **Review**: Feedback and improvements\n\n")
	if ctx.DocumentCount > 0 {
		fmt.Fprintf(&b, "You have %d document(s) that I can reference for context. ", ctx.DocumentCount)
	}
	b.WriteString("What would you like to work on today?")
	return b.String()
}

func buildDocumentOffer(ctx *ReplyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I see you have %d document(s) uploaded for this proposal. I can help you:\n\n", ctx.DocumentCount)
	b.WriteString("- Extract key information from your documents\n")
	b.WriteString("- Use document insights for proposal content\n")
	b.WriteString("- Reference supporting materials in your proposal\n\n")
	if ctx.Phase == store.PhasePlanning {
		b.WriteString("During the planning phase, ")
	}
	b.WriteString("would you like me to analyze your documents for relevant content?")
	return b.String()
}

func buildContextualDefault(ctx *ReplyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I understand you're working on %q", ctx.ProposalTitle)
	if ctx.OrganizationName != "" {
		fmt.Fprintf(&b, " for %s", ctx.OrganizationName)
	}
	b.WriteString(".\n\n")
	switch ctx.Phase {
	case store.PhasePlanning:
		b.WriteString("In the planning phase, I can help you structure and organize your ideas.\n\n")
	case store.PhaseDrafting:
		b.WriteString("In the drafting phase, I can help you develop and refine your content.\n\n")
	}
	b.WriteString("How can I assist you with your proposal today?")
	return b.String()
}
