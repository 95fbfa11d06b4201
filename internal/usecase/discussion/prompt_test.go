package discussion

import (
	"strings"
	"testing"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
)

func TestBuildDiscussionPrompt(t *testing.T) {
	roster := []*entities.Participant{
		{ID: "p1", Name: "Alice", PersonaDescription: "A pragmatic engineer.", Role: "engineering lead"},
		{ID: "p2", Name: "Bob", PersonaDescription: "A cautious lawyer.", Role: "counsel"},
	}

	prompt := BuildDiscussionPrompt(roster[0], "api versioning", roster)

	if !strings.Contains(prompt, "You are Alice.") {
		t.Error("prompt missing persona identity")
	}
	if !strings.Contains(prompt, "Bob (counsel)") {
		t.Error("prompt missing peer listing")
	}
	if strings.Contains(prompt, "Alice (engineering lead)") {
		t.Error("participant must not be listed as their own peer")
	}
	if !strings.Contains(prompt, ModeratorName) {
		t.Error("prompt missing moderator listing")
	}
	if !strings.Contains(prompt, `"api versioning"`) {
		t.Error("prompt missing topic")
	}
	if strings.Contains(prompt, "Relevant background information") {
		t.Error("knowledge section must be absent when participant has no knowledge")
	}
}

func TestBuildDiscussionPromptIncludesKnowledge(t *testing.T) {
	p := &entities.Participant{
		ID:   "p1",
		Name: "Alice",
		RelatedKnowledge: []entities.KnowledgeItem{
			{TextChunk: "v2 rollout slipped a quarter", SimilarityScore: 0.91},
		},
	}

	prompt := BuildDiscussionPrompt(p, "topic", []*entities.Participant{p})

	if !strings.Contains(prompt, "Relevant background information") {
		t.Error("knowledge section missing")
	}
	if !strings.Contains(prompt, "v2 rollout slipped a quarter") {
		t.Error("knowledge chunk missing")
	}
}

func TestBuildDiscussionPromptIsDeterministic(t *testing.T) {
	roster := []*entities.Participant{
		{ID: "p1", Name: "Alice", Role: "lead"},
		{ID: "p2", Name: "Bob", Role: "counsel"},
	}

	first := BuildDiscussionPrompt(roster[0], "topic", roster)
	second := BuildDiscussionPrompt(roster[0], "topic", roster)
	if first != second {
		t.Error("identical inputs must produce identical prompts")
	}
}

func TestBuildChatPrompt(t *testing.T) {
	p := &entities.Participant{ID: "p1", Name: "Ada", PersonaDescription: "A historian.", Role: "advisor"}

	prompt := BuildChatPrompt(p, "antique maps", "Sam")

	if !strings.Contains(prompt, "You are Ada.") {
		t.Error("prompt missing persona identity")
	}
	if !strings.Contains(prompt, "Sam") {
		t.Error("prompt missing user name")
	}
	if !strings.Contains(prompt, "Greet Sam by name the first time") {
		t.Error("prompt missing one-time greeting rule")
	}
	if strings.Contains(prompt, "Relevant background information") {
		t.Error("knowledge section must be absent when empty")
	}
}
