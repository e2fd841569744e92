package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func runSession(t *testing.T, engine *RAG, input string) (*Session, string) {
	t.Helper()
	var out strings.Builder
	session := NewSession(engine, strings.NewReader(input), &out, zerolog.Nop())
	session.Run(context.Background())
	return session, out.String()
}

func TestSessionExitFirst(t *testing.T) {
	retriever := &fakeRetriever{sections: contextSections}
	generator := &fakeGenerator{reply: "unused"}
	engine := NewRAG(retriever, generator, true, zerolog.Nop())

	session, out := runSession(t, engine, "exit\n")
	if session.State() != Exited {
		t.Error("session should be Exited")
	}
	if retriever.calls != 0 {
		t.Errorf("retriever called %d times, want 0", retriever.calls)
	}
	if generator.calls != 0 {
		t.Errorf("generator called %d times, want 0", generator.calls)
	}
	if !strings.Contains(out, "Welcome to information retrieval LLM!") {
		t.Error("missing welcome banner")
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Error("missing farewell")
	}
}

func TestSessionExitIsCaseSensitive(t *testing.T) {
	retriever := &fakeRetriever{sections: contextSections}
	engine := NewRAG(retriever, &fakeGenerator{reply: "an answer"}, true, zerolog.Nop())

	// "EXIT" is a query, not the sentinel; the session then ends on EOF.
	session, _ := runSession(t, engine, "EXIT\n")
	if retriever.calls != 1 {
		t.Errorf("retriever called %d times, want 1", retriever.calls)
	}
	if session.State() != Exited {
		t.Error("session should be Exited on end of input")
	}
}

func TestSessionQueryTurn(t *testing.T) {
	retriever := &fakeRetriever{sections: contextSections}
	generator := &fakeGenerator{reply: "Beta is under B."}
	engine := NewRAG(retriever, generator, true, zerolog.Nop())

	session, out := runSession(t, engine, "what is beta?\nexit\n")
	if session.State() != Exited {
		t.Error("session should be Exited")
	}
	if retriever.calls != 1 || generator.calls != 1 {
		t.Errorf("retriever/generator calls = %d/%d, want 1/1", retriever.calls, generator.calls)
	}
	if !strings.Contains(out, "Question: what is beta?") {
		t.Error("missing echoed question")
	}
	if !strings.Contains(out, "Context:\n# A\nalpha\n\n\n## B\nbeta\n") {
		t.Error("missing concatenated context")
	}
	if !strings.Contains(out, "Elaborating your prompt...") {
		t.Error("missing progress line")
	}
	if !strings.Contains(out, "AI BOT reply:\n Beta is under B.") {
		t.Error("missing generated answer")
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Error("missing farewell after exit")
	}
}

func TestSessionRetrievalOnlyTurn(t *testing.T) {
	retriever := &fakeRetriever{sections: contextSections}
	generator := &fakeGenerator{reply: "unused"}
	engine := NewRAG(retriever, generator, false, zerolog.Nop())

	_, out := runSession(t, engine, "what is beta?\nexit\n")
	if generator.calls != 0 {
		t.Errorf("generator called %d times in retrieval-only mode", generator.calls)
	}
	if !strings.Contains(out, "Context:\n# A\nalpha\n") {
		t.Error("missing retrieved context")
	}
	if strings.Contains(out, "AI BOT reply:") {
		t.Error("retrieval-only session should not print a generated reply")
	}
}

func TestSessionContinuesAfterFailedTurn(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("embedding service down")}
	engine := NewRAG(retriever, &fakeGenerator{}, true, zerolog.Nop())

	session, out := runSession(t, engine, "first question\nexit\n")
	if !strings.Contains(out, "Could not answer that question") {
		t.Error("missing turn error report")
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Error("session should keep running after a failed turn")
	}
	if session.State() != Exited {
		t.Error("session should be Exited via the sentinel")
	}
	if retriever.calls != 1 {
		t.Errorf("retriever called %d times, want 1", retriever.calls)
	}
}

func TestSessionContinuesAfterGenerationFailure(t *testing.T) {
	retriever := &fakeRetriever{sections: contextSections}
	generator := &fakeGenerator{err: errors.New("llm down")}
	engine := NewRAG(retriever, generator, true, zerolog.Nop())

	_, out := runSession(t, engine, "q1\nq2\nexit\n")
	if generator.calls != 2 {
		t.Errorf("generator called %d times, want 2", generator.calls)
	}
	if strings.Count(out, "Could not answer that question") != 2 {
		t.Error("each failed turn should be reported")
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Error("session should survive generation failures until exit")
	}
}

func TestSessionEndsOnEOF(t *testing.T) {
	engine := NewRAG(&fakeRetriever{sections: contextSections}, &fakeGenerator{reply: "ok"}, true, zerolog.Nop())
	session, _ := runSession(t, engine, "only question\n")
	if session.State() != Exited {
		t.Error("session should exit when input ends")
	}
}
