package listing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/trace"
)

type stubLLMClient struct {
	response *openai.ChatCompletion
	err      error
	params   openai.ChatCompletionNewParams
	calls    int
}

func (s *stubLLMClient) CreateChatCompletion(_ context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.calls++
	s.params = params
	return s.response, s.err
}

func reply(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

var data = ProductData{AvgPrice: 24.5, SoldCount: 120, Competition: "Medium"}

func newGen(llm LLMClient) *Generator {
	return NewGenerator(trace.NewNoopTracerProvider().Tracer("test"), llm, "gpt-4o-mini")
}

func TestGenerateWithoutClientUsesTemplate(t *testing.T) {
	g := newGen(nil)
	if g.AIEnabled() {
		t.Fatal("generator without client should not report AI enabled")
	}
	l := g.Generate(context.Background(), "magnetic eyelashes", data)
	if l.Source != SourceTemplate {
		t.Fatalf("expected template, got %s", l.Source)
	}
	if !strings.HasPrefix(l.Title, "Magnetic Eyelashes") {
		t.Fatalf("unexpected title: %s", l.Title)
	}
	if len(l.Keywords) != 10 || l.Keywords[4] != "buy magnetic eyelashes" {
		t.Fatalf("unexpected keywords: %v", l.Keywords)
	}
	if !strings.Contains(l.Description, "120+ satisfied customers") {
		t.Fatalf("description should mention sold count: %s", l.Description)
	}
}

func TestGenerateParsesLLMReply(t *testing.T) {
	llm := &stubLLMClient{response: reply("```json\n{\"title\":\"Lashes\",\"description\":\"Great lashes\",\"keywords\":[\"lash\"]}\n```")}
	l := newGen(llm).Generate(context.Background(), "magnetic eyelashes", data)

	if l.Source != SourceAI || l.Title != "Lashes" || l.Description != "Great lashes" {
		t.Fatalf("unexpected listing: %+v", l)
	}
	if llm.params.Model != "gpt-4o-mini" || len(llm.params.Messages) != 1 {
		t.Fatalf("unexpected params: %+v", llm.params)
	}
}

func TestGenerateFallsBackOnError(t *testing.T) {
	llm := &stubLLMClient{err: errors.New("api down")}
	l := newGen(llm).Generate(context.Background(), "slime kit diy", data)
	if l.Source != SourceTemplate || llm.calls != 1 {
		t.Fatalf("expected template fallback after one call, got %+v", l)
	}
}

func TestGenerateFallsBackOnBadJSON(t *testing.T) {
	l := newGen(&stubLLMClient{response: reply("not json")}).Generate(context.Background(), "slime kit diy", data)
	if l.Source != SourceTemplate {
		t.Fatalf("expected template fallback, got %+v", l)
	}
	l = newGen(&stubLLMClient{response: &openai.ChatCompletion{}}).Generate(context.Background(), "slime kit diy", data)
	if l.Source != SourceTemplate {
		t.Fatalf("expected template fallback on empty choices, got %+v", l)
	}
}

func TestTitleIsTruncated(t *testing.T) {
	long := strings.Repeat("very long keyword ", 10)
	l := Template(long, data)
	if utf8.RuneCountInString(l.Title) > 80 {
		t.Fatalf("title exceeds 80 runes: %d", utf8.RuneCountInString(l.Title))
	}
}
