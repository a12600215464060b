package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
)

// --- Mocks ---

type mockCompleter struct {
	text  string
	err   error
	calls int
	last  domain.CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	m.calls++
	m.last = req
	return domain.CompletionResult{Text: m.text}, m.err
}

func sampleRecords(n int) []facility.Facility {
	out := make([]facility.Facility, n)
	for i := range out {
		out[i] = facility.Facility{
			ID:              fmt.Sprintf("ID%02d", i+1),
			Name:            fmt.Sprintf("햇살어린이집%d", i+1),
			TypeName:        "국공립",
			District:        "강남구",
			Address:         "서울특별시 강남구 테헤란로",
			Capacity:        40,
			CurrentChildren: 35,
			PlaygroundCount: i % 2,
			Phone:           "02-000-0000",
		}
	}
	return out
}

// --- Tests ---

func TestCompose_NoRecordsIsApology(t *testing.T) {
	llm := &mockCompleter{}

	got, err := New(llm).Compose(context.Background(), "강남구", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ApologyMessage {
		t.Errorf("answer = %q", got)
	}
	if llm.calls != 0 {
		t.Errorf("expected no LLM call, got %d", llm.calls)
	}
}

func TestCompose_Success(t *testing.T) {
	llm := &mockCompleter{text: "강남구에서 국공립 어린이집 3곳을 찾았습니다."}

	got, err := New(llm).Compose(context.Background(), "강남구 국공립", sampleRecords(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != llm.text {
		t.Errorf("answer = %q", got)
	}
	if llm.last.Temperature != answerTemperature || llm.last.MaxTokens != answerMaxTokens {
		t.Errorf("unexpected sampling params: %+v", llm.last)
	}
	if llm.last.JSON {
		t.Error("answers are plain text")
	}
	if !strings.Contains(llm.last.Prompt, "햇살어린이집1") || !strings.Contains(llm.last.Prompt, "강남구 국공립") {
		t.Error("prompt must contain the query and the records")
	}
}

func TestCompose_PromptCapsAtTenRecords(t *testing.T) {
	llm := &mockCompleter{text: "ok ok ok ok ok"}

	if _, err := New(llm).Compose(context.Background(), "q", sampleRecords(12)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(llm.last.Prompt, "어린이집 10:") {
		t.Error("expected the tenth record in the prompt")
	}
	if strings.Contains(llm.last.Prompt, "어린이집 11:") {
		t.Error("prompt must not contain more than ten records")
	}
}

func TestCompose_FallbackOnError(t *testing.T) {
	llm := &mockCompleter{err: domain.ErrLLMProviderError}

	got, err := New(llm).Compose(context.Background(), "q", sampleRecords(5))
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
	if !strings.Contains(got, "검색 결과 5개") {
		t.Errorf("fallback must state the result count: %q", got)
	}
	for i := 1; i <= 3; i++ {
		if !strings.Contains(got, fmt.Sprintf("햇살어린이집%d", i)) {
			t.Errorf("fallback must list record %d", i)
		}
	}
	if strings.Contains(got, "햇살어린이집4") {
		t.Error("fallback lists only the top 3")
	}
}

func TestCompose_FallbackOnEmptyCompletion(t *testing.T) {
	llm := &mockCompleter{text: "  \n"}

	got, err := New(llm).Compose(context.Background(), "q", sampleRecords(1))
	if err == nil {
		t.Fatal("expected an error for an empty completion")
	}
	if !strings.Contains(got, "햇살어린이집1") {
		t.Errorf("expected fallback answer, got %q", got)
	}
}

func TestFormatRecords_PlaygroundAndNA(t *testing.T) {
	recs := []facility.Facility{{Name: "a", PlaygroundCount: 2}, {Name: "b"}}
	out := formatRecords(recs)

	if !strings.Contains(out, "- 놀이터: 있음") || !strings.Contains(out, "- 놀이터: 없음") {
		t.Errorf("unexpected playground rendering:\n%s", out)
	}
	if !strings.Contains(out, "- 전화번호: N/A") {
		t.Errorf("missing phone must render as N/A:\n%s", out)
	}
}
