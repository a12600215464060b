package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/pipeline"
	"github.com/carefinder/carefinder/internal/domain/search/request"
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
	if m.err != nil {
		return domain.CompletionResult{}, m.err
	}
	return domain.CompletionResult{Text: m.text}, nil
}

func assertEmpty(t *testing.T, a Analysis) {
	t.Helper()
	if a.Intent != pipeline.IntentUnknown {
		t.Errorf("intent = %q, want unknown", a.Intent)
	}
	if a.Filters.Len() != 0 {
		t.Errorf("expected empty filters, got %v", a.Filters.Raw())
	}
	if a.Keywords == nil || len(a.Keywords) != 0 {
		t.Errorf("expected empty non-nil keywords, got %#v", a.Keywords)
	}
}

// --- Tests ---

func TestExtract_EmptyQuerySkipsLLM(t *testing.T) {
	llm := &mockCompleter{}
	svc := New(llm)

	a, err := svc.Extract(context.Background(), "  \t ")
	if err != nil {
		t.Fatalf("blank query is not a failure, got %v", err)
	}
	if llm.calls != 0 {
		t.Errorf("expected no LLM call, got %d", llm.calls)
	}
	assertEmpty(t, a)
}

func TestExtract_Success(t *testing.T) {
	llm := &mockCompleter{text: `{"intent":"find_nearby","filters":{"district":"강남구","type":"국공립"},"keywords":["국공립","어린이집"]}`}
	svc := New(llm)

	a, err := svc.Extract(context.Background(), "강남구 국공립 어린이집")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Intent != pipeline.IntentFindNearby {
		t.Errorf("intent = %q", a.Intent)
	}
	if !a.Filters.Has(request.KeyDistrict) || !a.Filters.Has(request.KeyType) {
		t.Errorf("expected district and type filters, got %v", a.Filters.Raw())
	}
	if len(a.Keywords) != 2 {
		t.Errorf("keywords = %v", a.Keywords)
	}

	if !llm.last.JSON {
		t.Error("analysis must request JSON output")
	}
	if llm.last.Temperature != analysisTemperature {
		t.Errorf("temperature = %v", llm.last.Temperature)
	}
	if !strings.Contains(llm.last.Prompt, "강남구 국공립 어린이집") {
		t.Error("prompt must contain the query")
	}
}

func TestExtract_CodeFenceAndProse(t *testing.T) {
	llm := &mockCompleter{text: "분석 결과입니다.\n```json\n{\"intent\": \"filter_age\", \"filters\": {\"age\": \"영아\"}, \"keywords\": []}\n```\n"}
	svc := New(llm)

	a, err := svc.Extract(context.Background(), "영아반 있는 곳")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Intent != pipeline.IntentFilterAge {
		t.Errorf("intent = %q", a.Intent)
	}
	if a.Filters.Age != "영아" {
		t.Errorf("age = %q", a.Filters.Age)
	}
}

func TestExtract_SearchIntentAlias(t *testing.T) {
	llm := &mockCompleter{text: `{"search_intent":"compare","filters":{},"keywords":["비교"]}`}

	a, err := New(llm).Extract(context.Background(), "두 곳 비교")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Intent != pipeline.IntentCompare {
		t.Errorf("intent = %q", a.Intent)
	}
}

func TestExtract_UnrecognisedIntentKeptVerbatim(t *testing.T) {
	llm := &mockCompleter{text: `{"intent":"find_cheapest","filters":{},"keywords":[]}`}

	a, err := New(llm).Extract(context.Background(), "싼 곳")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Intent != "find_cheapest" {
		t.Errorf("intent = %q", a.Intent)
	}
	if a.Intent.IsKnown() {
		t.Error("find_cheapest must not be a known intent")
	}
}

func TestExtract_MissingIntentIsUnknown(t *testing.T) {
	llm := &mockCompleter{text: `{"filters":{"has_playground":true}}`}

	a, err := New(llm).Extract(context.Background(), "놀이터")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Intent != pipeline.IntentUnknown {
		t.Errorf("intent = %q", a.Intent)
	}
	if !a.Filters.HasPlayground {
		t.Error("expected has_playground")
	}
	if a.Keywords == nil {
		t.Error("keywords must be non-nil")
	}
}

func TestExtract_MalformedOutput(t *testing.T) {
	llm := &mockCompleter{text: "I cannot help with that."}

	a, err := New(llm).Extract(context.Background(), "강남구")
	if !errors.Is(err, domain.ErrMalformedLLMOutput) {
		t.Fatalf("expected ErrMalformedLLMOutput, got %v", err)
	}
	assertEmpty(t, a)
}

func TestExtract_BrokenJSON(t *testing.T) {
	llm := &mockCompleter{text: `{"intent": "find_nearby", "filters": {"district": }`}

	a, err := New(llm).Extract(context.Background(), "강남구")
	if !errors.Is(err, domain.ErrMalformedLLMOutput) {
		t.Fatalf("expected ErrMalformedLLMOutput, got %v", err)
	}
	assertEmpty(t, a)
}

func TestExtract_TransportFailure(t *testing.T) {
	llm := &mockCompleter{err: domain.ErrLLMProviderError}

	a, err := New(llm).Extract(context.Background(), "강남구")
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
	if llm.calls != 1 {
		t.Errorf("expected a single attempt, got %d", llm.calls)
	}
	assertEmpty(t, a)
}

func TestExtract_NonStringKeywordsDropped(t *testing.T) {
	llm := &mockCompleter{text: `{"intent":"general_info","keywords":["평균", 3, null, " ", {"x":1}]}`}

	a, err := New(llm).Extract(context.Background(), "평균 정원")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Keywords) != 2 || a.Keywords[0] != "평균" || a.Keywords[1] != "3" {
		t.Errorf("keywords = %#v", a.Keywords)
	}
}

func TestExtract_UnknownFilterKeysKept(t *testing.T) {
	llm := &mockCompleter{text: `{"intent":"find_nearby","filters":{"district":"노원구","near_subway":true}}`}

	a, err := New(llm).Extract(context.Background(), "노원구 역 근처")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Filters.Has("near_subway") {
		t.Error("unknown filter keys must be kept")
	}
}
