package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/carefinder/carefinder/internal/db/sqlite"
	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
	dompipe "github.com/carefinder/carefinder/internal/domain/pipeline"
	"github.com/carefinder/carefinder/internal/domain/search/mode"
	"github.com/carefinder/carefinder/internal/domain/search/request"
	"github.com/carefinder/carefinder/internal/domain/search/result"
	"github.com/carefinder/carefinder/internal/logger"
	"github.com/carefinder/carefinder/internal/usecase/answer"
	"github.com/carefinder/carefinder/internal/usecase/finalize"
	"github.com/carefinder/carefinder/internal/usecase/intent"
	"github.com/carefinder/carefinder/internal/usecase/retrieval"
)

// --- Mocks ---

type mockAnalyzer struct {
	analysis intent.Analysis
	err      error
}

func (m *mockAnalyzer) Extract(_ context.Context, _ string) (intent.Analysis, error) {
	return m.analysis, m.err
}

type mockRetriever struct {
	res  result.Result
	last request.Request
}

func (m *mockRetriever) Retrieve(_ context.Context, req request.Request) result.Result {
	m.last = req
	if m.res.FiltersApplied.Len() == 0 {
		m.res.FiltersApplied = req.Filters()
	}
	return m.res
}

type mockComposer struct {
	answer  string
	err     error
	records []facility.Facility
}

func (m *mockComposer) Compose(_ context.Context, _ string, records []facility.Facility) (string, error) {
	m.records = records
	return m.answer, m.err
}

// scriptedLLM answers by request purpose.
type scriptedLLM struct {
	byPurpose map[string]string
	errs      map[string]error
}

func (s *scriptedLLM) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	if err := s.errs[req.Purpose]; err != nil {
		return domain.CompletionResult{}, err
	}
	return domain.CompletionResult{Text: s.byPurpose[req.Purpose]}, nil
}

func records(ids ...string) []facility.Facility {
	out := make([]facility.Facility, len(ids))
	for i, id := range ids {
		out[i] = facility.Facility{ID: id, Name: id + " 어린이집", District: "강남구", StatusName: domain.ActiveStatus}
	}
	return out
}

// --- Tests ---

func TestRun_HappyPath(t *testing.T) {
	an := &mockAnalyzer{analysis: intent.Analysis{
		Intent:   dompipe.IntentFilterType,
		Filters:  request.ParseFilters(map[string]any{"district": "강남구", "type": "국공립"}),
		Keywords: []string{"국공립"},
	}}
	rt := &mockRetriever{res: result.Result{Records: records("A1", "A2"), Candidates: 20, Mode: mode.Hybrid}}
	cp := &mockComposer{answer: "강남구의 국공립 어린이집 두 곳을 찾았습니다."}

	st := New(an, rt, cp, 5).Run(context.Background(), "강남구 국공립 어린이집", request.Filters{})

	assert.Equal(t, dompipe.IntentFilterType, st.Intent)
	assert.Equal(t, "강남구", st.Filters.District)
	assert.Equal(t, []string{"국공립"}, st.Keywords)
	assert.Len(t, st.Records, 2)
	assert.Equal(t, cp.answer, st.Answer)

	assert.Equal(t, 5, rt.last.Limit())
	assert.Equal(t, "강남구 국공립 어린이집", rt.last.Query())
	assert.Len(t, cp.records, 2)

	md := st.Metadata
	assert.Empty(t, md.Errors())
	assert.Equal(t, 2, md.TotalResults)
	assert.True(t, md.HasResults)
	assert.Equal(t, 20, md.VectorCandidates)
	assert.Equal(t, mode.Hybrid, md.RetrievalMode)
	require.NotNil(t, md.FiltersApplied)
	assert.Equal(t, "국공립", md.FiltersApplied.Type)
	require.Len(t, md.ResultSummary, 2)
	assert.Equal(t, "A1", md.ResultSummary[0].ID)
}

func TestRun_CallerFiltersOverrideExtracted(t *testing.T) {
	an := &mockAnalyzer{analysis: intent.Analysis{
		Intent:  dompipe.IntentFindNearby,
		Filters: request.ParseFilters(map[string]any{"district": "강남구", "age": "만3세"}),
	}}
	rt := &mockRetriever{}
	cp := &mockComposer{answer: answer.ApologyMessage}

	st := New(an, rt, cp, 0).Run(context.Background(), "q", request.ParseFilters(map[string]any{"district": "서초구"}))

	assert.Equal(t, "서초구", st.Filters.District)
	assert.Equal(t, "만3세", st.Filters.Age)
	assert.Equal(t, "서초구", rt.last.Filters().District)
	assert.Equal(t, request.DefaultTopK, rt.last.Limit())
}

func TestRun_StageErrorsAreRecorded(t *testing.T) {
	an := &mockAnalyzer{analysis: intent.Analysis{}, err: errors.New("llm down")}
	rt := &mockRetriever{res: result.Failed(request.Filters{}, mode.Relational, errors.New("db locked"))}
	cp := &mockComposer{answer: answer.ApologyMessage, err: errors.New("gen failed")}

	st := New(an, rt, cp, 10).Run(context.Background(), "아무거나", request.Filters{})

	errs := st.Metadata.Errors()
	assert.Equal(t, "llm down", errs["analyzer_error"])
	assert.Equal(t, "db locked", errs["retriever_error"])
	assert.Equal(t, "gen failed", errs["generator_error"])

	assert.Equal(t, dompipe.IntentUnknown, st.Intent)
	assert.NotNil(t, st.Keywords)
	assert.NotNil(t, st.Records)
	assert.Empty(t, st.Records)
	assert.Equal(t, answer.ApologyMessage, st.Answer)
	assert.False(t, st.Metadata.HasResults)
}

func TestRun_ShortAnswerIsReplaced(t *testing.T) {
	an := &mockAnalyzer{analysis: intent.Analysis{Intent: dompipe.IntentGeneralInfo}}
	rt := &mockRetriever{res: result.Result{Records: records("A1")}}
	cp := &mockComposer{answer: "네"}

	st := New(an, rt, cp, 10).Run(context.Background(), "q", request.Filters{})

	assert.Equal(t, finalize.GenerationProblemMessage, st.Answer)
	assert.Equal(t, len([]rune(finalize.GenerationProblemMessage)), st.Metadata.AnswerLength)
}

func TestRun_RetrieverNilRecordsBecomeEmpty(t *testing.T) {
	an := &mockAnalyzer{analysis: intent.Analysis{Intent: dompipe.IntentUnknown}}
	rt := &mockRetriever{res: result.Result{Records: nil}}
	cp := &mockComposer{answer: answer.ApologyMessage}

	st := New(an, rt, cp, 10).Run(context.Background(), "q", request.Filters{})

	require.NotNil(t, st.Records)
	assert.Empty(t, st.Records)
	assert.Equal(t, 0, st.Metadata.TotalResults)
	assert.Nil(t, st.Metadata.ResultSummary)
}

func TestRun_BlankQueryIsNotAStageError(t *testing.T) {
	llm := &scriptedLLM{errs: map[string]error{"intent": errors.New("must not be called")}}
	rt := &mockRetriever{}
	cp := &mockComposer{answer: answer.ApologyMessage}

	st := New(intent.New(llm), rt, cp, 10).Run(context.Background(), "   ", request.Filters{})

	assert.Empty(t, st.Metadata.Errors())
	assert.Equal(t, dompipe.IntentUnknown, st.Intent)
	assert.Equal(t, answer.ApologyMessage, st.Answer)
}

func TestRun_StageLogsCarryStageName(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	an := &mockAnalyzer{err: errors.New("llm down")}
	rt := &mockRetriever{}
	cp := &mockComposer{answer: answer.ApologyMessage}

	New(an, rt, cp, 10).Run(ctx, "q", request.Filters{})

	warns := logs.FilterMessage("Query analysis failed").All()
	require.Len(t, warns, 1)
	assert.Equal(t, dompipe.StageAnalyze, warns[0].ContextMap()["stage"])
}

// --- End to end on SQLite ---

func strPtr(s string) *string { return &s }

func newFacilityStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), sqlite.Config{Path: filepath.Join(t.TempDir(), "facilities.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.UpsertFacilities(context.Background(), []facility.Facility{
		{ID: "G1", Name: "강남 햇살어린이집", TypeName: "국공립", StatusName: "정상", District: "강남구",
			Capacity: 40, CurrentChildren: 31, CCTVCount: 6, Vehicle: strPtr("운영"),
			Classes: facility.AgeCounts{Age3: 1}},
		{ID: "G2", Name: "강남 달빛어린이집", TypeName: "민간", StatusName: "정상", District: "강남구"},
		{ID: "G3", Name: "강남 폐원어린이집", TypeName: "국공립", StatusName: "폐지", District: "강남구"},
		{ID: "S1", Name: "서초 별빛어린이집", TypeName: "국공립", StatusName: "정상", District: "서초구",
			PlaygroundCount: 1},
	})
	require.NoError(t, err)
	return s
}

func newEndToEnd(t *testing.T, llm *scriptedLLM) *Orchestrator {
	t.Helper()
	store := newFacilityStore(t)
	return New(
		intent.New(llm),
		retrieval.New(store, nil, nil, retrieval.Config{}),
		answer.New(llm),
		10,
	)
}

func TestRun_EndToEnd_DistrictAndType(t *testing.T) {
	llm := &scriptedLLM{byPurpose: map[string]string{
		"intent": "```json\n{\"intent\": \"filter_type\", \"filters\": {\"district\": \"강남구\", \"type\": \"국공립\"}, \"keywords\": [\"국공립\"]}\n```",
		"answer": "강남구에는 국공립 어린이집인 강남 햇살어린이집이 있습니다.",
	}}

	st := newEndToEnd(t, llm).Run(context.Background(), "강남구 국공립 어린이집", request.Filters{})

	assert.Empty(t, st.Metadata.Errors())
	assert.Equal(t, dompipe.IntentFilterType, st.Intent)
	require.Len(t, st.Records, 1)
	assert.Equal(t, "G1", st.Records[0].ID)
	assert.Equal(t, mode.Relational, st.Metadata.RetrievalMode)
	assert.Equal(t, 0, st.Metadata.VectorCandidates)
	assert.True(t, strings.Contains(st.Answer, "햇살"))
	assert.True(t, st.Metadata.HasResults)
}

func TestRun_EndToEnd_NoPlaygroundMatches(t *testing.T) {
	llm := &scriptedLLM{byPurpose: map[string]string{
		"intent": `{"intent": "filter_facility", "filters": {"district": "강남구", "has_playground": true}, "keywords": []}`,
		"answer": "이 응답은 사용되지 않아야 합니다.",
	}}

	st := newEndToEnd(t, llm).Run(context.Background(), "놀이터 있는 강남구 어린이집", request.Filters{})

	assert.Empty(t, st.Metadata.Errors())
	assert.Empty(t, st.Records)
	assert.Equal(t, answer.ApologyMessage, st.Answer)
	assert.False(t, st.Metadata.HasResults)
	assert.Equal(t, 0, st.Metadata.TotalResults)
}

func TestRun_EndToEnd_LLMUnavailable(t *testing.T) {
	llm := &scriptedLLM{errs: map[string]error{
		"intent": domain.ErrLLMProviderError,
		"answer": domain.ErrLLMProviderError,
	}}

	st := newEndToEnd(t, llm).Run(context.Background(), "어린이집 알려줘", request.ParseFilters(map[string]any{"district": "서초구"}))

	errs := st.Metadata.Errors()
	assert.Contains(t, errs, "analyzer_error")
	assert.Contains(t, errs, "generator_error")
	assert.NotContains(t, errs, "retriever_error")

	require.Len(t, st.Records, 1)
	assert.Equal(t, "S1", st.Records[0].ID)
	assert.Contains(t, st.Answer, "서초 별빛어린이집")
}
