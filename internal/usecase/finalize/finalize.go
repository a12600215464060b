// Package finalize validates the composed answer and completes result metadata.
package finalize

import (
	"strings"
	"unicode/utf8"

	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/domain/pipeline"
)

// GenerationProblemMessage replaces an answer too short to be useful.
const GenerationProblemMessage = "죄송합니다. 답변 생성에 문제가 발생했습니다. 다시 시도해주세요."

const (
	// MinAnswerLength is the minimum answer length in characters.
	MinAnswerLength = 10
	// SummaryRecords caps the records in the result summary.
	SummaryRecords = 5
)

// Finalize returns the final answer and md with the result fields set.
// Fields owned by earlier stages are left untouched.
func Finalize(answer string, records []facility.Facility, md pipeline.Metadata) (string, pipeline.Metadata) {
	if strings.TrimSpace(answer) == "" || utf8.RuneCountInString(answer) < MinAnswerLength {
		answer = GenerationProblemMessage
	}

	md.TotalResults = len(records)
	md.AnswerLength = utf8.RuneCountInString(answer)
	md.HasResults = len(records) > 0
	md.ResultSummary = nil

	if n := min(len(records), SummaryRecords); n > 0 {
		md.ResultSummary = make([]facility.Summary, n)
		for i := range n {
			md.ResultSummary[i] = records[i].Summarize()
		}
	}

	return answer, md
}
