package answer

import (
	"fmt"
	"strings"

	"github.com/carefinder/carefinder/internal/domain/facility"
)

// ApologyMessage is the answer when no facility matched.
const ApologyMessage = "죄송합니다. 검색 조건에 맞는 어린이집을 찾지 못했습니다. 다른 조건으로 검색해보시겠어요?"

const (
	systemPrompt = "You are a helpful daycare information consultant."

	// answerPrompt is formatted with the query and the formatted records.
	answerPrompt = `당신은 학부모에게 어린이집 정보를 친절하게 안내하는 상담사입니다.

사용자 질문: %s

검색된 어린이집:
%s

다음 순서로 답변하세요.
1. 검색 결과 요약: 찾은 어린이집 수와 공통된 특징을 한두 문장으로
2. 추천 어린이집 3곳: 이름과 유형, 위치, 정원과 현원, 추천 이유
3. 참고 사항 (있을 때만)

학부모가 이해하기 쉬운 자연스러운 한국어로 작성하세요.`

	answerTemperature = 0.7
	answerMaxTokens   = 1000

	// promptRecords caps the records shown to the model.
	promptRecords = 10
	// fallbackRecords caps the records listed in the fallback answer.
	fallbackRecords = 3
)

func formatRecords(records []facility.Facility) string {
	n := min(len(records), promptRecords)
	blocks := make([]string, 0, n)
	for i := range n {
		f := &records[i]
		var b strings.Builder
		fmt.Fprintf(&b, "어린이집 %d:\n", i+1)
		fmt.Fprintf(&b, "- 이름: %s\n", orNA(f.Name))
		fmt.Fprintf(&b, "- 유형: %s\n", orNA(f.TypeName))
		fmt.Fprintf(&b, "- 시군구: %s\n", orNA(f.District))
		fmt.Fprintf(&b, "- 주소: %s\n", orNA(f.Address))
		fmt.Fprintf(&b, "- 정원/현원: %d명 / %d명\n", f.Capacity, f.CurrentChildren)
		fmt.Fprintf(&b, "- 보육실: %d개\n", f.RoomCount)
		fmt.Fprintf(&b, "- 놀이터: %s\n", yesNo(f.HasPlayground()))
		fmt.Fprintf(&b, "- CCTV: %d대\n", f.CCTVCount)
		fmt.Fprintf(&b, "- 특수서비스: %s\n", f.SpecialServices)
		fmt.Fprintf(&b, "- 전화번호: %s", orNA(f.Phone))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// fallbackAnswer is the deterministic answer used when the model is unavailable.
func fallbackAnswer(records []facility.Facility) string {
	var b strings.Builder
	fmt.Fprintf(&b, "검색 결과 %d개의 어린이집을 찾았습니다.\n\n상위 %d개 추천:\n",
		len(records), min(len(records), fallbackRecords))
	for i := range min(len(records), fallbackRecords) {
		f := &records[i]
		fmt.Fprintf(&b, "\n%d. %s (%s)", i+1, f.Name, f.TypeName)
		fmt.Fprintf(&b, "\n   위치: %s - %s", f.District, f.Address)
		fmt.Fprintf(&b, "\n   정원/현원: %d명 / %d명\n", f.Capacity, f.CurrentChildren)
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func yesNo(ok bool) string {
	if ok {
		return "있음"
	}
	return "없음"
}
