package intent

const systemPrompt = "You are a query analysis expert."

// analysisPrompt is formatted with the user query.
const analysisPrompt = `당신은 어린이집 검색 질문을 분석하는 전문가입니다.
사용자의 질문에서 아래 세 가지를 추출하세요.

1. intent: 질문의 검색 의도. 다음 중 하나입니다.
   - find_nearby: 지역 기반 검색 (예: "강남구", "집 근처")
   - filter_type: 유형으로 거르기 (예: "국공립", "가정", "민간")
   - filter_age: 연령으로 찾기 (예: "만0세", "영아")
   - filter_facility: 시설 조건 (예: "놀이터", "CCTV", "통학차량")
   - compare: 비교 요청
   - general_info: 개수, 평균 같은 일반 정보 문의

2. filters: 질문에 명시된 조건만 담은 객체. 사용할 수 있는 키는 다음과 같습니다.
   - district: 시군구 이름 (예: "강남구", "노원구")
   - type: 어린이집 유형 (예: "국공립", "가정", "직장", "민간")
   - age: 연령 (예: "만0세", "만3세", "영아", "유아")
   - special_service: 특수 보육 서비스 (예: "장애아통합", "야간연장")
   - has_playground: 놀이터 필요 여부 (true/false)
   - min_cctv: 최소 CCTV 대수 (정수)
   - has_vehicle: 통학차량 필요 여부 (true/false)

3. keywords: 검색에 도움이 되는 자유 키워드 목록

사용자 질문: %s

반드시 JSON 객체 하나로만 응답하세요. 예:
{"intent": "find_nearby", "filters": {"district": "강남구", "type": "국공립", "has_playground": true}, "keywords": ["놀이터", "국공립"]}`

const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 500
)
