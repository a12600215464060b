package intent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/pipeline"
	"github.com/carefinder/carefinder/internal/domain/search/request"
)

// llmAnalysis is the JSON shape the model is asked to produce.
// search_intent is accepted as an alias of intent.
type llmAnalysis struct {
	Intent       string         `json:"intent"`
	SearchIntent string         `json:"search_intent"`
	Filters      map[string]any `json:"filters"`
	Keywords     []any          `json:"keywords"`
}

// parseAnalysis extracts the first JSON object from a completion, tolerating
// markdown code fences and prose around it.
func parseAnalysis(text string) (Analysis, error) {
	raw, err := extractObject(text)
	if err != nil {
		return emptyAnalysis(), err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out llmAnalysis
	if err := dec.Decode(&out); err != nil {
		return emptyAnalysis(), fmt.Errorf("decode analysis: %v: %w", err, domain.ErrMalformedLLMOutput)
	}

	intent := strings.TrimSpace(out.Intent)
	if intent == "" {
		intent = strings.TrimSpace(out.SearchIntent)
	}
	if intent == "" {
		intent = string(pipeline.IntentUnknown)
	}

	return Analysis{
		Intent:   pipeline.Intent(intent),
		Filters:  request.ParseFilters(out.Filters),
		Keywords: keywordStrings(out.Keywords),
	}, nil
}

func extractObject(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```"); ok {
		// drop the optional language tag on the fence line
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in completion: %w", domain.ErrMalformedLLMOutput)
	}
	return []byte(text[start : end+1]), nil
}

func keywordStrings(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		var s string
		switch k := v.(type) {
		case string:
			s = k
		case json.Number:
			s = k.String()
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
