package request

import (
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	r := New("  강남구 어린이집 ", Filters{}, nil, 0)
	if r.Query() != "강남구 어린이집" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Limit() != DefaultTopK {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultTopK)
	}
	if len(r.Keywords()) != 0 {
		t.Errorf("Keywords() = %v", r.Keywords())
	}
}

func TestNew_LimitClamping(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"negative", -1, DefaultTopK},
		{"zero", 0, DefaultTopK},
		{"normal", 25, 25},
		{"over max", 1000, MaxTopK},
		{"exactly max", MaxTopK, MaxTopK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("q", Filters{}, nil, tt.limit)
			if r.Limit() != tt.wantLimit {
				t.Errorf("Limit() = %d, want %d", r.Limit(), tt.wantLimit)
			}
		})
	}
}

func TestNew_DropsBlankKeywords(t *testing.T) {
	r := New("q", Filters{}, []string{"놀이터", " ", "", "CCTV "}, 10)
	got := strings.Join(r.Keywords(), ",")
	if got != "놀이터,CCTV" {
		t.Errorf("Keywords() = %q", got)
	}
}

func TestNew_KeywordCap(t *testing.T) {
	kw := make([]string, MaxKeywords+5)
	for i := range kw {
		kw[i] = "k"
	}
	r := New("q", Filters{}, kw, 10)
	if len(r.Keywords()) != MaxKeywords {
		t.Errorf("Keywords() len = %d, want %d", len(r.Keywords()), MaxKeywords)
	}
}

func TestSearchText(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		keywords []string
		want     string
	}{
		{"query only", "강남구 어린이집", nil, "강남구 어린이집"},
		{"with keywords", "강남구 어린이집", []string{"강남구", "국공립"}, "강남구 어린이집 강남구 국공립"},
		{"keywords only", "", []string{"놀이터"}, "놀이터"},
		{"empty", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.query, Filters{}, tt.keywords, 10)
			if got := r.SearchText(); got != tt.want {
				t.Errorf("SearchText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery(""); err == nil || !strings.Contains(err.Error(), "required") {
		t.Errorf("empty query error = %v", err)
	}
	if err := ValidateQuery("   "); err == nil {
		t.Error("expected error for whitespace query")
	}
	if err := ValidateQuery(strings.Repeat("x", MaxQueryLength+1)); err == nil || !strings.Contains(err.Error(), "too long") {
		t.Errorf("long query error = %v", err)
	}
	if err := ValidateQuery(strings.Repeat("x", MaxQueryLength)); err != nil {
		t.Errorf("unexpected error at max length: %v", err)
	}
}
