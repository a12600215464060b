package facility

import "testing"

func TestEmbeddingText(t *testing.T) {
	f := Facility{
		Name:            "자이햇살어린이집",
		Address:         "서울특별시 성북구 돌곶이로30길 23",
		TypeName:        "가정",
		SpecialServices: "일반",
	}
	want := "자이햇살어린이집 서울특별시 성북구 돌곶이로30길 23 가정 일반"
	if got := f.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}

func TestEmbeddingText_SkipsEmptyParts(t *testing.T) {
	f := Facility{Name: "햇살", TypeName: "  ", SpecialServices: "야간연장"}
	if got := f.EmbeddingText(); got != "햇살 야간연장" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestEmbeddingText_Empty(t *testing.T) {
	var f Facility
	if got := f.EmbeddingText(); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestPredicates(t *testing.T) {
	v := "운영"
	f := Facility{StatusName: "정상", PlaygroundCount: 1, Vehicle: &v}
	if !f.IsActive() || !f.HasPlayground() || !f.HasVehicle() {
		t.Errorf("expected active facility with playground and vehicle: %+v", f)
	}

	closed := Facility{StatusName: "폐지"}
	if closed.IsActive() || closed.HasPlayground() || closed.HasVehicle() {
		t.Errorf("unexpected predicates for %+v", closed)
	}
}

func TestAgeBand(t *testing.T) {
	if Age3.ClassField() != "class_count_3" {
		t.Errorf("unexpected class field %q", Age3.ClassField())
	}
	if Age0.Token() != "만0세" {
		t.Errorf("unexpected token %q", Age0.Token())
	}

	c := AgeCounts{Age2: 4, Age5: 1}
	if c.Band(Age2) != 4 || c.Band(Age5) != 1 || c.Band(AgeBand(9)) != 0 {
		t.Errorf("unexpected band counts: %+v", c)
	}
}

func TestSummarize(t *testing.T) {
	f := Facility{ID: "11110000001", Name: "A", TypeName: "국공립", District: "강남구", Capacity: 40, CurrentChildren: 35, Phone: "02-000-0000"}
	s := f.Summarize()
	if s.ID != f.ID || s.Name != "A" || s.Capacity != 40 || s.Phone != f.Phone {
		t.Errorf("unexpected summary %+v", s)
	}
}
