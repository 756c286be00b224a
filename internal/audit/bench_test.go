package audit

import (
	"path/filepath"
	"testing"
)

func BenchmarkAppend_Single(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.jsonl")
	l, err := Open(path)
	if err != nil {
		b.Fatal(err)
	}

	payload := map[string]string{"review_id": "review_1_abcdef12", "decision": "approved"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Append(EventReviewDecision, payload)
	}
}

func BenchmarkVerify_1000(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.jsonl")
	l, err := Open(path)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		l.Append(EventClassification, map[string]int{"seq": i})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if r := Verify(path); !r.Valid {
			b.Fatal(r.Error)
		}
	}
}
