package mongodb

import (
	"bytes"
	"testing"
	"time"
)

func TestDocumentKey(t *testing.T) {
	createdAt := time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)

	got := DocumentKey("user-1", createdAt)
	want := "user-1/2025/01/report_2025-01-20"
	if got != want {
		t.Errorf("DocumentKey() = %q, want %q", got, want)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte(`{"feedback":"이번 주는 전반적으로 긍정적인 한 주였습니다."}`), 20)

	compressed, err := compressDocument(original)
	if err != nil {
		t.Fatalf("compress error: %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("compressed size %d not smaller than original %d", len(compressed), len(original))
	}

	decompressed, err := decompressDocument(compressed)
	if err != nil {
		t.Fatalf("decompress error: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Error("round trip did not preserve content")
	}
}

func TestCompressEmpty(t *testing.T) {
	compressed, err := compressDocument(nil)
	if err != nil {
		t.Fatalf("compress error: %v", err)
	}
	if len(compressed) != 0 {
		t.Errorf("compressing empty input produced %d bytes", len(compressed))
	}
}
