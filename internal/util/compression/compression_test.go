package compression

import (
	"bytes"
	"testing"
)

func TestCompressors(t *testing.T) {
	input := bytes.Repeat([]byte("# A post\n\nSome markdown body. "), 50)

	for _, name := range []string{"zstd", "gzip", "none"} {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			if err != nil {
				t.Fatalf("ByName(%q) failed: %v", name, err)
			}

			compressed, err := c.Compress(input)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if name != "none" && len(compressed) >= len(input) {
				t.Errorf("Expected %s to shrink repetitive input, %d >= %d", name, len(compressed), len(input))
			}

			got, err := c.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(got, input) {
				t.Error("Round trip changed the data")
			}
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	if _, err := ByName("lz4"); err == nil {
		t.Error("Expected error for unknown compressor")
	}
}

func TestGzipDecompressGarbage(t *testing.T) {
	if _, err := (GzipCompressor{}).Decompress([]byte("not gzip")); err == nil {
		t.Error("Expected error for invalid gzip data")
	}
}
