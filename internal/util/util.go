// Package util provides utility functions for content hashing and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"

	"github.com/mmarkdown/mmark/v2/mast"
)

// FrontMatterDelimiter opens and closes an mmark title block.
const FrontMatterDelimiter = "%%%"

type ExtendedTitleData struct {
	*mast.TitleData
	Consumed int
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// GetFrontMatter decodes the TOML block between two %%% lines at the start of
// md. Consumed is the offset of the first body byte in the normalized input.
func GetFrontMatter(md []byte) (*ExtendedTitleData, error) {
	md = normalize(md)
	return getFrontMatter(md)
}

// SplitFrontMatter returns the decoded front matter and the markdown after it.
func SplitFrontMatter(md []byte) (*ExtendedTitleData, []byte, error) {
	md = normalize(md)

	info, err := getFrontMatter(md)
	if err != nil {
		return nil, nil, err
	}

	return info, md[info.Consumed:], nil
}

func normalize(md []byte) []byte {
	md = markdown.NormalizeNewlines(md)
	return bytes.TrimLeft(md, "\n \t\r")
}

// closingDelimiter returns the offset of the newline that opens the first line
// of rest consisting only of the delimiter, or -1.
func closingDelimiter(rest []byte) int {
	line := []byte("\n" + FrontMatterDelimiter)

	offset := 0
	for {
		i := bytes.Index(rest[offset:], line)
		if i == -1 {
			return -1
		}

		at := offset + i
		after := at + len(line)
		if after == len(rest) || rest[after] == '\n' {
			return at
		}
		offset = at + 1
	}
}

func getFrontMatter(md []byte) (*ExtendedTitleData, error) {
	delimiter := []byte(FrontMatterDelimiter)

	// Check if md is long enough to contain the delimiter
	if len(md) < 2*len(delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	first := bytes.Index(md[:len(delimiter)+1], delimiter)
	if first == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	start := first + len(delimiter)
	second := closingDelimiter(md[start:])
	if second == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	// Body starts after the closing line and its newline, if any.
	end := min(start+second+1+len(delimiter)+1, len(md))
	frontMatter := md[start : start+second+1]
	info := &ExtendedTitleData{
		TitleData: &mast.TitleData{},
	}

	if _, err := toml.Decode(string(frontMatter), info); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	if info.Language == "" {
		info.Language = "en"
	}
	info.Consumed = end

	return info, nil
}

type frontMatterFields struct {
	Title string    `toml:"title"`
	Date  time.Time `toml:"date"`
}

// BuildFrontMatter prefixes body with a front matter block holding title and
// date, in the format GetFrontMatter reads.
func BuildFrontMatter(title string, date time.Time, body []byte) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(FrontMatterDelimiter + "\n")

	if err := toml.NewEncoder(&b).Encode(frontMatterFields{Title: title, Date: date.UTC()}); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	b.WriteString(FrontMatterDelimiter + "\n")
	b.Write(body)
	return b.Bytes(), nil
}
