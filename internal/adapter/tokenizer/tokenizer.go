package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
)

const DefaultEncoding = "cl100k_base"

// Tokenizer bounds text by BPE token count using a tiktoken encoding.
// Safe for concurrent use once loaded.
type Tokenizer struct {
	encoding string
	model    *tiktoken.Tiktoken
}

// Load resolves the named encoding. tiktoken-go fetches the BPE ranks on
// first use and caches them under TIKTOKEN_CACHE_DIR when set.
func Load(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	tkm, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, &domain.ModelLoadError{Component: "tokenizer", Err: err}
	}
	return &Tokenizer{encoding: encoding, model: tkm}, nil
}

func (t *Tokenizer) Encoding() string {
	return t.encoding
}

func (t *Tokenizer) Count(text string) int {
	return len(t.model.Encode(text, nil, nil))
}

// Truncate keeps the first maxTokens tokens of text. Text within the limit is
// returned unchanged; maxTokens <= 0 disables truncation. A multi-byte
// character split by the cut is dropped rather than left as invalid UTF-8.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	tokens := t.model.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}

	out := t.model.Decode(tokens[:maxTokens])
	if !utf8.ValidString(out) {
		out = strings.ToValidUTF8(out, "")
	}
	return out
}
