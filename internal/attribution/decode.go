package attribution

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// FixMalformedPercent escapes any '%' not followed by two hex digits to
// a literal "%25". Ad platforms emit unencoded '%' in campaign labels
// ("77% 할인"), which would otherwise make decoding fail outright. This
// is a best-effort heuristic: a literal "%2" directly followed by more
// encoded content is inherently ambiguous.
func FixMalformedPercent(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !(i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// FullyDecode repairs and percent-decodes a query parameter value until
// it reaches a fixed point, unwinding however many encoding layers the
// ad platform stacked on. '+' converts to space once, before decoding,
// per the form-encoding convention. Decoding never fails the caller: if
// a layer cannot be decoded even after repair, the best-effort partial
// result is returned and a warning logged.
func FullyDecode(s string, logger zerolog.Logger) string {
	if s == "" {
		return s
	}

	fixed := FixMalformedPercent(s)
	fixed = strings.ReplaceAll(fixed, "+", " ")

	decoded := fixed
	for {
		next, err := url.PathUnescape(decoded)
		if err != nil {
			repaired, repairErr := url.PathUnescape(FixMalformedPercent(decoded))
			if repairErr != nil {
				logger.Warn().Str("raw", s).Msg("Parameter decode failed, keeping partial value")
				break
			}
			next = repaired
		}
		if next == decoded {
			break
		}
		decoded = next
	}
	return decoded
}
