package naming

import (
	"regexp"
	"strings"
)

var (
	nonAlphaNum    = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphen = regexp.MustCompile(`-{2,}`)
	segmentSplit   = regexp.MustCompile(`[-_]+`)
)

const (
	bucketMinLen = 3
	bucketMaxLen = 63
)

// Normalize converts a free-text application name into a lowercase
// hyphenated identifier. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlphaNum.ReplaceAllString(s, "-")
	s = repeatedHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "app"
	}
	return s
}

// PascalCase converts a normalized name into a namespace segment,
// e.g. "my-shop" -> "MyShop".
func PascalCase(s string) string {
	var b strings.Builder
	for _, seg := range segmentSplit.Split(Normalize(s), -1) {
		if seg == "" {
			continue
		}
		b.WriteString(strings.ToUpper(seg[:1]))
		b.WriteString(seg[1:])
	}
	return b.String()
}

// PackageName derives a fully-qualified Composer package identifier
// from a vendor prefix and a free-text name.
func PackageName(vendor, name string) string {
	return Normalize(vendor) + "/" + Normalize(name)
}

// BucketName normalizes a logical resource name to S3/MinIO bucket rules:
// lowercase alphanumerics and hyphens, length between 3 and 63, no leading
// or trailing hyphen, no repeated hyphens.
func BucketName(s string) string {
	s = Normalize(s)
	if len(s) > bucketMaxLen {
		s = s[:bucketMaxLen]
		s = strings.TrimRight(s, "-")
	}
	for len(s) < bucketMinLen {
		s += "0"
	}
	return s
}
