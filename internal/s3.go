package internal

import (
	"fmt"
	"strings"
)

// ParseS3URI parses S3 URIs in format s3://bucket/prefix.
//
// The prefix may be empty. A non-empty prefix always ends with "/" so that keys are created under it as a directory.
func ParseS3URI(text string) (bucket, prefix string, err error) {
	// don't bother validating valid bucket names.
	rest, ok := strings.CutPrefix(text, "s3://")
	if !ok {
		return "", "", fmt.Errorf(`"%s" does not start with s3://`, text)
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf(`"%s" has no bucket`, text)
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return
}
