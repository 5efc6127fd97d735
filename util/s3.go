package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UnusedArchiveKey returns the first of "{prefix}{stem}{ext}", "{prefix}{stem}-1{ext}", "{prefix}{stem}-2{ext}", etc.
// that does not name an existing object in bucket.
//
// Use SplitArchiveName to obtain stem and ext so that the counter lands before the whole archive suffix.
func UnusedArchiveKey(ctx context.Context, client s3.HeadObjectAPIClient, bucket, prefix, stem, ext string) (string, error) {
	for i := 0; ; i++ {
		key := prefix + stem + ext
		if i > 0 {
			key = fmt.Sprintf("%s%s-%d%s", prefix, stem, i, ext)
		}

		exists, err := objectExists(ctx, client, bucket, key)
		if err != nil {
			return "", fmt.Errorf(`check s3 key "%s" error: %w`, key, err)
		}

		if !exists {
			return key, nil
		}
	}
}

func objectExists(ctx context.Context, client s3.HeadObjectAPIClient, bucket, key string) (bool, error) {
	_, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound {
		return false, nil
	}

	return false, err
}
