package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Invicton-Labs/go-powerix/aws/credentials"
	"github.com/Invicton-Labs/go-powerix/gensync"
	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsarn "github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

var s3Client *s3.Client
var s3ClientInitOnce gensync.Once

func getS3Client(ctx context.Context) (*s3.Client, stackerr.Error) {
	if err := s3ClientInitOnce.Do(func() stackerr.Error {
		cfg, err := credentials.GetConfig(ctx)
		if err != nil {
			return err
		}
		s3Client = s3.NewFromConfig(*cfg, func(o *s3.Options) {
			o.Logger = log.GetAwsLogger()
		})
		return nil
	}); err != nil {
		return nil, err
	}

	return s3Client, nil
}

// IsObjectArn reports whether location is an S3 ARN rather than a local
// path or another service's ARN.
func IsObjectArn(location string) bool {
	if !strings.HasPrefix(location, "arn:") {
		return false
	}
	parsed, err := awsarn.Parse(location)
	return err == nil && parsed.Service == "s3"
}

// ParseObjectArn splits an S3 object ARN such as
// arn:aws:s3:::bucket/path/to/key into its bucket and key.
func ParseObjectArn(arn string) (bucket string, key string, err stackerr.Error) {
	parsedArn, cerr := awsarn.Parse(arn)
	if cerr != nil {
		return "", "", stackerr.Wrap(cerr)
	}
	if parsedArn.Service != "s3" {
		return "", "", stackerr.Errorf("ARN %q is not an S3 ARN", arn)
	}
	parts := strings.SplitN(parsedArn.Resource, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", stackerr.Errorf("ARN %q does not name an object (expected bucket/key)", arn)
	}
	return parts[0], parts[1], nil
}

type PutObjectArgs struct {
	ContentEncoding    *string
	ContentType        *string
	ContentLanguage    *string
	ContentDisposition *string
}

func PutObject[ContentType string | []byte | *bytes.Reader | *strings.Reader | *bytes.Buffer](ctx context.Context, arn string, content ContentType, args *PutObjectArgs) stackerr.Error {
	bucket, key, err := ParseObjectArn(arn)
	if err != nil {
		return err
	}
	client, err := getS3Client(ctx)
	if err != nil {
		return err
	}

	uploader := manager.NewUploader(client)

	var bodyReader io.Reader
	switch v := any(content).(type) {
	case string:
		bodyReader = strings.NewReader(v)
	case []byte:
		bodyReader = bytes.NewReader(v)
	case io.Reader:
		bodyReader = v
	default:
		return stackerr.Errorf("Unknown content variable type: %T", content)
	}

	input := &s3.PutObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(key),
		Body:              bodyReader,
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
		BucketKeyEnabled:  true,
	}

	if args != nil {
		input.ContentType = args.ContentType
		input.ContentEncoding = args.ContentEncoding
		input.ContentLanguage = args.ContentLanguage
		input.ContentDisposition = args.ContentDisposition
	}

	if _, cerr := uploader.Upload(ctx, input); cerr != nil {
		return stackerr.Wrap(cerr)
	}
	log.FromContext(ctx).Debugf("Uploaded s3://%s/%s", bucket, key)
	return nil
}

func GetObject(ctx context.Context, arn string, disableChecksumVerification ...bool) ([]byte, stackerr.Error) {
	bucket, key, err := ParseObjectArn(arn)
	if err != nil {
		return nil, err
	}
	client, err := getS3Client(ctx)
	if err != nil {
		return nil, err
	}

	// Do a HEAD request to find out how many bytes the file is
	head, cerr := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if cerr != nil {
		return nil, stackerr.Wrap(cerr)
	}

	// Create a buffer of the correct length
	buffer := manager.NewWriteAtBuffer(make([]byte, 0, head.ContentLength))

	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		d.Logger = log.GetAwsLogger()
	})

	checksumMode := types.ChecksumModeEnabled
	if len(disableChecksumVerification) > 0 && disableChecksumVerification[0] {
		checksumMode = ""
	}

	// Try to get the specific version of the file, so the content length
	// remains the same.
	_, cerr = downloader.Download(ctx, buffer, &s3.GetObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		ChecksumMode: checksumMode,
		VersionId:    head.VersionId,
	})
	var re *smithyhttp.ResponseError
	if cerr != nil && errors.As(cerr, &re) && re.HTTPStatusCode() == http.StatusForbidden {
		// If access to the version was forbidden, try again without specifying the version ID
		_, cerr = downloader.Download(ctx, buffer, &s3.GetObjectInput{
			Bucket:       aws.String(bucket),
			Key:          aws.String(key),
			ChecksumMode: checksumMode,
		})
		if cerr == nil {
			log.FromContext(ctx).Debugf("Could not download a specific version of s3://%s/%s, used fallback to downloading current version", bucket, key)
		}
	}
	if cerr != nil {
		return nil, stackerr.Wrap(cerr)
	}
	return buffer.Bytes(), nil
}
