package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-tailor/internal/shared/storage/object"
)

// Options configures an S3 or S3-compatible store.
type Options struct {
	Region          string
	Bucket          string
	Prefix          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	KMSKeyID        string
	// S3-compatible providers generally need path-style addressing and reject SSE headers.
	UsePathStyle bool
	DisableSSE   bool
}

// Store implements ObjectStore using Amazon S3 or a compatible endpoint.
type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	prefix    string
	kmsKeyID  string
	sse       bool
}

// New loads AWS configuration and builds a Store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewFromConfig(cfg, opts), nil
}

// NewFromConfig builds a Store from an already loaded aws.Config.
func NewFromConfig(cfg aws.Config, opts Options) *Store {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    opts.Bucket,
		prefix:    normalizePrefix(opts.Prefix),
		kmsKeyID:  strings.TrimSpace(opts.KMSKeyID),
		sse:       !opts.DisableSSE,
	}
}

// NewSupabase builds a Store against Supabase Storage's S3-compatible endpoint.
// Without explicit S3 access keys it authenticates with the project ref and service key.
func NewSupabase(ctx context.Context, projectURL, serviceKey, bucket, region, accessKeyID, secretAccessKey string) (*Store, error) {
	endpoint, ref, err := supabaseEndpoint(projectURL)
	if err != nil {
		return nil, err
	}
	opts := Options{
		Region:          region,
		Bucket:          bucket,
		Endpoint:        endpoint,
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		UsePathStyle:    true,
		DisableSSE:      true,
	}
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		if serviceKey == "" {
			return nil, fmt.Errorf("supabase service key is required")
		}
		opts.AccessKeyID = ref
		opts.SecretAccessKey = serviceKey
		opts.SessionToken = serviceKey
	}
	return New(ctx, opts)
}

func supabaseEndpoint(projectURL string) (endpoint, ref string, err error) {
	u, err := url.Parse(strings.TrimSpace(projectURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("invalid SUPABASE_URL %q", projectURL)
	}
	ref, _, _ = strings.Cut(u.Hostname(), ".")
	return strings.TrimRight(u.Scheme+"://"+u.Host, "/") + "/storage/v1/s3", ref, nil
}

// Save uploads r under the user's namespace.
func (s *Store) Save(ctx context.Context, userID, fileName, contentType string, r io.Reader) (string, int64, error) {
	key, err := object.NewUserKey(userID, fileName)
	if err != nil {
		return "", 0, err
	}
	size, err := s.SaveWithKey(ctx, key, contentType, r)
	if err != nil {
		return "", 0, err
	}
	return key, size, nil
}

// SaveWithKey uploads r to a specific storage key.
func (s *Store) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	counter := &countingReader{r: r}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	switch {
	case !s.sse:
	case s.kmsKeyID != "":
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	default:
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return counter.n, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, object.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Delete removes a stored object.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	objectKey := applyPrefix(s.prefix, storageKey)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

// PresignGet returns a GET URL valid for ttl.
func (s *Store) PresignGet(ctx context.Context, storageKey string, ttl time.Duration) (string, error) {
	objectKey := applyPrefix(s.prefix, storageKey)
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return req.URL, nil
}

// Bucket returns the configured bucket name.
func (s *Store) Bucket() string { return s.bucket }

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var (
	_ object.ObjectStore = (*Store)(nil)
	_ object.Presigner   = (*Store)(nil)
)
