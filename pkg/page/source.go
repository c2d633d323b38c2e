package page

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/semiresponsive/internal/errors"
)

// Source loads page markup.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
	String() string
}

// File is markup read from disk on every Load.
type File string

// Load reads the file.
func (f File) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, errors.New("E200").
			WithDetail("Could not read " + string(f)).
			Wrap(err)
	}
	return data, nil
}

func (f File) String() string {
	return string(f)
}

// Bytes is markup held in memory.
type Bytes []byte

// Load returns a copy of the markup.
func (b Bytes) Load(context.Context) ([]byte, error) {
	return append([]byte(nil), b...), nil
}

func (b Bytes) String() string {
	return "memory:"
}

// S3API is the subset of the S3 client S3Source needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source is markup stored in an S3 (or S3-compatible) bucket.
type S3Source struct {
	Client S3API
	Bucket string
	Key    string
}

// Load fetches the object.
func (s *S3Source) Load(ctx context.Context) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, errors.New("E202").
			WithDetail("GetObject " + s.String() + " failed").
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("E202").
			WithDetail("Reading " + s.String() + " failed").
			Wrap(err)
	}
	return data, nil
}

func (s *S3Source) String() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

// S3Options configures the S3 client Open builds for s3:// URIs.
type S3Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// NewS3Client builds an S3 client. Static credentials are used when both
// keys are set; otherwise AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SESSION_TOKEN are read from the environment.
func NewS3Client(opts S3Options) *s3.Client {
	keyID, secret, token := opts.AccessKeyID, opts.SecretAccessKey, ""
	if keyID == "" || secret == "" {
		keyID = os.Getenv("AWS_ACCESS_KEY_ID")
		secret = os.Getenv("AWS_SECRET_ACCESS_KEY")
		token = os.Getenv("AWS_SESSION_TOKEN")
	}
	region := opts.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	o := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(keyID, secret, token),
		UsePathStyle: opts.UsePathStyle,
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return s3.New(o)
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	client    S3API
	s3Options S3Options
}

// WithS3Client uses client for s3:// URIs.
func WithS3Client(client S3API) Option {
	return func(c *openConfig) {
		c.client = client
	}
}

// WithS3Options configures the client Open builds when none is given.
func WithS3Options(opts S3Options) Option {
	return func(c *openConfig) {
		c.s3Options = opts
	}
}

// Open resolves a page URI:
//
//	""  or "demo:"       the built-in demo page
//	"s3://bucket/key"    an S3 object
//	"file:///path"       a file
//	anything else        a file path
func Open(uri string, opts ...Option) (Source, error) {
	var cfg openConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case uri == "" || uri == "demo:":
		return Demo(), nil

	case strings.HasPrefix(uri, "s3://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, errors.New("E201").Wrap(err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, errors.New("E201").
				WithDetail(fmt.Sprintf("%q needs both a bucket and a key", uri)).
				WithSuggestion("Use s3://bucket/path/to/page.html")
		}
		client := cfg.client
		if client == nil {
			client = NewS3Client(cfg.s3Options)
		}
		return &S3Source{Client: client, Bucket: u.Host, Key: key}, nil

	case strings.HasPrefix(uri, "file://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, errors.New("E201").Wrap(err)
		}
		return File(u.Path), nil

	default:
		return File(uri), nil
	}
}
