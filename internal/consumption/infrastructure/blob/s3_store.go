package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Credentials is the JSON credential bundle for an S3-compatible endpoint.
type Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
}

// ParseCredentials decodes a credential bundle.
func ParseCredentials(raw string) (Credentials, error) {
	var creds Credentials
	if raw == "" {
		return creds, errors.New("blob: empty credentials")
	}
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return creds, fmt.Errorf("blob: parse credentials: %w", err)
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return creds, errors.New("blob: credentials missing access key")
	}
	if creds.Region == "" {
		creds.Region = "auto"
	}
	return creds, nil
}

// S3Store keeps objects in a bucket of an S3-compatible service.
type S3Store struct {
	client s3iface.S3API
	bucket string
}

// NewS3Store builds a client from a credential bundle.
func NewS3Store(creds Credentials, bucket string) (*S3Store, error) {
	cfg := &aws.Config{
		Region:      aws.String(creds.Region),
		Credentials: credentials.NewStaticCredentials(creds.AccessKeyID, creds.SecretAccessKey, ""),
	}
	if creds.Endpoint != "" {
		cfg.Endpoint = aws.String(creds.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("blob: s3 session: %w", err)
	}
	return NewS3StoreWithClient(s3.New(sess), bucket)
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client s3iface.S3API, bucket string) (*S3Store, error) {
	if client == nil {
		return nil, errors.New("blob: nil s3 client")
	}
	if bucket == "" {
		return nil, errors.New("blob: empty bucket")
	}
	return &S3Store{client: client, bucket: bucket}, nil
}

// Get downloads the object stored under key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("blob: get %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("blob: read %s: %w", key, err)
	}
	return data, nil
}

// Put uploads data under key.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("blob: put %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
