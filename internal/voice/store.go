package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrClipNotFound is returned for an unknown or expired clip.
var ErrClipNotFound = errors.New("audio clip not found")

const wavContentType = "audio/wav"

// ClipStore keeps synthesized clips where browsers can fetch them.
type ClipStore interface {
	// Put stores a WAV clip and returns the URL it is served from.
	Put(ctx context.Context, id string, wav []byte) (string, error)
	Delete(ctx context.Context, id string) error
}

// ----- Memory -----

type clip struct {
	data    []byte
	created time.Time
}

// MemoryStore keeps clips in process, served by the API under pathPrefix.
type MemoryStore struct {
	mu         sync.RWMutex
	clips      map[string]clip
	pathPrefix string
}

// NewMemoryStore serves clips at pathPrefix + "/" + id.
func NewMemoryStore(pathPrefix string) *MemoryStore {
	return &MemoryStore{clips: make(map[string]clip), pathPrefix: strings.TrimSuffix(pathPrefix, "/")}
}

func (s *MemoryStore) Put(ctx context.Context, id string, wav []byte) (string, error) {
	s.mu.Lock()
	s.clips[id] = clip{data: wav, created: time.Now()}
	s.mu.Unlock()
	return s.pathPrefix + "/" + url.PathEscape(id), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.clips, id)
	s.mu.Unlock()
	return nil
}

// Get returns a stored clip.
func (s *MemoryStore) Get(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clips[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrClipNotFound)
	}
	return c.data, nil
}

// Prune drops clips older than maxAge and returns how many were removed.
func (s *MemoryStore) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, c := range s.clips {
		if c.created.Before(cutoff) {
			delete(s.clips, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored clips.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clips)
}

// ----- S3 -----

// S3Config describes an S3-compatible bucket (AWS, R2, MinIO).
type S3Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	Prefix          string
}

// S3Store uploads clips to a bucket with a public base URL.
type S3Store struct {
	client        *s3.Client
	bucket        string
	prefix        string
	publicBaseURL string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.PublicBaseURL == "" {
		return nil, errors.New("invalid audio bucket configuration: bucket, credentials and public URL are required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "clips/"
	}
	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        prefix,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *S3Store) key(id string) string { return s.prefix + id + ".wav" }

func (s *S3Store) Put(ctx context.Context, id string, wav []byte) (string, error) {
	key := s.key(id)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(wav),
		ContentType:  aws.String(wavContentType),
		CacheControl: aws.String("public, max-age=600"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload clip (key: %s): %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) error {
	key := s.key(id)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete clip (key: %s): %w", key, err)
	}
	return nil
}
