// Package objectstorage provides a db.Storage backend that keeps every
// snapshot as a JSON object in an S3 compatible bucket.
package objectstorage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/surveypro/saas-backend/db"
	"go.vocdoni.io/dvote/log"
)

const (
	defaultCacheSize = 64
	requestTimeout   = 20 * time.Second
	objectSuffix     = ".json"
	jsonContentType  = "application/json"
)

// Config holds the configuration for the object storage client. Endpoint
// is optional and switches the client to path style addressing, which is
// what MinIO and most S3 compatible services expect.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	CacheSize int
}

// Client stores snapshots in a bucket and keeps an LRU cache of the last
// snapshots read or written.
type Client struct {
	s3         *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	cache      *lru.Cache[string, []byte]
}

// New initializes the client and verifies the bucket exists, creating it
// when it does not.
func New(conf *Config) (*Client, error) {
	if conf == nil || conf.Bucket == "" {
		return nil, fmt.Errorf("invalid object storage configuration")
	}
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.AccessKey,
			conf.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})
	size := conf.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("cannot create cache: %w", err)
	}
	osc := &Client{
		s3:         client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     conf.Bucket,
		cache:      cache,
	}
	if err := osc.ensureBucket(ctx); err != nil {
		return nil, err
	}
	log.Infow("object storage ready", "bucket", conf.Bucket, "endpoint", conf.Endpoint)
	return osc, nil
}

func (osc *Client) ensureBucket(ctx context.Context) error {
	_, err := osc.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(osc.bucket)})
	if err == nil {
		return nil
	}
	log.Warnw("bucket not found, attempting to create it", "bucket", osc.bucket)
	if _, err := osc.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(osc.bucket)}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", osc.bucket, err)
	}
	return nil
}

// objectKey returns the name of the object holding the snapshot key.
func objectKey(key string) string {
	return db.Namespace + key + objectSuffix
}

// Load decodes the snapshot stored at key into v.
func (osc *Client) Load(key string, v any) error {
	data, ok := osc.cache.Get(key)
	if !ok {
		var err error
		if data, err = osc.download(key); err != nil {
			return err
		}
		osc.cache.Add(key, data)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: cannot decode %s: %v", db.ErrInvalidData, key, err)
	}
	return nil
}

func (osc *Client) download(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	buf := manager.NewWriteAtBuffer(nil)
	if _, err := osc.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(osc.bucket),
		Key:    aws.String(objectKey(key)),
	}); err != nil {
		if isNotFound(err) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// Save uploads the JSON snapshot of v at key.
func (osc *Client) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if _, err := osc.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(osc.bucket),
		Key:         aws.String(objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(jsonContentType),
	}); err != nil {
		osc.cache.Remove(key)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	osc.cache.Add(key, data)
	return nil
}

// Delete removes the snapshot at key.
func (osc *Client) Delete(key string) error {
	osc.cache.Remove(key)
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if _, err := osc.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(osc.bucket),
		Key:    aws.String(objectKey(key)),
	}); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close drops the cached snapshots. The S3 client holds no connections
// that need closing.
func (osc *Client) Close() {
	osc.cache.Purge()
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
