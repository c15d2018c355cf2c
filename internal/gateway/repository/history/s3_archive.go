package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"balanceboard/internal/artifact"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Archive writes each saved record as a JSON report under
// <user>/<record id>.json and delegates queries to the wrapped Store.
type S3Archive struct {
	Store

	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Archive(inner Store, cfg S3Config) (*S3Archive, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner store is required")
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Archive{Store: inner, client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Archive) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Save stores the record first; the archive copy is written only when that
// succeeds.
func (s *S3Archive) Save(ctx context.Context, rec artifact.DecisionRecord) error {
	if err := s.Store.Save(ctx, rec); err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucketName, reportKey(rec.UserID, rec.ID), bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("archive decision %s: %w", rec.ID, err)
	}
	return nil
}

// Report reads an archived record back.
func (s *S3Archive) Report(ctx context.Context, userID, id string) (artifact.DecisionRecord, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return artifact.DecisionRecord{}, fmt.Errorf("ensure bucket: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, reportKey(userID, id), minio.GetObjectOptions{})
	if err != nil {
		return artifact.DecisionRecord{}, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return artifact.DecisionRecord{}, ErrNotFound
		}
		return artifact.DecisionRecord{}, err
	}
	var rec artifact.DecisionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return artifact.DecisionRecord{}, fmt.Errorf("decode report: %w", err)
	}
	return rec, nil
}

// ReportURL presigns a download link for an archived report.
func (s *S3Archive) ReportURL(ctx context.Context, userID, id string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, reportKey(userID, id), time.Hour, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func reportKey(userID, id string) string {
	user := strings.Trim(strings.TrimSpace(userID), "/")
	if user == "" {
		user = "anonymous"
	}
	return user + "/" + strings.TrimSpace(id) + ".json"
}
