package storage

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStorage struct {
	client    minioClient
	multipart multipartClient
}

// compile-time check: *MinioStorage must satisfy port.Storage
var _ port.Storage = (*MinioStorage)(nil)

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool) (*MinioStorage, error) {
	log.Println("initialising minio client...")
	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return &MinioStorage{client: core.Client, multipart: core}, nil
}

func (s *MinioStorage) InitBucket(bucket string) error {
	ok, err := s.client.BucketExists(context.Background(), bucket)
	if err != nil {
		return mapMinioErr(err)
	}
	if !ok {
		log.Printf("bucket %q does not exist, creating it...", bucket)
		if err := s.client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return mapMinioErr(err)
		}
	}
	return nil
}

func (s *MinioStorage) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	log.Printf("generating a presigned download link for file %q in bucket %q...", fileKey, bucket)

	presignedURL, err := s.client.PresignedGetObject(ctx, bucket, fileKey, expiry, url.Values{})
	if err != nil {
		return "", mapMinioErr(err)
	}

	return presignedURL.String(), nil
}

func (s *MinioStorage) GeneratePresignedUploadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	log.Printf("generating a presigned upload link for file %q in bucket %q...", fileKey, bucket)

	presignedURL, err := s.client.PresignedPutObject(ctx, bucket, fileKey, expiry)
	if err != nil {
		return "", mapMinioErr(err)
	}

	return presignedURL.String(), nil
}

func (s *MinioStorage) FileExists(ctx context.Context, bucket, fileKey string) (bool, error) {
	log.Printf("checking if file %q exists in bucket %q...", fileKey, bucket)

	_, err := s.StatFile(ctx, bucket, fileKey)
	if errors.Is(err, port.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MinioStorage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	log.Printf("getting stats on file %q in bucket %q...", fileKey, bucket)

	info, err := s.client.StatObject(ctx, bucket, fileKey, minio.StatObjectOptions{})
	if err != nil {
		return port.FileInfo{}, mapMinioErr(err)
	}
	return port.FileInfo{
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
		ETag:        info.ETag,
	}, nil
}

func (s *MinioStorage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	log.Printf("removing file %q from bucket %q...", fileKey, bucket)

	err := s.client.RemoveObject(ctx, bucket, fileKey, minio.RemoveObjectOptions{})
	return mapMinioErr(err)
}

func (s *MinioStorage) CopyFile(ctx context.Context, srcBucket, srcKey, destBucket, destKey string) error {
	log.Printf("copying file %q from bucket %q to %q in bucket %q...", srcKey, srcBucket, destKey, destBucket)

	destOpts := minio.CopyDestOptions{
		Bucket: destBucket,
		Object: destKey,
	}
	srcOpts := minio.CopySrcOptions{
		Bucket: srcBucket,
		Object: srcKey,
	}

	_, err := s.client.CopyObject(ctx, destOpts, srcOpts)
	if err != nil {
		return mapMinioErr(err)
	}
	return nil
}

func (s *MinioStorage) NewMultipartUpload(ctx context.Context, bucket, fileKey, contentType string) (string, error) {
	log.Printf("opening a multipart upload for file %q in bucket %q...", fileKey, bucket)

	uploadID, err := s.multipart.NewMultipartUpload(ctx, bucket, fileKey, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", mapMinioErr(err)
	}
	return uploadID, nil
}

// PresignPartURL signs a raw PUT for one part of an open multipart upload.
// The part number and upload id ride along as query parameters, the same
// shape UploadPart uses on the wire.
func (s *MinioStorage) PresignPartURL(ctx context.Context, bucket, fileKey, uploadID string, partNumber int, expiry time.Duration) (string, error) {
	log.Printf("generating a presigned link for part %d of file %q in bucket %q...", partNumber, fileKey, bucket)

	params := url.Values{}
	params.Set("partNumber", strconv.Itoa(partNumber))
	params.Set("uploadId", uploadID)

	presignedURL, err := s.client.Presign(ctx, "PUT", bucket, fileKey, expiry, params)
	if err != nil {
		return "", mapMinioErr(err)
	}
	return presignedURL.String(), nil
}

func (s *MinioStorage) CompleteMultipartUpload(ctx context.Context, bucket, fileKey, uploadID string, parts []model.CompletedPart) error {
	log.Printf("completing multipart upload %q for file %q in bucket %q (%d parts)...", uploadID, fileKey, bucket, len(parts))

	completeParts := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: p.PartNumber,
			ETag:       p.ETag,
		})
	}

	_, err := s.multipart.CompleteMultipartUpload(ctx, bucket, fileKey, uploadID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return mapMinioErr(err)
	}
	return nil
}

func (s *MinioStorage) AbortMultipartUpload(ctx context.Context, bucket, fileKey, uploadID string) error {
	log.Printf("aborting multipart upload %q for file %q in bucket %q...", uploadID, fileKey, bucket)

	err := s.multipart.AbortMultipartUpload(ctx, bucket, fileKey, uploadID)
	return mapMinioErr(err)
}
