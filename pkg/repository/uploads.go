package repository

import (
	"context"
	"io"
	"log"

	"chatLink/pkg/api"
	"cloud.google.com/go/storage"
)

type BlobStorage struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewBlobStorage(bucket *storage.BucketHandle, bucketName string) *BlobStorage {
	return &BlobStorage{bucket: bucket, bucketName: bucketName}
}

var _ api.BlobRepository = (*BlobStorage)(nil)

// Upload streams the file into the bucket and returns its public URL.
// Progress is reported as whole percentages, each value at most once.
func (b *BlobStorage) Upload(ctx context.Context, path string, contentType string, size int64, content io.Reader, onProgress func(percent int)) (string, error) {
	writer := b.bucket.Object(path).NewWriter(ctx)
	writer.ContentType = contentType

	if err := copyWithProgress(writer, content, size, onProgress); err != nil {
		writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		log.Printf("Finalizing upload %s: %v", path, err)
		return "", err
	}

	return "https://storage.googleapis.com/" + b.bucketName + "/" + path, nil
}

func copyWithProgress(dst io.Writer, src io.Reader, size int64, onProgress func(percent int)) error {
	buf := make([]byte, 32*1024)
	var written int64
	reported := -1

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return err
			}
			written += int64(n)
			if onProgress != nil && size > 0 {
				percent := int(written * 100 / size)
				if percent > 100 {
					percent = 100
				}
				if percent != reported {
					reported = percent
					onProgress(percent)
				}
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
