package utils

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/raushankrgupta/fitly-atelier/config"
	"go.uber.org/zap"
)

// s3RefPrefix marks image references that live in the configured bucket
const s3RefPrefix = "s3://"

var (
	S3Client      *s3.Client
	PresignClient *s3.PresignClient
	s3InitMu      sync.Mutex
)

// InitS3 initializes the S3 client
func InitS3() error {
	s3InitMu.Lock()
	defer s3InitMu.Unlock()
	if S3Client != nil {
		return nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(appConfig.AWSRegion),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config, %v", err)
	}

	S3Client = s3.NewFromConfig(cfg)
	PresignClient = s3.NewPresignClient(S3Client)
	Logger.Info("S3 client initialized", zap.String("bucket", appConfig.AWSBucketName))
	return nil
}

// S3Enabled reports whether generated and uploaded images go to S3
func S3Enabled() bool {
	return appConfig.AWSBucketName != ""
}

// S3Ref builds the image reference stored for an object key
func S3Ref(objectKey string) string {
	return s3RefPrefix + objectKey
}

// S3KeyFromRef extracts the object key from an s3:// reference
func S3KeyFromRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, s3RefPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(ref, s3RefPrefix)
	return key, key != ""
}

// UploadFileToS3 uploads a file to S3 and returns the Object Key
func UploadFileToS3(ctx context.Context, file io.Reader, objectKey string, contentType string) (string, error) {
	if S3Client == nil {
		if err := InitS3(); err != nil {
			return "", err
		}
	}

	_, err := S3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(appConfig.AWSBucketName),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return objectKey, nil
}

// DownloadFromS3 reads an object and its content type
func DownloadFromS3(ctx context.Context, objectKey string) ([]byte, string, error) {
	if S3Client == nil {
		if err := InitS3(); err != nil {
			return nil, "", err
		}
	}

	out, err := S3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(appConfig.AWSBucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to download %s from S3: %w", objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s from S3: %w", objectKey, err)
	}
	return data, aws.ToString(out.ContentType), nil
}

// GetPresignedURL generates a presigned URL for an object
func GetPresignedURL(ctx context.Context, objectKey string) (string, error) {
	if PresignClient == nil {
		if err := InitS3(); err != nil {
			return "", err
		}
	}

	request, err := PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(appConfig.AWSBucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}

	return request.URL, nil
}
