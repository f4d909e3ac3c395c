// Package storage — загрузка файлов (изображения продуктов, сертификаты COA)
// в S3-совместимое объектное хранилище (AWS S3 или MinIO).
//
// Ключи объектов детерминированы по коду: повторная загрузка для того же
// кода перезаписывает объект, поэтому удаление записи QR-кода не требует
// чистки хранилища.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FileStorage — интерфейс загрузки файлов.
type FileStorage interface {
	// Upload записывает объект и возвращает его публичный URL.
	// Существующий объект с тем же ключом перезаписывается.
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Config — параметры подключения к хранилищу.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // пусто — AWS S3; задан — кастомный endpoint (MinIO)
	AccessKey string // пусто — цепочка credentials по умолчанию
	SecretKey string
	PathStyle bool
	// PublicURL — база публичных ссылок (CDN или публичный адрес MinIO).
	// Пусто — URL строится из endpoint/bucket.
	PublicURL string
}

// S3Storage — реализация FileStorage поверх aws-sdk-go-v2.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// New создаёт S3-хранилище.
func New(ctx context.Context, cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket обязателен")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("загрузка AWS-конфигурации: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBase(cfg, region),
	}, nil
}

// publicBase строит базу публичных ссылок на объекты.
func publicBase(cfg Config, region string) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
}

// Upload записывает объект и возвращает его публичный URL.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = &contentType
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("загрузка объекта %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// ObjectKeyImage возвращает ключ изображения продукта для кода.
func ObjectKeyImage(code, ext string) string {
	return fmt.Sprintf("images/%s.%s", code, strings.TrimPrefix(ext, "."))
}

// ObjectKeyCoa возвращает ключ сертификата анализа (PDF) для кода.
func ObjectKeyCoa(code string) string {
	return fmt.Sprintf("coa/%s.pdf", code)
}
