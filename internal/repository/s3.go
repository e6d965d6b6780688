package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/debemdeboas/archive-admin/internal/model"
	"github.com/debemdeboas/archive-admin/internal/util"
)

// S3API is the part of *s3.Client the repository uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type S3Options struct {
	Bucket   string
	Prefix   string
	Endpoint string
	Region   string

	AccessKeyID     string
	SecretAccessKey string
}

// S3PostRepository stores the same <slug>.md files as FSPostRepository, as
// objects under a key prefix.
type S3PostRepository struct { // implements PostRepository
	client S3API
	bucket string
	prefix string

	// Serializes the read-then-write in CreatePost within this process.
	mu sync.Mutex

	now func() time.Time
}

func NewS3PostRepository(ctx context.Context, opts S3Options) (*S3PostRepository, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing S3 client: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3PostRepositoryWithClient(client, opts.Bucket, opts.Prefix), nil
}

func NewS3PostRepositoryWithClient(client S3API, bucket, prefix string) *S3PostRepository {
	return &S3PostRepository{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *S3PostRepository) key(slug model.Slug) string {
	return r.prefix + string(slug) + markdownExt
}

func (r *S3PostRepository) CreatePost(ctx context.Context, p model.NewPost) error {
	if err := validateSlug(p.Slug); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := r.now().UTC()
	if existing, err := r.GetPost(ctx, p.Slug); err == nil {
		created = existing.CreatedDate
	} else if !errors.Is(err, ErrPostNotFound) {
		return err
	}

	data, err := util.BuildFrontMatter(p.Title, created, []byte(p.Markdown))
	if err != nil {
		return err
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key(p.Slug)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/markdown; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("error uploading post %q: %w", p.Slug, err)
	}

	repoLogger.Debug().Str("slug", string(p.Slug)).Str("key", r.key(p.Slug)).Msg("Post saved")
	return nil
}

func (r *S3PostRepository) GetPost(ctx context.Context, slug model.Slug) (*model.Post, error) {
	if err := validateSlug(slug); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(slug)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
		}
		return nil, fmt.Errorf("error downloading post %q: %w", slug, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading post %q: %w", slug, err)
	}

	modified := r.now()
	if out.LastModified != nil {
		modified = *out.LastModified
	}

	return parseMarkdownFile(slug, content, modified), nil
}

func (r *S3PostRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix),
	})

	posts := make([]model.Post, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing posts: %w", err)
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), r.prefix)
			if strings.Contains(name, "/") || !strings.HasSuffix(name, markdownExt) {
				continue
			}

			post, err := r.GetPost(ctx, model.Slug(strings.TrimSuffix(name, markdownExt)))
			if err != nil {
				repoLogger.Warn().Err(err).Str("key", aws.ToString(obj.Key)).Msg("Skipping unreadable post")
				continue
			}
			posts = append(posts, *post)
		}
	}

	sortPosts(posts)
	return posts, nil
}
