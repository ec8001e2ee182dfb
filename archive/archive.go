// Package archive exports completed transcripts to S3-compatible object
// storage for long-term retention.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ytdigest/models"
)

type Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
}

type Client struct {
	client *s3.Client
	bucket string
}

func NewClient(cfg Config) (*Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: cfg.Endpoint,
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	return &Client{
		// S3-compatible endpoints address buckets by path, not by
		// virtual host.
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		bucket: cfg.Bucket,
	}, nil
}

type archivedTranscript struct {
	YouTubeID       string    `json:"youtube_id"`
	Content         string    `json:"content"`
	Enhanced        string    `json:"enhanced,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Language        string    `json:"language"`
	IsAutoGenerated bool      `json:"is_auto_generated"`
	WordCount       int       `json:"word_count"`
	ArchivedAt      time.Time `json:"archived_at"`
}

// Store uploads the transcript under transcripts/{youtubeID}.json,
// overwriting any previous archive for the same video.
func (c *Client) Store(ctx context.Context, youtubeID string, transcript *models.Transcript) error {
	data := archivedTranscript{
		YouTubeID:       youtubeID,
		Content:         transcript.Content,
		Enhanced:        transcript.Enhanced,
		Summary:         transcript.Summary,
		Language:        transcript.Language,
		IsAutoGenerated: transcript.IsAutoGenerated,
		WordCount:       transcript.WordCount,
		ArchivedAt:      time.Now(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %v", err)
	}

	key := fmt.Sprintf("transcripts/%s.json", youtubeID)
	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(jsonData),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to store transcript: %v", err)
	}

	return nil
}

// Fetch retrieves an archived transcript, mainly for operational tooling.
func (c *Client) Fetch(ctx context.Context, youtubeID string) (*models.Transcript, error) {
	key := fmt.Sprintf("transcripts/%s.json", youtubeID)
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %v", err)
	}
	defer result.Body.Close()

	var data archivedTranscript
	if err := json.NewDecoder(result.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %v", err)
	}

	return &models.Transcript{
		Content:         data.Content,
		Enhanced:        data.Enhanced,
		Summary:         data.Summary,
		Language:        data.Language,
		IsAutoGenerated: data.IsAutoGenerated,
		WordCount:       data.WordCount,
	}, nil
}
