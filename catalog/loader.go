package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"achievement-engine/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk (and in-bucket) catalog document.
//
//	version: "2025.03"
//	achievements:
//	  - id: cv-first
//	    name: CV Creator
//	    category: cv
//	    points: 100
//	    rarity: common
//	    requirements:
//	      - {type: count, metric: cv_generated, value: 1, operator: gte}
type fileFormat struct {
	Version      string               `yaml:"version"`
	Achievements []models.Achievement `yaml:"achievements"`
}

// Parse decodes and validates a YAML catalog document. Entries without an id
// get one derived from their name.
func Parse(data []byte) (*Catalog, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("decode catalog: version is required")
	}

	for i := range doc.Achievements {
		a := &doc.Achievements[i]
		if a.ID == "" && a.Name != "" {
			a.ID = slug.Make(a.Name)
		}
		if a.Rarity == "" {
			a.Rarity = models.RarityCommon
		}
		for j := range a.Requirements {
			if a.Requirements[j].Operator == "" {
				a.Requirements[j].Operator = models.OpGTE
			}
		}
	}

	return New(doc.Version, doc.Achievements)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// ObjectGetter is the part of *s3.Client the bucket loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadObject reads a YAML catalog from an S3-compatible bucket (R2 in production).
func LoadObject(ctx context.Context, client ObjectGetter, bucket, key string) (*Catalog, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch catalog s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog s3://%s/%s: %w", bucket, key, err)
	}
	return Parse(data)
}

// Encode renders a catalog in the file format Parse accepts.
func Encode(c *Catalog) ([]byte, error) {
	return yaml.Marshal(fileFormat{Version: c.Version(), Achievements: c.All()})
}
