package config

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// LoadAWS resolves AWS credentials from the default chain for the given region.
func LoadAWS(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// OverlaySSM copies every parameter under prefix into c, keyed by the last path
// element (/blog/prod/SECRET_KEY -> SECRET_KEY). Existing keys are overwritten.
// It returns the number of parameters applied.
func OverlaySSM(ctx context.Context, c map[string]string, client ssm.GetParametersByPathAPIClient, prefix string) (int, error) {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	applied := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return applied, fmt.Errorf("read ssm parameters under %s: %w", prefix, err)
		}
		for _, p := range page.Parameters {
			key := path.Base(aws.ToString(p.Name))
			if key == "" || key == "/" || key == "." {
				continue
			}
			c[key] = aws.ToString(p.Value)
			applied++
		}
	}
	return applied, nil
}
