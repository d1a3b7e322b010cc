package objectstore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/gtfs-rt-rater/server/pkg/logger"
)

// LoadAWSConfig resolves credentials and region from the standard AWS chain
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

// NewS3Client builds the S3 client used by Store
func NewS3Client(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg)
}

// CallerIdentityAPI is the part of *sts.Client the checker uses
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// STSChecker probes whether usable AWS credentials are available
type STSChecker struct {
	api    CallerIdentityAPI
	logger *logger.Logger
}

// NewSTSChecker creates a checker over api
func NewSTSChecker(api CallerIdentityAPI, log *logger.Logger) *STSChecker {
	return &STSChecker{api: api, logger: log.WithComponent("sts")}
}

// Check calls GetCallerIdentity. Missing credentials, access denied and any
// other failure all mean "no usable credentials".
func (c *STSChecker) Check(ctx context.Context) bool {
	out, err := c.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		c.logger.WithError(err).Warn("AWS credential check failed")
		return false
	}

	c.logger.WithField("arn", aws.ToString(out.Arn)).Debug("AWS credentials available")
	return true
}
