package awsssm

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/grezar/secretreplace/roles"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	awsDefaultRegion  = "us-east-1"
	sessionNamePrefix = "Assumed_"
)

// Resolver picks the credentials for a parameter path and returns an SSM
// client bound to them.
type Resolver struct {
	Table  roles.Table
	Region string

	// Config, STSClient and NewParameterClient replace the SDK defaults
	// when set.
	Config             *aws.Config
	STSClient          AssumeRoleAPI
	NewParameterClient func(cfg aws.Config) ParameterAPI
}

func (r *Resolver) Resolve(ctx context.Context, path string, env roles.Environment) (ParameterAPI, error) {
	mapping, err := r.Table.Lookup(env)
	if err != nil {
		return nil, err
	}
	duration, err := mapping.Duration()
	if err != nil {
		return nil, errors.Wrapf(err, "environment %q: invalid session duration", string(env))
	}

	cfg, err := r.buildConfig(ctx)
	if err != nil {
		return nil, err
	}

	if !mapping.AssumesRole() {
		log.WithField("env", string(env)).Debug("using ambient credentials")
		return r.parameterClient(cfg), nil
	}

	label := roles.Label(path)
	if label == "" {
		label = string(env)
	}

	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(mapping.AssumedRoleArn),
		RoleSessionName: aws.String(sessionNamePrefix + label),
	}
	if mapping.ExternalID != "" {
		input.ExternalId = aws.String(mapping.ExternalID)
	}
	if duration > 0 {
		input.DurationSeconds = aws.Int32(int32(duration.Seconds()))
	}

	log.WithFields(log.Fields{
		"env":     string(env),
		"role":    mapping.AssumedRoleArn,
		"session": aws.ToString(input.RoleSessionName),
	}).Debug("assuming role")

	output, err := AssumeRole(ctx, r.stsClient(cfg), input)
	if err != nil {
		return nil, &RemoteError{Path: path, Err: err}
	}
	if output.Credentials == nil {
		return nil, &RemoteError{Path: path, Err: errors.Errorf("AssumeRole for %s returned no credentials", mapping.AssumedRoleArn)}
	}

	cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		aws.ToString(output.Credentials.AccessKeyId),
		aws.ToString(output.Credentials.SecretAccessKey),
		aws.ToString(output.Credentials.SessionToken),
	))
	return r.parameterClient(cfg), nil
}

func (r *Resolver) buildConfig(ctx context.Context) (aws.Config, error) {
	if r.Config != nil {
		return r.Config.Copy(), nil
	}
	var optFns []func(*config.LoadOptions) error
	if r.Region != "" {
		optFns = append(optFns, config.WithRegion(r.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "failed to load AWS config")
	}
	if cfg.Region == "" {
		cfg.Region = awsDefaultRegion
	}
	return cfg, nil
}

func (r *Resolver) stsClient(cfg aws.Config) AssumeRoleAPI {
	if r.STSClient != nil {
		return r.STSClient
	}
	return sts.NewFromConfig(cfg)
}

func (r *Resolver) parameterClient(cfg aws.Config) ParameterAPI {
	if r.NewParameterClient != nil {
		return r.NewParameterClient(cfg)
	}
	return ssm.NewFromConfig(cfg)
}
