package awsssm

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
	"github.com/grezar/secretreplace/roles"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

const (
	errCodeParameterNotFound = "ParameterNotFound"

	// DefaultRate keeps sequential lookups well under the GetParameter
	// throttle of the standard parameter tier.
	DefaultRate = 10
)

type ClientResolver interface {
	Resolve(ctx context.Context, path string, env roles.Environment) (ParameterAPI, error)
}

// Fetcher reads decrypted values from the parameter store.
type Fetcher struct {
	Resolver ClientResolver
	Limiter  ratelimit.Limiter
}

// NewFetcher returns a Fetcher allowing at most rate requests per second.
// A rate of zero or less disables pacing.
func NewFetcher(resolver ClientResolver, rate int) *Fetcher {
	var limiter ratelimit.Limiter
	if rate > 0 {
		limiter = ratelimit.New(rate)
	} else {
		limiter = ratelimit.NewUnlimited()
	}
	return &Fetcher{
		Resolver: resolver,
		Limiter:  limiter,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, path string, env roles.Environment) (string, error) {
	client, err := f.Resolver.Resolve(ctx, path, env)
	if err != nil {
		return "", err
	}

	if f.Limiter != nil {
		f.Limiter.Take()
	}

	log.WithFields(log.Fields{"path": path, "env": string(env)}).Debug("fetching parameter")
	output, err := GetParameter(ctx, client, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeParameterNotFound {
			return "", &NotFoundError{Path: path}
		}
		return "", &RemoteError{Path: path, Err: err}
	}
	if output.Parameter == nil {
		return "", &NotFoundError{Path: path}
	}

	return aws.ToString(output.Parameter.Value), nil
}
