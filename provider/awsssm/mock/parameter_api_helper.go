package mock

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
)

// NewMockGetParameterAPI answers from values and reports ParameterNotFound
// for any other name.
func NewMockGetParameterAPI(values map[string]string) MockGetParameter {
	return MockGetParameter(func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
		name := aws.ToString(params.Name)
		v, ok := values[name]
		if !ok {
			return nil, &ssmtypes.ParameterNotFound{Message: aws.String("parameter " + name + " not found")}
		}
		return &ssm.GetParameterOutput{
			Parameter: &ssmtypes.Parameter{
				Name:  aws.String(name),
				Type:  ssmtypes.ParameterTypeSecureString,
				Value: aws.String(v),
			},
		}, nil
	})
}

func NewMockAssumeRoleAPI() MockAssumeRole {
	return MockAssumeRole(func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
		return &sts.AssumeRoleOutput{
			Credentials: &ststypes.Credentials{
				AccessKeyId:     aws.String("ASIAAAAAAAAAAAAA"),
				SecretAccessKey: aws.String("BBBBBBBBBBBB"),
				SessionToken:    aws.String("CCCCCCCCCCCC"),
				Expiration:      aws.Time(time.Now().Add(time.Hour)),
			},
		}, nil
	})
}
