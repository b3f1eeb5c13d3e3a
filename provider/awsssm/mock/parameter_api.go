package mock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// MockGetParameter is a type that represents a function that mock SSM's GetParameter.
type MockGetParameter func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)

// MockAssumeRole is a type that represents a function that mock STS's AssumeRole.
type MockAssumeRole func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)

// MockParameterAPI is a struct that represents an SSM client.
type MockParameterAPI struct {
	GetParameterAPI MockGetParameter
}

// GetParameter returns a function that mock original of SSM GetParameter.
func (m MockParameterAPI) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterAPI(ctx, params, optFns...)
}

// MockAssumeRoleAPI is a struct that represents an STS client.
type MockAssumeRoleAPI struct {
	AssumeRoleAPI MockAssumeRole
}

// AssumeRole returns a function that mock original of STS AssumeRole.
func (m MockAssumeRoleAPI) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	return m.AssumeRoleAPI(ctx, params, optFns...)
}
