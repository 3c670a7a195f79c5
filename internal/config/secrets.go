package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMAPI defines the Parameter Store operations required to resolve secrets.
type SSMAPI interface {
	GetParameter(
		ctx context.Context,
		params *ssm.GetParameterInput,
		optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSecrets fetches the CGI password from Parameter Store when it is configured by
// reference. A password set directly in the environment takes precedence.
func (c *Config) ResolveSecrets(ctx context.Context, client SSMAPI) error {
	if c.ClipTarget != TargetCGI || c.CGIPassword != "" || c.CGIPasswordParam == "" {
		return nil
	}

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(c.CGIPasswordParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("cannot get parameter %q: %w", c.CGIPasswordParam, err)
	}

	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return fmt.Errorf("%w: parameter %q is empty", ErrMissingSecret, c.CGIPasswordParam)
	}

	c.CGIPassword = aws.ToString(out.Parameter.Value)
	return nil
}
