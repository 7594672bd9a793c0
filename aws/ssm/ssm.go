package ssm

import (
	"context"
	"strings"

	"github.com/Invicton-Labs/go-powerix/aws/credentials"
	"github.com/Invicton-Labs/go-powerix/gensync"
	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const resourcePrefix = "parameter/"

var ssmClients gensync.Map[string, *ssm.Client]

// getSsmClient returns a client for region, or for the configured region
// if region is empty.
func getSsmClient(ctx context.Context, region string) (*ssm.Client, stackerr.Error) {
	cfg, err := credentials.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	regionCfg := cfg.Copy()
	if region != "" {
		regionCfg.Region = region
	}
	if client, ok := ssmClients.Load(regionCfg.Region); ok {
		return client, nil
	}
	client, _ := ssmClients.LoadOrStore(regionCfg.Region, ssm.NewFromConfig(regionCfg, func(o *ssm.Options) {
		o.Logger = log.GetAwsLogger()
	}))
	return client, nil
}

// IsParameterArn reports whether location is an SSM parameter ARN.
func IsParameterArn(location string) bool {
	if !strings.HasPrefix(location, "arn:") {
		return false
	}
	a, err := arn.Parse(location)
	return err == nil && a.Service == "ssm"
}

// ParseParameterArn returns the parameter name and region of an ARN such as
// arn:aws:ssm:us-east-1:123456789012:parameter/powerix/config. The name
// keeps its leading slash, as hierarchical parameter names have one.
func ParseParameterArn(parameterArn string) (name string, region string, err stackerr.Error) {
	a, cerr := arn.Parse(parameterArn)
	if cerr != nil {
		return "", "", stackerr.Wrap(cerr)
	}
	if a.Service != "ssm" || !strings.HasPrefix(strings.ToLower(a.Resource), resourcePrefix) {
		return "", "", stackerr.Errorf("SSM parameter ARN resource does not begin with 'parameter/': %s", parameterArn)
	}
	name = a.Resource[len(resourcePrefix)-1:]
	if name == "/" {
		return "", "", stackerr.Errorf("SSM parameter ARN has no parameter name: %s", parameterArn)
	}
	return name, a.Region, nil
}

// GetSsmParameter returns the decrypted value of a parameter, given either
// its name or its ARN.
func GetSsmParameter(ctx context.Context, parameter string) (string, stackerr.Error) {
	name, region := parameter, ""
	if IsParameterArn(parameter) {
		var err stackerr.Error
		if name, region, err = ParseParameterArn(parameter); err != nil {
			return "", err
		}
	}

	client, err := getSsmClient(ctx, region)
	if err != nil {
		return "", err
	}
	param, cerr := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if cerr != nil {
		return "", stackerr.Wrap(cerr)
	}
	return aws.ToString(param.Parameter.Value), nil
}
