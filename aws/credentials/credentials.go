package credentials

import (
	"context"

	"github.com/Invicton-Labs/go-powerix/gensync"
	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// DefaultRegion is used when the environment does not name one.
const DefaultRegion = "us-east-1"

var commonCfg *aws.Config
var configOnce gensync.Once

// GetConfig loads the shared AWS configuration from the environment the
// first time it is called, and returns the same configuration afterwards.
// A failed load is retried on the next call.
func GetConfig(ctx context.Context) (*aws.Config, stackerr.Error) {
	if err := configOnce.Do(func() stackerr.Error {
		newCfg, err := config.LoadDefaultConfig(ctx, config.WithLogger(log.GetAwsLogger()))
		if err != nil {
			return stackerr.Wrap(err)
		}
		if newCfg.Region == "" {
			newCfg.Region = DefaultRegion
		}
		commonCfg = &newCfg
		return nil
	}); err != nil {
		return nil, err
	}
	return commonCfg, nil
}
