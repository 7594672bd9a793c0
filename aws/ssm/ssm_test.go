package ssm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameterArn(t *testing.T) {
	name, region, err := ParseParameterArn("arn:aws:ssm:eu-west-1:123456789012:parameter/powerix/config")
	require.NoError(t, err)
	assert.Equal(t, "/powerix/config", name)
	assert.Equal(t, "eu-west-1", region)

	for _, bad := range []string{
		"powerix/config",
		"arn:aws:ssm:eu-west-1:123456789012:document/powerix",
		"arn:aws:ssm:eu-west-1:123456789012:parameter/",
		"arn:aws:s3:::bucket/parameter/x",
	} {
		_, _, err := ParseParameterArn(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsParameterArn(t *testing.T) {
	assert.True(t, IsParameterArn("arn:aws:ssm:eu-west-1:123456789012:parameter/powerix"))
	assert.False(t, IsParameterArn("arn:aws:s3:::bucket/key.yaml"))
	assert.False(t, IsParameterArn("/powerix/config"))
}
