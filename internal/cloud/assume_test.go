package cloud

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/s3gate/internal/core"
)

type fakeSTS struct {
	input *sts.AssumeRoleInput
	out   *sts.AssumeRoleOutput
	err   error
}

func (f *fakeSTS) AssumeRole(_ context.Context, params *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func testAssumer(api STSAPI) *RoleAssumer {
	return &RoleAssumer{api: api, sessionName: "s3gate", logger: zerolog.Nop()}
}

func TestAssumeRole_RequestShape(t *testing.T) {
	expiry := time.Now().Add(time.Hour).UTC()
	api := &fakeSTS{out: &sts.AssumeRoleOutput{
		Credentials: &types.Credentials{
			AccessKeyId:     aws.String("ASIAEXAMPLE"),
			SecretAccessKey: aws.String("secret"),
			SessionToken:    aws.String("token"),
			Expiration:      &expiry,
		},
	}}

	creds, err := testAssumer(api).AssumeRole(context.Background(),
		"arn:aws:iam::123456789012:role/Demo", "ext-abc123")
	require.NoError(t, err)

	require.NotNil(t, api.input)
	assert.Equal(t, "arn:aws:iam::123456789012:role/Demo", aws.ToString(api.input.RoleArn))
	assert.Equal(t, "ext-abc123", aws.ToString(api.input.ExternalId))
	assert.EqualValues(t, 3600, aws.ToInt32(api.input.DurationSeconds))
	assert.Contains(t, aws.ToString(api.input.RoleSessionName), "s3gate-")

	assert.Equal(t, "ASIAEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "token", creds.SessionToken)
	assert.Equal(t, expiry, creds.Expiration)
}

func TestAssumeRole_ProviderErrorPassesDiagnosticThrough(t *testing.T) {
	api := &fakeSTS{err: &smithy.GenericAPIError{
		Code:    "AccessDenied",
		Message: "User is not authorized to perform: sts:AssumeRole",
	}}

	_, err := testAssumer(api).AssumeRole(context.Background(),
		"arn:aws:iam::123456789012:role/Demo", "ext-abc123")

	var assumeErr *core.RoleAssumptionError
	require.ErrorAs(t, err, &assumeErr)
	assert.Contains(t, assumeErr.Reason, "AccessDenied")
	assert.Contains(t, assumeErr.Reason, "not authorized")
}

func TestAssumeRole_EmptyCredentials(t *testing.T) {
	api := &fakeSTS{out: &sts.AssumeRoleOutput{}}

	_, err := testAssumer(api).AssumeRole(context.Background(),
		"arn:aws:iam::123456789012:role/Demo", "ext-abc123")

	var assumeErr *core.RoleAssumptionError
	require.ErrorAs(t, err, &assumeErr)
}
