// Package cloud wraps the AWS SDK clients used for the cross-account trust
// exchange and for browsing resources through an assumed role.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/edvin/s3gate/internal/core"
	"github.com/edvin/s3gate/internal/model"
)

// Sessions are fixed at one hour. Credentials live at most for one request
// on our side; the duration only bounds the presigned-URL and browse window.
const sessionDurationSeconds = 3600

// STSAPI is the subset of the STS client used for role assumption.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

var _ STSAPI = (*sts.Client)(nil)

// RoleAssumer exchanges a role ARN plus the stored External ID for
// short-lived credentials. The base credentials come from the process-wide
// aws.Config loaded once at startup; they are never persisted or logged.
type RoleAssumer struct {
	api         STSAPI
	sessionName string
	logger      zerolog.Logger
}

func NewRoleAssumer(cfg aws.Config, serviceName string, logger zerolog.Logger) *RoleAssumer {
	return &RoleAssumer{
		api:         sts.NewFromConfig(cfg),
		sessionName: serviceName,
		logger:      logger.With().Str("component", "role-assumer").Logger(),
	}
}

func (a *RoleAssumer) AssumeRole(ctx context.Context, roleArn, externalID string) (model.Credentials, error) {
	out, err := a.api.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleArn),
		RoleSessionName: aws.String(fmt.Sprintf("%s-%d", a.sessionName, time.Now().Unix())),
		ExternalId:      aws.String(externalID),
		DurationSeconds: aws.Int32(sessionDurationSeconds),
	})
	if err != nil {
		a.logger.Warn().Str("role_arn", roleArn).Msg("assume role rejected")
		return model.Credentials{}, &core.RoleAssumptionError{Reason: providerReason(err)}
	}
	if out.Credentials == nil {
		return model.Credentials{}, &core.RoleAssumptionError{Reason: "STS returned no credentials"}
	}

	return model.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Expiration:      aws.ToTime(out.Credentials.Expiration),
	}, nil
}

// providerReason extracts the provider's diagnostic text for display to the
// client. Only the API error code and message pass through; credentials are
// never part of either.
func providerReason(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err.Error()
}
