package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Provider credential fields understood by the AWS client factory.
const (
	authAccessKeyID     = "access_key_id"
	authSecretAccessKey = "secret_access_key"
	authSessionToken    = "session_token"
	authRoleARN         = "role_arn"
	authExternalID      = "external_id"

	defaultAWSRegion  = "us-east-1"
	assumeRoleSession = "envsecrets-dynamic-secrets"
)

// IAMAPI is the subset of the IAM client used by the adapter.
type IAMAPI interface {
	CreateUser(ctx context.Context, params *iam.CreateUserInput, optFns ...func(*iam.Options)) (*iam.CreateUserOutput, error)
	DeleteUser(ctx context.Context, params *iam.DeleteUserInput, optFns ...func(*iam.Options)) (*iam.DeleteUserOutput, error)

	AttachUserPolicy(ctx context.Context, params *iam.AttachUserPolicyInput, optFns ...func(*iam.Options)) (*iam.AttachUserPolicyOutput, error)
	DetachUserPolicy(ctx context.Context, params *iam.DetachUserPolicyInput, optFns ...func(*iam.Options)) (*iam.DetachUserPolicyOutput, error)
	ListAttachedUserPolicies(ctx context.Context, params *iam.ListAttachedUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedUserPoliciesOutput, error)

	PutUserPolicy(ctx context.Context, params *iam.PutUserPolicyInput, optFns ...func(*iam.Options)) (*iam.PutUserPolicyOutput, error)
	DeleteUserPolicy(ctx context.Context, params *iam.DeleteUserPolicyInput, optFns ...func(*iam.Options)) (*iam.DeleteUserPolicyOutput, error)
	ListUserPolicies(ctx context.Context, params *iam.ListUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListUserPoliciesOutput, error)

	AddUserToGroup(ctx context.Context, params *iam.AddUserToGroupInput, optFns ...func(*iam.Options)) (*iam.AddUserToGroupOutput, error)
	RemoveUserFromGroup(ctx context.Context, params *iam.RemoveUserFromGroupInput, optFns ...func(*iam.Options)) (*iam.RemoveUserFromGroupOutput, error)
	ListGroupsForUser(ctx context.Context, params *iam.ListGroupsForUserInput, optFns ...func(*iam.Options)) (*iam.ListGroupsForUserOutput, error)

	CreateAccessKey(ctx context.Context, params *iam.CreateAccessKeyInput, optFns ...func(*iam.Options)) (*iam.CreateAccessKeyOutput, error)
	DeleteAccessKey(ctx context.Context, params *iam.DeleteAccessKeyInput, optFns ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error)
	ListAccessKeys(ctx context.Context, params *iam.ListAccessKeysInput, optFns ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error)
}

// IAMClientFactory builds an IAM client for a region from decrypted provider
// credentials.
type IAMClientFactory func(ctx context.Context, region string, auth map[string]string) (IAMAPI, error)

// NewIAMClient authenticates with static access keys, or assumes role_arn when
// present. Without either the default credential chain is used.
func NewIAMClient(ctx context.Context, region string, auth map[string]string) (IAMAPI, error) {
	if region == "" {
		region = defaultAWSRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if auth[authAccessKeyID] != "" || auth[authSecretAccessKey] != "" {
		if auth[authAccessKeyID] == "" || auth[authSecretAccessKey] == "" {
			return nil, fmt.Errorf("aws credentials require both %s and %s", authAccessKeyID, authSecretAccessKey)
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				auth[authAccessKeyID],
				auth[authSecretAccessKey],
				auth[authSessionToken],
			),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	if roleARN := auth[authRoleARN]; roleARN != "" {
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), roleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = assumeRoleSession
				if externalID := auth[authExternalID]; externalID != "" {
					o.ExternalID = aws.String(externalID)
				}
			},
		)
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return iam.NewFromConfig(cfg), nil
}
