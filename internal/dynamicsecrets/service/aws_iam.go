package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/time/rate"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
)

// Credential field ids produced by the AWS IAM adapter.
const (
	FieldUsername        = "username"
	FieldAccessKeyID     = "access_key_id"
	FieldSecretAccessKey = "secret_access_key"

	inlinePolicyName = "envsecrets-inline"
	awsIAMSchemaURL  = "envsecrets://providers/aws-iam.json"
)

const awsIAMConfigSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "username_template": {"type": "string", "minLength": 1, "maxLength": 64},
    "iam_path": {"type": "string", "pattern": "^/([\\x21-\\x7E]*/)?$", "maxLength": 512},
    "permission_boundary_arn": {"type": "string", "pattern": "^arn:aws[a-z-]*:iam::"},
    "groups": {
      "type": "array",
      "uniqueItems": true,
      "items": {"type": "string", "minLength": 1, "maxLength": 128}
    },
    "policy_arns": {
      "type": "array",
      "uniqueItems": true,
      "items": {"type": "string", "pattern": "^arn:aws[a-z-]*:iam::"}
    },
    "policy_document": {"type": ["string", "object"]},
    "region": {"type": "string", "minLength": 1}
  }
}`

type awsIAMConfig struct {
	UsernameTemplate      string          `json:"username_template"`
	IAMPath               string          `json:"iam_path"`
	PermissionBoundaryARN string          `json:"permission_boundary_arn"`
	Groups                []string        `json:"groups"`
	PolicyARNs            []string        `json:"policy_arns"`
	PolicyDocument        json.RawMessage `json:"policy_document"`
	Region                string          `json:"region"`
}

// inlinePolicy returns the policy document as a JSON string. The config may
// carry it either as an object or as an already encoded string.
func (c *awsIAMConfig) inlinePolicy() (string, error) {
	raw := bytes.TrimSpace(c.PolicyDocument)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var doc string
		if err := json.Unmarshal(raw, &doc); err != nil {
			return "", err
		}
		return doc, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stepLog records every provider sub-step for lease event metadata.
type stepLog struct {
	username string
	steps    []map[string]any
}

func (l *stepLog) record(step string, err error, attrs ...any) {
	entry := map[string]any{"step": step, "status": "ok"}
	if err != nil {
		entry["status"] = "failed"
		entry["error"] = err.Error()
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		if key, ok := attrs[i].(string); ok {
			entry[key] = attrs[i+1]
		}
	}
	l.steps = append(l.steps, entry)
}

func (l *stepLog) metadata() map[string]any {
	steps := make([]map[string]any, len(l.steps))
	copy(steps, l.steps)
	return map[string]any{"username": l.username, "steps": steps}
}

// AWSIAMProviderAdapter leases temporary IAM users with a single access key.
type AWSIAMProviderAdapter struct {
	clientFactory IAMClientFactory
	limiter       *rate.Limiter
	schema        *jsonschema.Schema
	logger        *slog.Logger
}

func (a *AWSIAMProviderAdapter) Provider() dynamicDomain.Provider {
	return dynamicDomain.ProviderAWSIAM
}

func (a *AWSIAMProviderAdapter) CredentialFields() []string {
	return []string{FieldUsername, FieldAccessKeyID, FieldSecretAccessKey}
}

func (a *AWSIAMProviderAdapter) ValidateConfig(config json.RawMessage) error {
	if err := validateAgainst(a.schema, config); err != nil {
		return err
	}
	cfg, err := parseIAMConfig(config)
	if err != nil {
		return err
	}
	if _, err := cfg.inlinePolicy(); err != nil {
		return fmt.Errorf("%w: policy_document: %v", dynamicDomain.ErrInvalidProviderConfig, err)
	}
	return nil
}

// Provision creates the IAM user, grants its policies and groups, and issues
// an access key. Any failure tears the user down before returning a
// ProviderError.
func (a *AWSIAMProviderAdapter) Provision(
	ctx context.Context,
	req *dynamicDomain.ProvisionRequest,
) (*dynamicDomain.ProvisionResult, error) {
	cfg, err := parseIAMConfig(req.Config)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.inlinePolicy()
	if err != nil {
		return nil, fmt.Errorf("%w: policy_document: %v", dynamicDomain.ErrInvalidProviderConfig, err)
	}

	log := &stepLog{}
	username, err := renderUsername(cfg.UsernameTemplate)
	if err != nil {
		return nil, &dynamicDomain.ProviderError{Op: "provision", Meta: log.metadata(), Err: err}
	}
	log.username = username

	client, err := a.clientFactory(ctx, cfg.Region, req.Auth)
	if err != nil {
		log.record("authenticate", err)
		return nil, &dynamicDomain.ProviderError{Op: "provision", Meta: log.metadata(), Err: err}
	}

	createInput := &iam.CreateUserInput{
		UserName: aws.String(username),
		Tags: []types.Tag{
			{Key: aws.String("created-at"), Value: aws.String(req.CreatedAt.UTC().Format(time.RFC3339))},
			{Key: aws.String("expires-at"), Value: aws.String(req.ExpiresAt.UTC().Format(time.RFC3339))},
			{Key: aws.String("ttl"), Value: aws.String(strconv.FormatInt(int64(req.TTL.Seconds()), 10))},
			{Key: aws.String("lease-id"), Value: aws.String(req.LeaseID.String())},
		},
	}
	if cfg.IAMPath != "" {
		createInput.Path = aws.String(cfg.IAMPath)
	}
	if cfg.PermissionBoundaryARN != "" {
		createInput.PermissionsBoundary = aws.String(cfg.PermissionBoundaryARN)
	}
	if err := a.call(ctx, func() error {
		_, err := client.CreateUser(ctx, createInput)
		return err
	}); err != nil {
		// Nothing was created and the name may belong to another lease.
		log.record("create_user", err)
		return nil, &dynamicDomain.ProviderError{Op: "provision", Meta: log.metadata(), Err: err}
	}
	log.record("create_user", nil)

	fail := func(step string, stepErr error) (*dynamicDomain.ProvisionResult, error) {
		log.record(step, stepErr)
		cleanupMeta, cleanupErr := a.removeUser(ctx, client, username)
		meta := log.metadata()
		meta["cleanup"] = cleanupMeta
		if cleanupErr != nil {
			a.logger.Error("failed to clean up iam user after provisioning error",
				slog.String("username", username),
				slog.Any("error", cleanupErr),
			)
			meta["cleanup_error"] = cleanupErr.Error()
		}
		return nil, &dynamicDomain.ProviderError{Op: "provision", Meta: meta, Err: stepErr}
	}

	for _, arn := range cfg.PolicyARNs {
		err := a.call(ctx, func() error {
			_, err := client.AttachUserPolicy(ctx, &iam.AttachUserPolicyInput{
				UserName:  aws.String(username),
				PolicyArn: aws.String(arn),
			})
			return err
		})
		if err != nil {
			return fail("attach_user_policy", err)
		}
		log.record("attach_user_policy", nil, "policy_arn", arn)
	}

	if policy != "" {
		err := a.call(ctx, func() error {
			_, err := client.PutUserPolicy(ctx, &iam.PutUserPolicyInput{
				UserName:       aws.String(username),
				PolicyName:     aws.String(inlinePolicyName),
				PolicyDocument: aws.String(policy),
			})
			return err
		})
		if err != nil {
			return fail("put_user_policy", err)
		}
		log.record("put_user_policy", nil, "policy_name", inlinePolicyName)
	}

	for _, group := range cfg.Groups {
		err := a.call(ctx, func() error {
			_, err := client.AddUserToGroup(ctx, &iam.AddUserToGroupInput{
				UserName:  aws.String(username),
				GroupName: aws.String(group),
			})
			return err
		})
		if err != nil {
			return fail("add_user_to_group", err)
		}
		log.record("add_user_to_group", nil, "group", group)
	}

	var keyOut *iam.CreateAccessKeyOutput
	err = a.call(ctx, func() (err error) {
		keyOut, err = client.CreateAccessKey(ctx, &iam.CreateAccessKeyInput{UserName: aws.String(username)})
		return err
	})
	if err != nil {
		return fail("create_access_key", err)
	}
	if keyOut.AccessKey == nil {
		return fail("create_access_key", errors.New("iam returned no access key"))
	}
	accessKeyID := aws.ToString(keyOut.AccessKey.AccessKeyId)
	log.record("create_access_key", nil, "access_key_id", accessKeyID)

	return &dynamicDomain.ProvisionResult{
		Handle: username,
		Credentials: map[string]string{
			FieldUsername:        username,
			FieldAccessKeyID:     accessKeyID,
			FieldSecretAccessKey: aws.ToString(keyOut.AccessKey.SecretAccessKey),
		},
		Metadata: log.metadata(),
	}, nil
}

// Teardown deletes the IAM user named by the lease handle.
func (a *AWSIAMProviderAdapter) Teardown(
	ctx context.Context,
	req *dynamicDomain.TeardownRequest,
) (map[string]any, error) {
	return a.teardown(ctx, "teardown", req)
}

// Cleanup deletes a user whose lease was never persisted.
func (a *AWSIAMProviderAdapter) Cleanup(
	ctx context.Context,
	req *dynamicDomain.TeardownRequest,
) (map[string]any, error) {
	return a.teardown(ctx, "cleanup", req)
}

func (a *AWSIAMProviderAdapter) teardown(
	ctx context.Context,
	op string,
	req *dynamicDomain.TeardownRequest,
) (map[string]any, error) {
	if req.Handle == "" {
		return map[string]any{}, nil
	}

	cfg, err := parseIAMConfig(req.Config)
	if err != nil {
		return nil, err
	}

	client, err := a.clientFactory(ctx, cfg.Region, req.Auth)
	if err != nil {
		return nil, &dynamicDomain.ProviderError{
			Op:   op,
			Meta: map[string]any{"username": req.Handle},
			Err:  err,
		}
	}

	meta, err := a.removeUser(ctx, client, req.Handle)
	if err != nil {
		return meta, &dynamicDomain.ProviderError{Op: op, Meta: meta, Err: err}
	}
	return meta, nil
}

// removeUser deletes access keys, detaches managed policies, deletes inline
// policies, leaves groups and finally deletes the user. Missing entities
// count as already removed; other failures are collected and the remaining
// steps still run.
func (a *AWSIAMProviderAdapter) removeUser(
	ctx context.Context,
	client IAMAPI,
	username string,
) (map[string]any, error) {
	log := &stepLog{username: username}
	user := aws.String(username)
	var errs []error

	step := func(name string, err error, attrs ...any) {
		if isNoSuchEntity(err) {
			log.record(name, nil, append(attrs, "missing", true)...)
			return
		}
		log.record(name, err, attrs...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	keys := iam.NewListAccessKeysPaginator(client, &iam.ListAccessKeysInput{UserName: user})
	for keys.HasMorePages() {
		var page *iam.ListAccessKeysOutput
		if err := a.call(ctx, func() (err error) { page, err = keys.NextPage(ctx); return err }); err != nil {
			step("list_access_keys", err)
			break
		}
		for _, key := range page.AccessKeyMetadata {
			err := a.call(ctx, func() error {
				_, err := client.DeleteAccessKey(ctx, &iam.DeleteAccessKeyInput{UserName: user, AccessKeyId: key.AccessKeyId})
				return err
			})
			step("delete_access_key", err, "access_key_id", aws.ToString(key.AccessKeyId))
		}
	}

	attached := iam.NewListAttachedUserPoliciesPaginator(client, &iam.ListAttachedUserPoliciesInput{UserName: user})
	for attached.HasMorePages() {
		var page *iam.ListAttachedUserPoliciesOutput
		if err := a.call(ctx, func() (err error) { page, err = attached.NextPage(ctx); return err }); err != nil {
			step("list_attached_user_policies", err)
			break
		}
		for _, policy := range page.AttachedPolicies {
			err := a.call(ctx, func() error {
				_, err := client.DetachUserPolicy(ctx, &iam.DetachUserPolicyInput{UserName: user, PolicyArn: policy.PolicyArn})
				return err
			})
			step("detach_user_policy", err, "policy_arn", aws.ToString(policy.PolicyArn))
		}
	}

	inline := iam.NewListUserPoliciesPaginator(client, &iam.ListUserPoliciesInput{UserName: user})
	for inline.HasMorePages() {
		var page *iam.ListUserPoliciesOutput
		if err := a.call(ctx, func() (err error) { page, err = inline.NextPage(ctx); return err }); err != nil {
			step("list_user_policies", err)
			break
		}
		for _, name := range page.PolicyNames {
			err := a.call(ctx, func() error {
				_, err := client.DeleteUserPolicy(ctx, &iam.DeleteUserPolicyInput{UserName: user, PolicyName: aws.String(name)})
				return err
			})
			step("delete_user_policy", err, "policy_name", name)
		}
	}

	groups := iam.NewListGroupsForUserPaginator(client, &iam.ListGroupsForUserInput{UserName: user})
	for groups.HasMorePages() {
		var page *iam.ListGroupsForUserOutput
		if err := a.call(ctx, func() (err error) { page, err = groups.NextPage(ctx); return err }); err != nil {
			step("list_groups_for_user", err)
			break
		}
		for _, group := range page.Groups {
			err := a.call(ctx, func() error {
				_, err := client.RemoveUserFromGroup(ctx, &iam.RemoveUserFromGroupInput{UserName: user, GroupName: group.GroupName})
				return err
			})
			step("remove_user_from_group", err, "group", aws.ToString(group.GroupName))
		}
	}

	err := a.call(ctx, func() error {
		_, err := client.DeleteUser(ctx, &iam.DeleteUserInput{UserName: user})
		return err
	})
	step("delete_user", err)

	return log.metadata(), errors.Join(errs...)
}

// call waits for the IAM token bucket before invoking fn.
func (a *AWSIAMProviderAdapter) call(ctx context.Context, fn func() error) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	return fn()
}

func parseIAMConfig(raw json.RawMessage) (*awsIAMConfig, error) {
	cfg := &awsIAMConfig{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamicDomain.ErrInvalidProviderConfig, err)
	}
	return cfg, nil
}

func isNoSuchEntity(err error) bool {
	if err == nil {
		return false
	}
	var nse *types.NoSuchEntityException
	if errors.As(err, &nse) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchEntity"
}

// NewAWSIAMProviderAdapter creates the adapter. A nil clientFactory uses
// NewIAMClient. IAM calls share one token bucket of requestsPerSec and burst.
func NewAWSIAMProviderAdapter(
	clientFactory IAMClientFactory,
	requestsPerSec float64,
	burst int,
	logger *slog.Logger,
) (*AWSIAMProviderAdapter, error) {
	schema, err := compileSchema(awsIAMSchemaURL, awsIAMConfigSchema)
	if err != nil {
		return nil, err
	}
	if clientFactory == nil {
		clientFactory = NewIAMClient
	}
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSec)
	if requestsPerSec <= 0 {
		limit = rate.Inf
	}

	return &AWSIAMProviderAdapter{
		clientFactory: clientFactory,
		limiter:       rate.NewLimiter(limit, burst),
		schema:        schema,
		logger:        logger,
	}, nil
}
