package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

type fakeIAMUser struct {
	path     string
	boundary string
	tags     map[string]string
	keys     []string
	managed  []string
	inline   map[string]string
	groups   []string
}

// fakeIAM keeps users in memory and records every call in order.
type fakeIAM struct {
	mu     sync.Mutex
	users  map[string]*fakeIAMUser
	calls  []string
	failOn map[string]error
	keySeq int
}

func newFakeIAM() *fakeIAM {
	return &fakeIAM{users: map[string]*fakeIAMUser{}, failOn: map[string]error{}}
}

func (f *fakeIAM) begin(op string) error {
	f.calls = append(f.calls, op)
	return f.failOn[op]
}

func (f *fakeIAM) user(name *string) (*fakeIAMUser, error) {
	u, ok := f.users[aws.ToString(name)]
	if !ok {
		return nil, &types.NoSuchEntityException{Message: aws.String("user not found")}
	}
	return u, nil
}

func (f *fakeIAM) CreateUser(_ context.Context, in *iam.CreateUserInput, _ ...func(*iam.Options)) (*iam.CreateUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateUser"); err != nil {
		return nil, err
	}
	if _, exists := f.users[aws.ToString(in.UserName)]; exists {
		return nil, &types.EntityAlreadyExistsException{Message: aws.String("user already exists")}
	}
	u := &fakeIAMUser{
		path:     aws.ToString(in.Path),
		boundary: aws.ToString(in.PermissionsBoundary),
		tags:     map[string]string{},
		inline:   map[string]string{},
	}
	for _, tag := range in.Tags {
		u.tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	f.users[aws.ToString(in.UserName)] = u
	return &iam.CreateUserOutput{}, nil
}

func (f *fakeIAM) DeleteUser(_ context.Context, in *iam.DeleteUserInput, _ ...func(*iam.Options)) (*iam.DeleteUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DeleteUser"); err != nil {
		return nil, err
	}
	if _, err := f.user(in.UserName); err != nil {
		return nil, err
	}
	delete(f.users, aws.ToString(in.UserName))
	return &iam.DeleteUserOutput{}, nil
}

func (f *fakeIAM) AttachUserPolicy(_ context.Context, in *iam.AttachUserPolicyInput, _ ...func(*iam.Options)) (*iam.AttachUserPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("AttachUserPolicy"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	u.managed = append(u.managed, aws.ToString(in.PolicyArn))
	return &iam.AttachUserPolicyOutput{}, nil
}

func (f *fakeIAM) DetachUserPolicy(_ context.Context, in *iam.DetachUserPolicyInput, _ ...func(*iam.Options)) (*iam.DetachUserPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DetachUserPolicy"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	u.managed = remove(u.managed, aws.ToString(in.PolicyArn))
	return &iam.DetachUserPolicyOutput{}, nil
}

func (f *fakeIAM) ListAttachedUserPolicies(_ context.Context, in *iam.ListAttachedUserPoliciesInput, _ ...func(*iam.Options)) (*iam.ListAttachedUserPoliciesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListAttachedUserPolicies"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	out := &iam.ListAttachedUserPoliciesOutput{}
	for _, arn := range u.managed {
		out.AttachedPolicies = append(out.AttachedPolicies, types.AttachedPolicy{PolicyArn: aws.String(arn)})
	}
	return out, nil
}

func (f *fakeIAM) PutUserPolicy(_ context.Context, in *iam.PutUserPolicyInput, _ ...func(*iam.Options)) (*iam.PutUserPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("PutUserPolicy"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	u.inline[aws.ToString(in.PolicyName)] = aws.ToString(in.PolicyDocument)
	return &iam.PutUserPolicyOutput{}, nil
}

func (f *fakeIAM) DeleteUserPolicy(_ context.Context, in *iam.DeleteUserPolicyInput, _ ...func(*iam.Options)) (*iam.DeleteUserPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DeleteUserPolicy"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	delete(u.inline, aws.ToString(in.PolicyName))
	return &iam.DeleteUserPolicyOutput{}, nil
}

func (f *fakeIAM) ListUserPolicies(_ context.Context, in *iam.ListUserPoliciesInput, _ ...func(*iam.Options)) (*iam.ListUserPoliciesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListUserPolicies"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	out := &iam.ListUserPoliciesOutput{}
	for name := range u.inline {
		out.PolicyNames = append(out.PolicyNames, name)
	}
	return out, nil
}

func (f *fakeIAM) AddUserToGroup(_ context.Context, in *iam.AddUserToGroupInput, _ ...func(*iam.Options)) (*iam.AddUserToGroupOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("AddUserToGroup"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	u.groups = append(u.groups, aws.ToString(in.GroupName))
	return &iam.AddUserToGroupOutput{}, nil
}

func (f *fakeIAM) RemoveUserFromGroup(_ context.Context, in *iam.RemoveUserFromGroupInput, _ ...func(*iam.Options)) (*iam.RemoveUserFromGroupOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("RemoveUserFromGroup"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	u.groups = remove(u.groups, aws.ToString(in.GroupName))
	return &iam.RemoveUserFromGroupOutput{}, nil
}

func (f *fakeIAM) ListGroupsForUser(_ context.Context, in *iam.ListGroupsForUserInput, _ ...func(*iam.Options)) (*iam.ListGroupsForUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListGroupsForUser"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	out := &iam.ListGroupsForUserOutput{}
	for _, g := range u.groups {
		out.Groups = append(out.Groups, types.Group{GroupName: aws.String(g)})
	}
	return out, nil
}

func (f *fakeIAM) CreateAccessKey(_ context.Context, in *iam.CreateAccessKeyInput, _ ...func(*iam.Options)) (*iam.CreateAccessKeyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateAccessKey"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	f.keySeq++
	id := "AKIATEST" + strings.Repeat("0", f.keySeq)
	u.keys = append(u.keys, id)
	return &iam.CreateAccessKeyOutput{AccessKey: &types.AccessKey{
		AccessKeyId:     aws.String(id),
		SecretAccessKey: aws.String("secret-" + id),
		UserName:        in.UserName,
	}}, nil
}

func (f *fakeIAM) DeleteAccessKey(_ context.Context, in *iam.DeleteAccessKeyInput, _ ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DeleteAccessKey"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	u.keys = remove(u.keys, aws.ToString(in.AccessKeyId))
	return &iam.DeleteAccessKeyOutput{}, nil
}

func (f *fakeIAM) ListAccessKeys(_ context.Context, in *iam.ListAccessKeysInput, _ ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListAccessKeys"); err != nil {
		return nil, err
	}
	u, err := f.user(in.UserName)
	if err != nil {
		return nil, err
	}
	out := &iam.ListAccessKeysOutput{}
	for _, k := range u.keys {
		out.AccessKeyMetadata = append(out.AccessKeyMetadata, types.AccessKeyMetadata{AccessKeyId: aws.String(k)})
	}
	return out, nil
}

func remove(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}

func newTestAdapter(t *testing.T, client *fakeIAM) (*AWSIAMProviderAdapter, *map[string]string) {
	t.Helper()
	var gotAuth map[string]string
	factory := func(_ context.Context, _ string, auth map[string]string) (IAMAPI, error) {
		gotAuth = auth
		return client, nil
	}
	adapter, err := NewAWSIAMProviderAdapter(factory, 0, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return adapter, &gotAuth
}

func provisionRequest(config string) *dynamicDomain.ProvisionRequest {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &dynamicDomain.ProvisionRequest{
		LeaseID:   uuid.Must(uuid.NewV7()),
		Config:    json.RawMessage(config),
		Auth:      map[string]string{"access_key_id": "AKIA", "secret_access_key": "s3cr3t"},
		TTL:       time.Hour,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

const fullIAMConfig = `{
	"username_template": "ci-{{ random }}",
	"iam_path": "/leased/",
	"permission_boundary_arn": "arn:aws:iam::123456789012:policy/boundary",
	"groups": ["readers"],
	"policy_arns": ["arn:aws:iam::aws:policy/ReadOnlyAccess"],
	"policy_document": {"Version": "2012-10-17", "Statement": []}
}`

func TestAWSIAMProviderAdapter_Provision(t *testing.T) {
	t.Run("Success: creates user with policies, groups and key", func(t *testing.T) {
		client := newFakeIAM()
		adapter, gotAuth := newTestAdapter(t, client)
		req := provisionRequest(fullIAMConfig)

		result, err := adapter.Provision(context.Background(), req)

		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^ci-[a-zA-Z0-9]{6,18}$`), result.Handle)
		assert.Equal(t, result.Handle, result.Credentials[FieldUsername])
		assert.NotEmpty(t, result.Credentials[FieldAccessKeyID])
		assert.NotEmpty(t, result.Credentials[FieldSecretAccessKey])
		assert.Equal(t, "AKIA", (*gotAuth)["access_key_id"])
		assert.Equal(t, []string{
			"CreateUser", "AttachUserPolicy", "PutUserPolicy", "AddUserToGroup", "CreateAccessKey",
		}, client.calls)

		user := client.users[result.Handle]
		require.NotNil(t, user)
		assert.Equal(t, "/leased/", user.path)
		assert.Equal(t, "arn:aws:iam::123456789012:policy/boundary", user.boundary)
		assert.Equal(t, req.LeaseID.String(), user.tags["lease-id"])
		assert.Equal(t, "3600", user.tags["ttl"])
		assert.Equal(t, "2026-01-02T03:04:05Z", user.tags["created-at"])
		assert.Equal(t, "2026-01-02T04:04:05Z", user.tags["expires-at"])
		assert.Equal(t, `{"Version":"2012-10-17","Statement":[]}`, user.inline[inlinePolicyName])

		steps := result.Metadata["steps"].([]map[string]any)
		assert.Len(t, steps, 5)
	})

	t.Run("Success: default template and string policy document", func(t *testing.T) {
		client := newFakeIAM()
		adapter, _ := newTestAdapter(t, client)

		result, err := adapter.Provision(
			context.Background(),
			provisionRequest(`{"policy_document": "{\"Version\":\"2012-10-17\"}"}`),
		)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.Handle, "envsecrets-"))
		assert.Equal(t, `{"Version":"2012-10-17"}`, client.users[result.Handle].inline[inlinePolicyName])
	})

	t.Run("Error: partial failure removes the user", func(t *testing.T) {
		client := newFakeIAM()
		client.failOn["AddUserToGroup"] = errors.New("group does not exist")
		adapter, _ := newTestAdapter(t, client)

		result, err := adapter.Provision(context.Background(), provisionRequest(fullIAMConfig))

		assert.Nil(t, result)
		var providerErr *dynamicDomain.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.ErrorIs(t, err, apperrors.ErrBadGateway)
		assert.Equal(t, "provision", providerErr.Op)
		assert.Empty(t, client.users, "no orphaned iam user")
		assert.Contains(t, providerErr.Meta, "cleanup")
		assert.NotContains(t, providerErr.Meta, "cleanup_error")
		assert.Equal(t, "DeleteUser", client.calls[len(client.calls)-1])
	})

	t.Run("Error: create user failure skips cleanup", func(t *testing.T) {
		client := newFakeIAM()
		client.failOn["CreateUser"] = errors.New("access denied")
		adapter, _ := newTestAdapter(t, client)

		_, err := adapter.Provision(context.Background(), provisionRequest(`{}`))

		var providerErr *dynamicDomain.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.ErrorIs(t, err, apperrors.ErrBadGateway)
		assert.NotContains(t, providerErr.Meta, "cleanup")
		assert.Equal(t, []string{"CreateUser"}, client.calls)
	})

	t.Run("Error: existing user with the same name is left intact", func(t *testing.T) {
		client := newFakeIAM()
		adapter, _ := newTestAdapter(t, client)
		config := `{"username_template": "svc-fixed", "policy_arns": ["arn:aws:iam::aws:policy/ReadOnlyAccess"]}`

		first, err := adapter.Provision(context.Background(), provisionRequest(config))
		require.NoError(t, err)
		client.calls = nil

		_, err = adapter.Provision(context.Background(), provisionRequest(config))

		var existsErr *types.EntityAlreadyExistsException
		assert.ErrorAs(t, err, &existsErr)
		assert.ErrorIs(t, err, apperrors.ErrBadGateway)
		assert.Equal(t, []string{"CreateUser"}, client.calls)
		require.Contains(t, client.users, first.Handle)
		assert.Len(t, client.users[first.Handle].keys, 1)
		assert.Equal(t, []string{"arn:aws:iam::aws:policy/ReadOnlyAccess"}, client.users[first.Handle].managed)
	})

	t.Run("Error: client factory failure", func(t *testing.T) {
		factoryErr := errors.New("no credentials")
		adapter, err := NewAWSIAMProviderAdapter(
			func(context.Context, string, map[string]string) (IAMAPI, error) { return nil, factoryErr },
			0, 1, slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
		require.NoError(t, err)

		_, err = adapter.Provision(context.Background(), provisionRequest(`{}`))

		assert.ErrorIs(t, err, factoryErr)
		assert.ErrorIs(t, err, apperrors.ErrBadGateway)
	})
}

func TestAWSIAMProviderAdapter_Teardown(t *testing.T) {
	t.Run("Success: removes everything in order", func(t *testing.T) {
		client := newFakeIAM()
		adapter, _ := newTestAdapter(t, client)
		result, err := adapter.Provision(context.Background(), provisionRequest(fullIAMConfig))
		require.NoError(t, err)
		client.calls = nil

		meta, err := adapter.Teardown(context.Background(), &dynamicDomain.TeardownRequest{
			Handle: result.Handle,
			Config: json.RawMessage(fullIAMConfig),
		})

		require.NoError(t, err)
		assert.Equal(t, result.Handle, meta["username"])
		assert.Empty(t, client.users)
		assert.Equal(t, []string{
			"ListAccessKeys", "DeleteAccessKey",
			"ListAttachedUserPolicies", "DetachUserPolicy",
			"ListUserPolicies", "DeleteUserPolicy",
			"ListGroupsForUser", "RemoveUserFromGroup",
			"DeleteUser",
		}, client.calls)
	})

	t.Run("Success: missing user is already torn down", func(t *testing.T) {
		client := newFakeIAM()
		adapter, _ := newTestAdapter(t, client)

		_, err := adapter.Teardown(context.Background(), &dynamicDomain.TeardownRequest{Handle: "gone"})

		assert.NoError(t, err)
	})

	t.Run("Success: empty handle is a no-op", func(t *testing.T) {
		client := newFakeIAM()
		adapter, _ := newTestAdapter(t, client)

		_, err := adapter.Cleanup(context.Background(), &dynamicDomain.TeardownRequest{})

		assert.NoError(t, err)
		assert.Empty(t, client.calls)
	})

	t.Run("Error: delete failure is reported after remaining steps", func(t *testing.T) {
		client := newFakeIAM()
		adapter, _ := newTestAdapter(t, client)
		result, err := adapter.Provision(context.Background(), provisionRequest(fullIAMConfig))
		require.NoError(t, err)
		client.failOn["DetachUserPolicy"] = errors.New("throttled")

		_, err = adapter.Teardown(context.Background(), &dynamicDomain.TeardownRequest{Handle: result.Handle})

		assert.ErrorIs(t, err, apperrors.ErrBadGateway)
		assert.Contains(t, client.calls, "DeleteUserPolicy")
		assert.Equal(t, "DeleteUser", client.calls[len(client.calls)-1])
	})
}

func TestAWSIAMProviderAdapter_ValidateConfig(t *testing.T) {
	adapter, _ := newTestAdapter(t, newFakeIAM())

	tests := []struct {
		name    string
		config  string
		wantErr bool
	}{
		{name: "full config", config: fullIAMConfig},
		{name: "empty config", config: ``},
		{name: "empty object", config: `{}`},
		{name: "unknown field", config: `{"foo": "bar"}`, wantErr: true},
		{name: "bad policy arn", config: `{"policy_arns": ["not-an-arn"]}`, wantErr: true},
		{name: "bad iam path", config: `{"iam_path": "leased"}`, wantErr: true},
		{name: "groups not array", config: `{"groups": "readers"}`, wantErr: true},
		{name: "malformed json", config: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := adapter.ValidateConfig(json.RawMessage(tt.config))
			if tt.wantErr {
				assert.ErrorIs(t, err, dynamicDomain.ErrInvalidProviderConfig)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRenderUsername(t *testing.T) {
	t.Run("expands both placeholder spellings", func(t *testing.T) {
		username, err := renderUsername("a-{{random}}-{{ random }}")
		require.NoError(t, err)
		assert.Regexp(t, `^a-[a-zA-Z0-9]{6,18}-[a-zA-Z0-9]{6,18}$`, username)
	})

	t.Run("truncates to the iam limit", func(t *testing.T) {
		username, err := renderUsername(strings.Repeat("x", 60) + "{{ random }}")
		require.NoError(t, err)
		assert.Len(t, username, maxIAMUsernameLength)
	})

	t.Run("template without placeholder", func(t *testing.T) {
		username, err := renderUsername("static")
		require.NoError(t, err)
		assert.Equal(t, "static", username)
	})
}

func TestProviderRegistry(t *testing.T) {
	adapter, _ := newTestAdapter(t, newFakeIAM())
	registry := NewProviderRegistry(adapter)

	got, err := registry.Get(dynamicDomain.ProviderAWSIAM)
	require.NoError(t, err)
	assert.Equal(t, adapter, got)

	_, err = registry.Get("gcp-iam")
	assert.ErrorIs(t, err, dynamicDomain.ErrUnsupportedProvider)
}
