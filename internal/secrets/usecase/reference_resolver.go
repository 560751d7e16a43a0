package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
	cryptoUseCase "github.com/allisson/envsecrets/internal/crypto/usecase"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

// resolutionOrder is the fixed phase order. Cross-app placeholders are the
// superset syntax and must be consumed before cross-env ones.
var resolutionOrder = []referenceKind{crossAppReference, crossEnvReference, localReference}

type referenceResolver struct {
	secretRepo SecretRepository
	appRepo    AppRepository
	envRepo    EnvironmentRepository
	envKeys    cryptoUseCase.EnvironmentKeyUseCase
	access     AccessChecker
	logger     *slog.Logger
}

// resolution carries the per-call lookups so each environment, app, crypto
// context and access decision is fetched at most once.
type resolution struct {
	environmentID uuid.UUID
	environment   *secretsDomain.Environment
	app           *secretsDomain.App
	contexts      map[uuid.UUID]*cryptoDomain.EnvironmentContext
	access        map[uuid.UUID]bool
}

// Resolve substitutes the references in value. Access denial without
// RequireResolvedReferences stops resolution and returns what was resolved so
// far; unresolved references then keep their placeholder.
func (r *referenceResolver) Resolve(
	ctx context.Context,
	environmentID uuid.UUID,
	value string,
	opts secretsDomain.ResolveOptions,
) (string, error) {
	refs := scanReferences(value)
	if len(refs) == 0 {
		return value, nil
	}

	state := &resolution{
		environmentID: environmentID,
		contexts:      make(map[uuid.UUID]*cryptoDomain.EnvironmentContext),
		access:        make(map[uuid.UUID]bool),
	}
	resolved := make(map[string]string, len(refs))
	attempted := make(map[string]bool, len(refs))
	var messages []string

phases:
	for _, kind := range resolutionOrder {
		for _, ref := range refs {
			if ref.kind != kind || attempted[ref.inner] {
				continue
			}
			attempted[ref.inner] = true

			targetID, reason, err := r.targetEnvironment(ctx, state, ref)
			if err != nil {
				return "", err
			}
			if reason != "" {
				messages = append(messages, fmt.Sprintf("%s: %s", ref, reason))
				continue
			}

			allowed, err := r.canAccess(ctx, state, opts, targetID)
			if err != nil {
				return "", err
			}
			if !allowed {
				if opts.RequireResolvedReferences {
					messages = append(messages, fmt.Sprintf("%s: access denied", ref))
					continue
				}
				r.logger.Debug("secret reference access denied, stopping resolution",
					slog.String("environment_id", environmentID.String()),
					slog.String("target_environment_id", targetID.String()))
				break phases
			}

			plain, found, err := r.lookup(ctx, state, targetID, ref)
			if err != nil {
				return "", err
			}
			if !found {
				messages = append(messages, fmt.Sprintf("%s: secret not found", ref))
				continue
			}
			resolved[ref.inner] = plain
		}
	}

	if opts.RequireResolvedReferences && len(messages) > 0 {
		return "", &secretsDomain.SecretReferenceError{Messages: messages}
	}

	return splice(value, refs, resolved), nil
}

// targetEnvironment maps a reference to the environment it reads from. A
// non-empty reason means the app or environment does not exist.
func (r *referenceResolver) targetEnvironment(
	ctx context.Context,
	state *resolution,
	ref reference,
) (uuid.UUID, string, error) {
	switch ref.kind {
	case crossEnvReference:
		current, err := r.currentEnvironment(ctx, state)
		if err != nil {
			return uuid.Nil, "", err
		}
		return r.environmentByName(ctx, current.AppID, ref.env)

	case crossAppReference:
		current, err := r.currentApp(ctx, state)
		if err != nil {
			return uuid.Nil, "", err
		}
		app, err := r.appRepo.GetByName(ctx, current.OrganizationID, ref.app)
		if err != nil {
			if errors.Is(err, secretsDomain.ErrAppNotFound) {
				return uuid.Nil, fmt.Sprintf("app %q not found", ref.app), nil
			}
			return uuid.Nil, "", err
		}
		return r.environmentByName(ctx, app.ID, ref.env)

	default:
		return state.environmentID, "", nil
	}
}

func (r *referenceResolver) environmentByName(
	ctx context.Context,
	appID uuid.UUID,
	name string,
) (uuid.UUID, string, error) {
	env, err := r.envRepo.GetByName(ctx, appID, name)
	if err != nil {
		if errors.Is(err, secretsDomain.ErrEnvironmentNotFound) {
			return uuid.Nil, fmt.Sprintf("environment %q not found", name), nil
		}
		return uuid.Nil, "", err
	}
	return env.ID, "", nil
}

func (r *referenceResolver) currentEnvironment(
	ctx context.Context,
	state *resolution,
) (*secretsDomain.Environment, error) {
	if state.environment != nil {
		return state.environment, nil
	}
	env, err := r.envRepo.Get(ctx, state.environmentID)
	if err != nil {
		return nil, err
	}
	state.environment = env
	return env, nil
}

func (r *referenceResolver) currentApp(ctx context.Context, state *resolution) (*secretsDomain.App, error) {
	if state.app != nil {
		return state.app, nil
	}
	env, err := r.currentEnvironment(ctx, state)
	if err != nil {
		return nil, err
	}
	app, err := r.appRepo.Get(ctx, env.AppID)
	if err != nil {
		return nil, err
	}
	state.app = app
	return app, nil
}

func (r *referenceResolver) canAccess(
	ctx context.Context,
	state *resolution,
	opts secretsDomain.ResolveOptions,
	environmentID uuid.UUID,
) (bool, error) {
	if allowed, ok := state.access[environmentID]; ok {
		return allowed, nil
	}
	allowed, err := r.access.CanAccessEnvironment(ctx, opts.Principal, environmentID)
	if err != nil {
		return false, err
	}
	state.access[environmentID] = allowed
	return allowed, nil
}

// lookup reads and decrypts the referenced secret value with the target
// environment's own key material.
func (r *referenceResolver) lookup(
	ctx context.Context,
	state *resolution,
	environmentID uuid.UUID,
	ref reference,
) (string, bool, error) {
	envCtx, ok := state.contexts[environmentID]
	if !ok {
		var err error
		envCtx, err = r.envKeys.Unwrap(ctx, environmentID)
		if err != nil {
			return "", false, err
		}
		state.contexts[environmentID] = envCtx
	}

	digest, err := cryptoService.KeyDigest(ref.key, envCtx.Salt)
	if err != nil {
		return "", false, err
	}

	secret, err := r.secretRepo.GetByDigest(ctx, environmentID, ref.path, digest)
	if err != nil {
		if errors.Is(err, secretsDomain.ErrSecretNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if !cryptoService.DigestEqual(secret.KeyDigest, digest) {
		return "", false, nil
	}

	plain, err := cryptoService.DecryptWithKeyPair(secret.Value, envCtx.KeyPair)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

// NewReferenceResolver creates a ReferenceResolver.
func NewReferenceResolver(
	secretRepo SecretRepository,
	appRepo AppRepository,
	envRepo EnvironmentRepository,
	envKeys cryptoUseCase.EnvironmentKeyUseCase,
	access AccessChecker,
	logger *slog.Logger,
) ReferenceResolver {
	return &referenceResolver{
		secretRepo: secretRepo,
		appRepo:    appRepo,
		envRepo:    envRepo,
		envKeys:    envKeys,
		access:     access,
		logger:     logger,
	}
}
