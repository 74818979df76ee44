package cavos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cavos-labs/cavos-go/httpapi"
	"github.com/cavos-labs/cavos-go/metadata"
)

// SignUp registers a new user for an organization: resolve the organization,
// create the identity, attach it to the identity-provider organization, and
// deploy its wallet. If a step after identity creation fails, the identity is
// deleted again so the tenant is not left with an orphaned user; the step's
// error is returned either way.
func (s *Service) SignUp(ctx context.Context, email, password, orgID, network string) (*AuthResult, error) {
	if network == "" {
		network = DefaultNetwork
	}

	org, err := s.store.Organization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("signUp failed: %w", err)
	}
	s.log.Debug().Str("org_id", orgID).Str("auth0_org_id", org.Auth0OrgID).Msg("organization resolved")

	mgmtToken, err := s.idp.ManagementToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("signUp failed: %w", err)
	}

	user, err := s.idp.CreateUser(ctx, mgmtToken, email, password)
	if err != nil {
		return nil, fmt.Errorf("signUp failed: %w", err)
	}
	s.log.Debug().Str("user_id", user.UserID).Msg("identity created")

	if err := s.idp.AddOrganizationMember(ctx, mgmtToken, org.Auth0OrgID, user.UserID); err != nil {
		s.cleanupIdentity(ctx, mgmtToken, user.UserID)
		return nil, fmt.Errorf("signUp failed: %w", err)
	}

	deployed, err := s.gateway.Deploy(ctx, network, orgID)
	if err != nil {
		s.cleanupIdentity(ctx, mgmtToken, user.UserID)
		return nil, fmt.Errorf("signUp failed: %w", err)
	}
	s.log.Debug().Str("address", deployed.Address).Str("network", deployed.Network).Msg("wallet deployed")

	return &AuthResult{
		User: &User{
			ID:        user.UserID,
			Email:     user.Email,
			Name:      user.Name,
			CreatedAt: user.CreatedAt,
		},
		Wallet: &Wallet{
			Address:    deployed.Address,
			PublicKey:  deployed.PublicKey,
			PrivateKey: deployed.PrivateKey,
			OwnerID:    user.UserID,
			Network:    deployed.Network,
		},
		Organization: OrganizationInfo{OrgID: orgID, Auth0OrgID: org.Auth0OrgID},
	}, nil
}

// SignIn authenticates a user and assembles their aggregated record: session
// tokens from the password grant, the profile behind them, the wallet record
// from the metadata store, and the organization's optional external wallet.
func (s *Service) SignIn(ctx context.Context, email, password, orgID string) (*AuthResult, error) {
	org, err := s.store.Organization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("signIn failed: %w", err)
	}

	tokens, err := s.idp.PasswordGrant(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("signIn failed: %w", err)
	}

	profile, err := s.idp.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("signIn failed: %w", err)
	}

	record, err := s.store.Wallet(ctx, profile.Sub)
	if err != nil {
		return nil, fmt.Errorf("signIn failed: %w", err)
	}

	external, err := s.store.ExternalWallet(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("signIn failed: %w", err)
	}

	return &AuthResult{
		User: &User{
			ID:    profile.Sub,
			Email: profile.Email,
			Name:  profile.Name,
		},
		Session: sessionFromTokenSet(tokens),
		Wallet: &Wallet{
			Address:    record.Address,
			PublicKey:  record.PublicKey,
			PrivateKey: record.PrivateKey,
			OwnerID:    record.UserID,
			Network:    record.Network,
		},
		ExternalWallet: external,
		Organization:   OrganizationInfo{OrgID: orgID, Auth0OrgID: org.Auth0OrgID},
	}, nil
}

// RefreshToken exchanges a refresh token at the gateway. The gateway answers
// with the same aggregated shape as SignIn; no client-side orchestration is
// involved.
func (s *Service) RefreshToken(ctx context.Context, refreshToken, orgSecret string) (*AuthResult, error) {
	raw, err := s.gateway.Refresh(ctx, refreshToken, orgSecret)
	if err != nil {
		return nil, fmt.Errorf("refreshToken failed: %w", err)
	}

	var res AuthResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("refreshToken failed: %w: %v", httpapi.ErrMalformedResponse, err)
	}
	if res.Session == nil {
		// Older gateway versions return the token fields at the top level.
		var ses Session
		if err := json.Unmarshal(raw, &ses); err == nil && ses.AccessToken != "" {
			res.Session = &ses
		}
	}
	return &res, nil
}

// SignOut revokes the session at the identity provider. The revocation
// endpoint's own response body is discarded; success is reported with a
// fixed confirmation.
func (s *Service) SignOut(ctx context.Context, token string) (*SignOutResult, error) {
	if err := s.idp.RevokeToken(ctx, token); err != nil {
		return nil, fmt.Errorf("signOut failed: %w", err)
	}
	return &SignOutResult{
		Success: true,
		Message: "User signed out successfully",
	}, nil
}

// DeleteUser removes a user from the organization through the gateway.
func (s *Service) DeleteUser(ctx context.Context, userID, orgSecret string) (json.RawMessage, error) {
	return s.gateway.DeleteUser(ctx, userID, orgSecret)
}

// cleanupIdentity best-effort deletes an identity created by a sign-up whose
// later steps failed.
func (s *Service) cleanupIdentity(ctx context.Context, mgmtToken, userID string) {
	if err := s.idp.DeleteUser(ctx, mgmtToken, userID); err != nil {
		s.log.Warn().Str("user_id", userID).Err(err).Msg("sign-up cleanup failed, identity may be orphaned")
		return
	}
	s.log.Info().Str("user_id", userID).Msg("removed identity after failed sign-up step")
}

// Organization resolves an organization record from the metadata store.
func (s *Service) Organization(ctx context.Context, orgID string) (*metadata.Organization, error) {
	return s.store.Organization(ctx, orgID)
}
