// Package metadata reads the Supabase tables that map organizations and
// users to their wallet records. Reads go through PostgREST with the
// project's public key; every lookup is fresh, nothing is cached.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/supabase-community/postgrest-go"

	"github.com/cavos-labs/cavos-go/httpapi"
)

// Store reads the metadata tables.
type Store struct {
	rest *postgrest.Client
	log  zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a Store for a Supabase project.
func New(projectURL, anonKey string, opts ...Option) (*Store, error) {
	if projectURL == "" {
		return nil, fmt.Errorf("metadata: project URL is required")
	}
	if anonKey == "" {
		return nil, fmt.Errorf("metadata: anon key is required")
	}

	restURL := strings.TrimRight(projectURL, "/") + "/rest/v1"
	rest := postgrest.NewClient(restURL, "", map[string]string{
		"apikey": anonKey,
	})
	rest.SetAuthToken(anonKey)

	s := &Store{
		rest: rest,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Organization resolves a caller-supplied org id to its identity-provider
// organization. A missing row, or a row without the mapped Auth0 id, reports
// ErrOrganizationNotFound.
func (s *Store) Organization(ctx context.Context, orgID string) (*Organization, error) {
	// postgrest-go does not thread a context through its builder.
	data, _, err := s.rest.From("orgs").
		Select("org_id,auth0_org_id,id", "", false).
		Eq("org_id", orgID).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", httpapi.ErrOrganizationNotFound, orgID, err)
	}

	var rows []Organization
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode orgs row: %v", httpapi.ErrMalformedResponse, err)
	}
	if len(rows) == 0 || rows[0].Auth0OrgID == "" {
		return nil, fmt.Errorf("%w: %s", httpapi.ErrOrganizationNotFound, orgID)
	}
	return &rows[0], nil
}

// Wallet reads the wallet record for a resolved user. Absence, and lookup
// failures, report ErrWalletNotFound with the user id in the message.
func (s *Store) Wallet(ctx context.Context, userID string) (*Wallet, error) {
	data, _, err := s.rest.From("wallets").
		Select("user_id,address,public_key,private_key,network", "", false).
		Eq("user_id", userID).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("%w for user: %s: %v", httpapi.ErrWalletNotFound, userID, err)
	}

	var rows []Wallet
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode wallets row: %v", httpapi.ErrMalformedResponse, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w for user: %s", httpapi.ErrWalletNotFound, userID)
	}
	return &rows[0], nil
}

// ExternalWallet reads an organization's optional external wallet by its
// internal numeric id. Absence is not an error; the caller carries the nil
// through to the aggregated result.
func (s *Store) ExternalWallet(ctx context.Context, orgNumericID int64) (*ExternalWallet, error) {
	data, _, err := s.rest.From("external_wallets").
		Select("org_id,address,network,created_at", "", false).
		Eq("org_id", fmt.Sprintf("%d", orgNumericID)).
		Limit(1, "").
		Execute()
	if err != nil {
		s.log.Warn().Int64("org_id", orgNumericID).Err(err).Msg("external wallet lookup failed, continuing without one")
		return nil, nil
	}

	var rows []ExternalWallet
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
