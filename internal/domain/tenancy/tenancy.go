// Package tenancy binds a tenant to a unit of work.
//
// The tenant travels as an explicit value inside context.Context; there is no
// process-wide "current tenant". A context is bound at most once: binding the
// same tenant again is a no-op, binding a different tenant is an error.
package tenancy

import (
	"context"
	"strings"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

// PublicNamespace holds shared, non tenant-scoped data such as the tenant directory.
const PublicNamespace = "public"

// namespacePrefix is prepended to the compact tenant id to form its namespace
const namespacePrefix = "t_"

var (
	ErrInvalidTenant = shared.NewDomainError("INVALID_TENANT", "Tenant ID must be a non-nil UUID")
	ErrTenantRebind  = &shared.DomainError{
		Code:     "TENANT_REBIND",
		Message:  "Unit of work is already bound to a different tenant",
		Category: shared.CategoryAccess,
	}
)

type scopeKey struct{}

// Scope is the tenant bound to one unit of work
type Scope struct {
	tenantID uuid.UUID
}

// TenantID returns the bound tenant
func (s Scope) TenantID() uuid.UUID {
	return s.tenantID
}

// Namespace returns the storage namespace of the bound tenant
func (s Scope) Namespace() string {
	return Namespace(s.tenantID)
}

// Bind returns a context bound to tenantID.
func Bind(ctx context.Context, tenantID uuid.UUID) (context.Context, error) {
	if tenantID == uuid.Nil {
		return ctx, ErrInvalidTenant
	}
	if existing, ok := ctx.Value(scopeKey{}).(Scope); ok {
		if existing.tenantID != tenantID {
			return ctx, ErrTenantRebind
		}
		return ctx, nil
	}
	return context.WithValue(ctx, scopeKey{}, Scope{tenantID: tenantID}), nil
}

// BindString parses tenantID and binds it
func BindString(ctx context.Context, tenantID string) (context.Context, error) {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return ctx, ErrInvalidTenant
	}
	return Bind(ctx, id)
}

// FromContext returns the scope bound to ctx, if any
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}

// Require returns the bound tenant or shared.ErrTenantRequired
func Require(ctx context.Context) (uuid.UUID, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, shared.ErrTenantRequired
	}
	return s.tenantID, nil
}

// Namespace derives the deterministic storage namespace of a tenant.
// The result is a valid unquoted SQL identifier, e.g. t_0f8fad5bd9cb469fa16570867728950e.
func Namespace(tenantID uuid.UUID) string {
	return namespacePrefix + strings.ReplaceAll(tenantID.String(), "-", "")
}

// IsTenantNamespace reports whether ns was produced by Namespace
func IsTenantNamespace(ns string) bool {
	if !strings.HasPrefix(ns, namespacePrefix) || len(ns) != len(namespacePrefix)+32 {
		return false
	}
	for _, c := range ns[len(namespacePrefix):] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
