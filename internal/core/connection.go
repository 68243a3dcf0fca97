package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/s3gate/internal/model"
	"github.com/edvin/s3gate/internal/platform"
)

// roleArnRegex matches IAM role ARNs: arn:aws:iam::<12-digit account>:role/<path/name>.
// Anything else (users, root, malformed account IDs) is rejected before any
// network call is made.
var roleArnRegex = regexp.MustCompile(`^arn:aws:iam::\d{12}:role/[\w+=,.@/-]+$`)

// RoleAssumer obtains short-lived credentials for a role, presenting the
// stored External ID as the trust condition.
type RoleAssumer interface {
	AssumeRole(ctx context.Context, roleArn, externalID string) (model.Credentials, error)
}

// BucketLister is the minimum-permission probe used during verification.
type BucketLister interface {
	ListBuckets(ctx context.Context, creds model.Credentials) ([]model.Bucket, error)
}

// ConnectionService owns the connection lifecycle: absent -> pending ->
// verified. It is both the store and the orchestrator; all row access is
// scoped by user ID.
type ConnectionService struct {
	db      DB
	assumer RoleAssumer
	buckets BucketLister
}

func NewConnectionService(db DB, assumer RoleAssumer, buckets BucketLister) *ConnectionService {
	return &ConnectionService{db: db, assumer: assumer, buckets: buckets}
}

const connectionColumns = `id, user_id, external_id, role_arn, name, created_at, updated_at`

func scanConnection(row pgx.Row) (*model.Connection, error) {
	var c model.Connection
	err := row.Scan(&c.ID, &c.UserID, &c.ExternalID, &c.RoleArn, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreatePending inserts a new pending connection with a freshly generated
// External ID and a timestamped placeholder name.
func (s *ConnectionService) CreatePending(ctx context.Context, userID string) (*model.Connection, error) {
	now := time.Now().UTC()
	c := &model.Connection{
		ID:         platform.NewID(),
		UserID:     userID,
		ExternalID: platform.NewExternalID(),
		Name:       "Connection " + now.Format("2006-01-02 15:04"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO connections (id, user_id, external_id, role_arn, name, created_at, updated_at)
		 VALUES ($1, $2, $3, NULL, $4, $5, $6)`,
		c.ID, c.UserID, c.ExternalID, c.Name, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pending connection: %w", err)
	}
	return c, nil
}

// GetByIDAndUser returns the connection only if it belongs to the user.
func (s *ConnectionService) GetByIDAndUser(ctx context.Context, id, userID string) (*model.Connection, error) {
	conn, err := scanConnection(s.db.QueryRow(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get connection %s: %w", id, err)
	}
	return conn, nil
}

// LatestPending returns the user's most recently created pending connection.
func (s *ConnectionService) LatestPending(ctx context.Context, userID string) (*model.Connection, error) {
	conn, err := scanConnection(s.db.QueryRow(ctx,
		`SELECT `+connectionColumns+` FROM connections
		 WHERE user_id = $1 AND role_arn IS NULL
		 ORDER BY created_at DESC LIMIT 1`,
		userID,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest pending connection: %w", err)
	}
	return conn, nil
}

// GetByUserAndRole returns the user's connection for a specific role ARN.
func (s *ConnectionService) GetByUserAndRole(ctx context.Context, userID, roleArn string) (*model.Connection, error) {
	conn, err := scanConnection(s.db.QueryRow(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE user_id = $1 AND role_arn = $2`,
		userID, roleArn,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get connection for role: %w", err)
	}
	return conn, nil
}

// Latest returns the user's most recently updated connection, verified rows
// first.
func (s *ConnectionService) Latest(ctx context.Context, userID string) (*model.Connection, error) {
	conn, err := scanConnection(s.db.QueryRow(ctx,
		`SELECT `+connectionColumns+` FROM connections
		 WHERE user_id = $1
		 ORDER BY (role_arn IS NOT NULL) DESC, updated_at DESC LIMIT 1`,
		userID,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest connection: %w", err)
	}
	return conn, nil
}

// ListByUser returns all of the user's connections, newest first.
func (s *ConnectionService) ListByUser(ctx context.Context, userID string) ([]model.Connection, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []model.Connection
	for rows.Next() {
		var c model.Connection
		if err := rows.Scan(&c.ID, &c.UserID, &c.ExternalID, &c.RoleArn, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}
	return conns, nil
}

// Promote sets the role ARN on a connection, optionally updating its name.
// The External ID column is deliberately left untouched. A unique violation
// on (user_id, role_arn) is reported as errDuplicateRole for the caller to
// reconcile.
func (s *ConnectionService) Promote(ctx context.Context, id, roleArn, name string) (*model.Connection, error) {
	conn, err := scanConnection(s.db.QueryRow(ctx,
		`UPDATE connections
		 SET role_arn = $1, name = COALESCE(NULLIF($2, ''), name), updated_at = now()
		 WHERE id = $3
		 RETURNING `+connectionColumns,
		roleArn, name, id,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, errDuplicateRole
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("promote connection %s: %w", id, err)
	}
	return conn, nil
}

// Delete removes a connection owned by the user.
func (s *ConnectionService) Delete(ctx context.Context, id, userID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM connections WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete connection %s: %w", id, err)
	}
	return nil
}

// Bootstrap returns the user's existing pending connection, or creates one
// with a fresh External ID if none exists. Repeated calls without an
// intervening successful verify return the same row and External ID, so the
// value shown in the trust-policy instructions stays stable.
func (s *ConnectionService) Bootstrap(ctx context.Context, userID string) (*model.Connection, error) {
	conn, err := s.LatestPending(ctx, userID)
	if err == nil {
		return conn, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.CreatePending(ctx, userID)
}

// VerifyParams is the client's verify submission. There is intentionally no
// External ID field: the stored value is the only one ever used.
type VerifyParams struct {
	RoleArn      string
	ConnectionID string
	Name         string
}

// Verify exercises the cross-account trust for the submitted role ARN and
// promotes the target pending connection on success.
//
// Failures from STS or S3 leave the pending row untouched so the caller can
// retry with a corrected ARN using the same External ID. If another
// connection already holds this role for the user, the verification target is
// discarded (deleted only if still pending) and the pre-existing row is
// returned unchanged.
func (s *ConnectionService) Verify(ctx context.Context, userID string, p VerifyParams) (*model.Connection, error) {
	if p.RoleArn == "" {
		return nil, &ValidationError{Msg: "role_arn is required"}
	}
	if !roleArnRegex.MatchString(p.RoleArn) {
		return nil, &ValidationError{Msg: "role_arn must look like arn:aws:iam::<account>:role/<name>"}
	}

	target, err := s.resolveVerifyTarget(ctx, userID, p.ConnectionID)
	if err != nil {
		return nil, err
	}
	if target.Verified() && *target.RoleArn != p.RoleArn {
		return nil, &ValidationError{Msg: "connection is already verified with a different role"}
	}

	creds, err := s.assumer.AssumeRole(ctx, p.RoleArn, target.ExternalID)
	if err != nil {
		return nil, err
	}

	// Liveness and minimum-permission probe. The result is discarded; we only
	// care that the assumed role may list buckets at all.
	if _, err := s.buckets.ListBuckets(ctx, creds); err != nil {
		return nil, err
	}

	existing, err := s.GetByUserAndRole(ctx, userID, p.RoleArn)
	switch {
	case err == nil:
		if existing.ID != target.ID {
			return s.reconcile(ctx, target, existing)
		}
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	promoted, err := s.Promote(ctx, target.ID, p.RoleArn, p.Name)
	if errors.Is(err, errDuplicateRole) {
		// Lost a promote race for the same role. Exactly one verified row
		// survives; both callers get its ID.
		existing, lookupErr := s.GetByUserAndRole(ctx, userID, p.RoleArn)
		if lookupErr != nil {
			return nil, fmt.Errorf("reconcile after duplicate role: %w", lookupErr)
		}
		return s.reconcile(ctx, target, existing)
	}
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

func (s *ConnectionService) resolveVerifyTarget(ctx context.Context, userID, connectionID string) (*model.Connection, error) {
	if connectionID != "" {
		return s.GetByIDAndUser(ctx, connectionID, userID)
	}
	target, err := s.LatestPending(ctx, userID)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.CreatePending(ctx, userID)
}

// reconcile discards the verification target in favor of a pre-existing row
// for the same role. The target is deleted only if it was still pending.
func (s *ConnectionService) reconcile(ctx context.Context, target, existing *model.Connection) (*model.Connection, error) {
	if existing.ID != target.ID && !target.Verified() {
		if err := s.Delete(ctx, target.ID, target.UserID); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

// ResolveVerified resolves the connection to use for a resource-access call:
// the given ID (user-scoped) or, if empty, the user's most recent connection.
// Returns ErrNotFound when the user has no connection at all and
// ErrNotVerified when the resolved row is still pending.
func (s *ConnectionService) ResolveVerified(ctx context.Context, userID, connectionID string) (*model.Connection, error) {
	var (
		conn *model.Connection
		err  error
	)
	if connectionID != "" {
		conn, err = s.GetByIDAndUser(ctx, connectionID, userID)
	} else {
		conn, err = s.Latest(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	if !conn.Verified() {
		return nil, ErrNotVerified
	}
	return conn, nil
}

// Credentials performs a fresh role assumption for a verified connection.
// Nothing is cached across requests.
func (s *ConnectionService) Credentials(ctx context.Context, conn *model.Connection) (model.Credentials, error) {
	if !conn.Verified() {
		return model.Credentials{}, ErrNotVerified
	}
	return s.assumer.AssumeRole(ctx, *conn.RoleArn, conn.ExternalID)
}
