package repository

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatehub/property-moderation/internal/domain"
)

// UserRepository defines persistence access for marketplace accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// Update writes user if its Version still matches the stored row and
	// increments user.Version on success.
	Update(ctx context.Context, user *domain.User) error
	// GetByID returns soft-deleted users too.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail expects a normalized (trimmed, lower-case) address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
}

// UserFilter narrows list and count queries. Deleted users are excluded
// unless IncludeDeleted is set.
type UserFilter struct {
	Roles          []domain.Role
	Search         string
	Suspended      *bool
	IncludeDeleted bool
	// TermsAccepted keeps users with a terms acceptance and orders by it.
	TermsAccepted bool
	Limit         int
	Offset        int
}

var userColumns = []any{
	"id", "name", "email", "password_hash", "role", "is_active",
	"is_suspended", "suspended_at", "suspended_by", "suspension_reason",
	"is_deleted", "deleted_at", "deleted_by",
	"terms_accepted_at", "terms_version", "terms_ip_address",
	"version", "created_at", "updated_at",
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, is_active,
            terms_accepted_at, terms_version, terms_ip_address)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, version, created_at, updated_at`

	var termsAt *time.Time
	var termsVersion, termsIP *string
	if user.Terms != nil {
		termsAt = &user.Terms.AcceptedAt
		termsVersion = ptrString(user.Terms.Version)
		termsIP = ptrString(user.Terms.IPAddress)
	}

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Active,
		termsAt,
		termsVersion,
		termsIP,
	).Scan(&user.ID, &user.Version, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET
            name=$1, email=$2, password_hash=$3, role=$4, is_active=$5,
            is_suspended=$6, suspended_at=$7, suspended_by=$8, suspension_reason=$9,
            is_deleted=$10, deleted_at=$11, deleted_by=$12,
            version=version+1, updated_at=NOW()
        WHERE id=$13 AND version=$14
        RETURNING version, updated_at`

	var suspendedAt, deletedAt *time.Time
	var suspendedBy, reason, deletedBy *string
	if s := user.Suspension; s != nil {
		suspendedAt = &s.At
		suspendedBy = ptrString(s.By)
		reason = ptrString(s.Reason)
	}
	if d := user.Deletion; d != nil {
		deletedAt = &d.At
		deletedBy = ptrString(d.By)
	}

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Active,
		user.Suspension != nil,
		suspendedAt,
		suspendedBy,
		reason,
		user.Deletion != nil,
		deletedAt,
		deletedBy,
		user.ID,
		user.Version,
	).Scan(&user.Version, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missOrConflict(ctx, user.ID)
	}
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query, args, err := dialect.From("users").Prepared(true).
		Select(userColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, err
	}
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query, args, err := dialect.From("users").Prepared(true).
		Select(userColumns...).
		Where(goqu.C("email").Eq(email)).
		ToSQL()
	if err != nil {
		return nil, err
	}
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query, args, err := userListQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	query, args, err := userCountQuery(filter)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func userListQuery(filter UserFilter) (string, []any, error) {
	limit, offset := clampWindow(filter.Limit, filter.Offset)
	order := goqu.I("created_at").Desc()
	if filter.TermsAccepted {
		order = goqu.I("terms_accepted_at").Desc()
	}
	return dialect.From("users").Prepared(true).
		Select(userColumns...).
		Where(userWhere(filter)...).
		Order(order, goqu.I("id").Asc()).
		Limit(limit).
		Offset(offset).
		ToSQL()
}

func userCountQuery(filter UserFilter) (string, []any, error) {
	return dialect.From("users").Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(userWhere(filter)...).
		ToSQL()
}

func userWhere(filter UserFilter) []exp.Expression {
	var clauses []exp.Expression
	if len(filter.Roles) > 0 {
		roles := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			roles = append(roles, string(role))
		}
		clauses = append(clauses, goqu.C("role").In(roles))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		clauses = append(clauses, goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("email").ILike(pattern),
		))
	}
	if filter.Suspended != nil {
		clauses = append(clauses, goqu.C("is_suspended").Eq(*filter.Suspended))
	}
	if !filter.IncludeDeleted {
		clauses = append(clauses, goqu.C("is_deleted").IsFalse())
	}
	if filter.TermsAccepted {
		clauses = append(clauses, goqu.C("terms_accepted_at").IsNotNull())
	}
	return clauses
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user                   domain.User
		role                   string
		isSuspended, isDeleted bool
		suspendedAt, deletedAt *time.Time
		suspendedBy, deletedBy *string
		reason                 *string
		termsAt                *time.Time
		termsVersion, termsIP  *string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Active,
		&isSuspended,
		&suspendedAt,
		&suspendedBy,
		&reason,
		&isDeleted,
		&deletedAt,
		&deletedBy,
		&termsAt,
		&termsVersion,
		&termsIP,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	user.Role = domain.Role(role)
	if isSuspended {
		s := domain.Suspension{By: derefString(suspendedBy), Reason: derefString(reason)}
		if suspendedAt != nil {
			s.At = *suspendedAt
		}
		user.Suspension = &s
	}
	if isDeleted {
		d := domain.Deletion{By: derefString(deletedBy)}
		if deletedAt != nil {
			d.At = *deletedAt
		}
		user.Deletion = &d
	}
	if termsAt != nil {
		user.Terms = &domain.TermsAcceptance{
			AcceptedAt: *termsAt,
			Version:    derefString(termsVersion),
			IPAddress:  derefString(termsIP),
		}
	}
	return &user, nil
}
