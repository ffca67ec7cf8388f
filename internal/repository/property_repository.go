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

// PropertyRepository handles persistence for listings.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	// Update is optimistic on Version, see UserRepository.Update.
	Update(ctx context.Context, property *domain.Property) error
	// GetByID returns soft-deleted listings too.
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, filter PropertyFilter) ([]domain.Property, error)
	Count(ctx context.Context, filter PropertyFilter) (int64, error)
	// ClearAssignments removes the agent from every listing that has one and
	// returns the number of rows changed.
	ClearAssignments(ctx context.Context) (int64, error)
	// ReleaseAgent clears the assignment of every listing held by agentID.
	ReleaseAgent(ctx context.Context, agentID string) (int64, error)
}

// PropertyFilter narrows list and count queries. Deleted listings are
// excluded unless IncludeDeleted is set.
type PropertyFilter struct {
	Approval       *domain.ApprovalStatus
	SellerID       *string
	AgentID        *string
	Assigned       *bool
	Search         string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

var propertyColumns = []any{
	"id", "seller_id", "title", "description", "price", "city", "address",
	"listing_type", "approval_status", "reviewed_at", "reviewed_by", "review_reason",
	"assigned_agent_id", "assigned_at", "assigned_by",
	"is_deleted", "deleted_at", "deleted_by",
	"version", "created_at", "updated_at",
}

type propertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository instantiates the repository.
func NewPropertyRepository(pool *pgxpool.Pool) PropertyRepository {
	return &propertyRepository{pool: pool}
}

func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	const query = `
        INSERT INTO properties (seller_id, title, description, price, city, address, listing_type, approval_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, version, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		property.SellerID,
		property.Title,
		property.Description,
		property.Price,
		property.City,
		property.Address,
		string(property.ListingType),
		string(property.Approval),
	).Scan(&property.ID, &property.Version, &property.CreatedAt, &property.UpdatedAt)
}

func (r *propertyRepository) Update(ctx context.Context, property *domain.Property) error {
	const query = `
        UPDATE properties SET
            title=$1, description=$2, price=$3, city=$4, address=$5, listing_type=$6,
            approval_status=$7, reviewed_at=$8, reviewed_by=$9, review_reason=$10,
            assigned_agent_id=$11, assigned_at=$12, assigned_by=$13,
            is_deleted=$14, deleted_at=$15, deleted_by=$16,
            version=version+1, updated_at=NOW()
        WHERE id=$17 AND version=$18
        RETURNING version, updated_at`

	var reviewedAt, assignedAt, deletedAt *time.Time
	var reviewedBy, reviewReason, agentID, assignedBy, deletedBy *string
	if rv := property.Review; rv != nil {
		reviewedAt = &rv.At
		reviewedBy = ptrString(rv.By)
		reviewReason = ptrString(rv.Reason)
	}
	if a := property.Assignment; a != nil {
		agentID = ptrString(a.AgentID)
		assignedAt = &a.AssignedAt
		assignedBy = ptrString(a.AssignedBy)
	}
	if d := property.Deletion; d != nil {
		deletedAt = &d.At
		deletedBy = ptrString(d.By)
	}

	err := r.pool.QueryRow(ctx, query,
		property.Title,
		property.Description,
		property.Price,
		property.City,
		property.Address,
		string(property.ListingType),
		string(property.Approval),
		reviewedAt,
		reviewedBy,
		reviewReason,
		agentID,
		assignedAt,
		assignedBy,
		property.Deletion != nil,
		deletedAt,
		deletedBy,
		property.ID,
		property.Version,
	).Scan(&property.Version, &property.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM properties WHERE id=$1)`, property.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return err
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	query, args, err := dialect.From("properties").Prepared(true).
		Select(propertyColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, err
	}
	return scanProperty(r.pool.QueryRow(ctx, query, args...))
}

func (r *propertyRepository) List(ctx context.Context, filter PropertyFilter) ([]domain.Property, error) {
	query, args, err := propertyListQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *property)
	}
	return result, rows.Err()
}

func (r *propertyRepository) Count(ctx context.Context, filter PropertyFilter) (int64, error) {
	query, args, err := propertyCountQuery(filter)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ClearAssignments runs as a single statement; each row either keeps its
// assignment or loses all three assignment columns together.
func (r *propertyRepository) ClearAssignments(ctx context.Context) (int64, error) {
	const query = `
        UPDATE properties
        SET assigned_agent_id=NULL, assigned_at=NULL, assigned_by=NULL,
            version=version+1, updated_at=NOW()
        WHERE assigned_agent_id IS NOT NULL`

	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *propertyRepository) ReleaseAgent(ctx context.Context, agentID string) (int64, error) {
	const query = `
        UPDATE properties
        SET assigned_agent_id=NULL, assigned_at=NULL, assigned_by=NULL,
            version=version+1, updated_at=NOW()
        WHERE assigned_agent_id=$1`

	cmd, err := r.pool.Exec(ctx, query, agentID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func propertyListQuery(filter PropertyFilter) (string, []any, error) {
	limit, offset := clampWindow(filter.Limit, filter.Offset)
	return dialect.From("properties").Prepared(true).
		Select(propertyColumns...).
		Where(propertyWhere(filter)...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Asc()).
		Limit(limit).
		Offset(offset).
		ToSQL()
}

func propertyCountQuery(filter PropertyFilter) (string, []any, error) {
	return dialect.From("properties").Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(propertyWhere(filter)...).
		ToSQL()
}

func propertyWhere(filter PropertyFilter) []exp.Expression {
	var clauses []exp.Expression
	if filter.Approval != nil {
		clauses = append(clauses, goqu.C("approval_status").Eq(string(*filter.Approval)))
	}
	if filter.SellerID != nil {
		clauses = append(clauses, goqu.C("seller_id").Eq(*filter.SellerID))
	}
	if filter.AgentID != nil {
		clauses = append(clauses, goqu.C("assigned_agent_id").Eq(*filter.AgentID))
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			clauses = append(clauses, goqu.C("assigned_agent_id").IsNotNull())
		} else {
			clauses = append(clauses, goqu.C("assigned_agent_id").IsNull())
		}
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		clauses = append(clauses, goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("city").ILike(pattern),
			goqu.C("address").ILike(pattern),
		))
	}
	if !filter.IncludeDeleted {
		clauses = append(clauses, goqu.C("is_deleted").IsFalse())
	}
	return clauses
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var (
		property                          domain.Property
		listingType, approval             string
		reviewedAt, assignedAt, deletedAt *time.Time
		reviewedBy, reviewReason          *string
		agentID, assignedBy, deletedBy    *string
		isDeleted                         bool
	)
	if err := row.Scan(
		&property.ID,
		&property.SellerID,
		&property.Title,
		&property.Description,
		&property.Price,
		&property.City,
		&property.Address,
		&listingType,
		&approval,
		&reviewedAt,
		&reviewedBy,
		&reviewReason,
		&agentID,
		&assignedAt,
		&assignedBy,
		&isDeleted,
		&deletedAt,
		&deletedBy,
		&property.Version,
		&property.CreatedAt,
		&property.UpdatedAt,
	); err != nil {
		return nil, err
	}

	property.ListingType = domain.ListingType(listingType)
	property.Approval = domain.ApprovalStatus(approval)
	if reviewedAt != nil {
		property.Review = &domain.Review{At: *reviewedAt, By: derefString(reviewedBy), Reason: derefString(reviewReason)}
	}
	if agentID != nil {
		a := domain.Assignment{AgentID: *agentID, AssignedBy: derefString(assignedBy)}
		if assignedAt != nil {
			a.AssignedAt = *assignedAt
		}
		property.Assignment = &a
	}
	if isDeleted {
		d := domain.Deletion{By: derefString(deletedBy)}
		if deletedAt != nil {
			d.At = *deletedAt
		}
		property.Deletion = &d
	}
	return &property, nil
}
