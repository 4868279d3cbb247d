package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type UserRepository struct {
	db *sqlx.DB
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `u.id, u.email, u.password_hash, u.role, u.status, u.created_at, u.updated_at`

const profileColumns = `p.full_name, p.phone, p.address, p.gender, p.identity_number`

type userRow struct {
	domain.User
	FullName       *string `db:"full_name"`
	Phone          *string `db:"phone"`
	Address        *string `db:"address"`
	Gender         *string `db:"gender"`
	IdentityNumber *string `db:"identity_number"`
}

func (r userRow) toDomain() *domain.User {
	user := r.User
	user.Profile = &domain.Profile{
		UserID:         user.ID,
		FullName:       r.FullName,
		Phone:          r.Phone,
		Address:        r.Address,
		Gender:         r.Gender,
		IdentityNumber: r.IdentityNumber,
	}
	return &user
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User, profile domain.ProfileFields) (*domain.User, error) {
	const insertUser = `
        INSERT INTO users (id, email, password_hash, role, status)
        VALUES ($1, $2, $3, $4, $5)
    `
	const insertProfile = `
        INSERT INTO profiles (user_id, full_name, phone, address, gender, identity_number)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	id := user.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, insertUser, id, user.Email, user.PasswordHash, user.Role, user.Status); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertProfile, id, profile.FullName, profile.Phone, profile.Address, profile.Gender, profile.IdentityNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT ` + userColumns + `, ` + profileColumns + `
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        WHERE u.email = $1
    `
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
        SELECT ` + userColumns + `, ` + profileColumns + `
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        WHERE u.id = $1
    `
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// Update changes email, status and any non-nil profile field in one transaction.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, email *string, status *domain.UserStatus, profile domain.ProfileFields) (*domain.User, error) {
	const updateUser = `
        UPDATE users
        SET email = COALESCE($2, email),
            status = COALESCE($3, status),
            updated_at = NOW()
        WHERE id = $1
        RETURNING id
    `
	const upsertProfile = `
        INSERT INTO profiles (user_id, full_name, phone, address, gender, identity_number)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE
        SET full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
            phone = COALESCE(EXCLUDED.phone, profiles.phone),
            address = COALESCE(EXCLUDED.address, profiles.address),
            gender = COALESCE(EXCLUDED.gender, profiles.gender),
            identity_number = COALESCE(EXCLUDED.identity_number, profiles.identity_number)
    `
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var updated uuid.UUID
		if err := tx.GetContext(ctx, &updated, updateUser, id, email, status); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, upsertProfile, id, profile.FullName, profile.Phone, profile.Address, profile.Gender, profile.IdentityNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	const query = `
        UPDATE users
        SET status = $2,
            updated_at = NOW()
        WHERE id = $1
        RETURNING id
    `
	var updated uuid.UUID
	if err := r.db.GetContext(ctx, &updated, query, id, status); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) ListCustomers(ctx context.Context, limit, offset int) ([]domain.CustomerListItem, error) {
	query := `
        SELECT ` + userColumns + `, p.full_name, p.phone,
               (SELECT COUNT(*) FROM bookings b WHERE b.user_id = u.id) AS booking_count
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        WHERE u.role = $1
        ORDER BY u.created_at DESC
        LIMIT $2 OFFSET $3
    `
	items := []domain.CustomerListItem{}
	if err := r.db.SelectContext(ctx, &items, query, domain.RoleCustomer, limit, offset); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1`
	var n int64
	if err := r.db.GetContext(ctx, &n, query, role); err != nil {
		return 0, err
	}
	return n, nil
}
