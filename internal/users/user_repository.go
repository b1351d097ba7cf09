package users

import (
	"fmt"

	"github.com/fixadd/stok/internal/repository"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"
	"github.com/fixadd/stok/pkg/roles"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type UserRepository interface {
	PersistUser(tx *goqu.TxDatabase, req models.CreateUserRequest, hashedPassword []byte) (*models.User, error)
	GetUser(id int) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUsers() ([]models.User, error)
	UpdateUser(tx *goqu.TxDatabase, id int, changes *models.UserChanges) error
	RemoveUser(tx *goqu.TxDatabase, id int) error
	CountSuperAdmins() (int, error)
}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) UserRepository {
	return &userRepositoryImpl{repository: r}
}

func (r *userRepositoryImpl) PersistUser(tx *goqu.TxDatabase, req models.CreateUserRequest, hashedPassword []byte) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = roles.User.String()
	}

	user := models.User{
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Role:       role,
		Department: req.Department,
		// Yeni kullanıcı ilk girişte parolasını değiştirmek zorunda
		MustChangePassword: true,
		Theme:              "light",
	}

	query := tx.Insert("users").
		Rows(goqu.Record{
			"password_hash":        string(hashedPassword),
			"username":             user.Username,
			"first_name":           user.FirstName,
			"last_name":            user.LastName,
			"email":                user.Email,
			"role":                 user.Role,
			"department":           user.Department,
			"must_change_password": user.MustChangePassword,
			"theme":                user.Theme,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&user.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, custom_error.WrapDBError(pqErr.Message, string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to insert User: %w", err)
	}

	return &user, nil
}

func (r *userRepositoryImpl) GetUsers() ([]models.User, error) {
	var users []models.User
	query := r.repository.GoquDBWrapper.
		Select("id", "username", "first_name", "last_name", "email", "role", "department", "must_change_password", "theme").
		From("users").
		Order(goqu.I("first_name").Asc(), goqu.I("last_name").Asc())

	if err := query.Executor().ScanStructs(&users); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return users, nil
}

func (r *userRepositoryImpl) GetUser(id int) (*models.User, error) {
	var user models.User
	query := r.repository.GoquDBWrapper.
		Select("id", "username", "first_name", "last_name", "email", "password_hash", "role", "department", "must_change_password", "theme").
		From("users").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Kullanıcı bulunamadı.")
	}

	return &user, nil
}

func (r *userRepositoryImpl) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := r.repository.GoquDBWrapper.
		Select("id", "username", "first_name", "last_name", "email", "role", "department").
		From("users").
		Where(goqu.Ex{"username": username})

	found, err := query.Executor().ScanStruct(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Kullanıcı bulunamadı.")
	}

	return &user, nil
}

func (r *userRepositoryImpl) UpdateUser(tx *goqu.TxDatabase, id int, changes *models.UserChanges) error {
	record := goqu.Record{}
	if changes.PasswordHash != nil {
		record["password_hash"] = *changes.PasswordHash
	}
	if changes.Role != nil {
		record["role"] = *changes.Role
	}
	if changes.Department != nil {
		record["department"] = *changes.Department
	}
	if changes.Theme != nil {
		record["theme"] = *changes.Theme
	}
	if changes.MustChangePassword != nil {
		record["must_change_password"] = *changes.MustChangePassword
	}

	if len(record) == 0 {
		return nil
	}

	if _, err := tx.Update("users").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *userRepositoryImpl) RemoveUser(tx *goqu.TxDatabase, id int) error {
	result, err := tx.Delete("users").
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return custom_error.NewNotFoundError("Kullanıcı bulunamadı.")
	}

	return nil
}

func (r *userRepositoryImpl) CountSuperAdmins() (int, error) {
	var count int
	query := r.repository.GoquDBWrapper.
		From("users").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"role": roles.SuperAdmin.String()})

	if _, err := query.Executor().ScanVal(&count); err != nil {
		return 0, fmt.Errorf("failed to count superadmins: %w", err)
	}

	return count, nil
}
