package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/models"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 12
	// AccessTokenExpiry is how long access tokens are valid.
	AccessTokenExpiry = 1 * time.Hour
	// RefreshTokenExpiry is how long refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims represents the claims in an issued JWT.
type Claims struct {
	UserID    int    `json:"user_id"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Service handles authentication operations.
type Service struct {
	db        *bun.DB
	jwtSecret []byte
}

// NewService creates a new auth service.
func NewService(db *bun.DB, jwtSecret string) *Service {
	return &Service{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

// Authenticate validates credentials and returns the user if valid.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.email = ? COLLATE NOCASE", email).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid email or password")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid email or password")
	}

	return user, nil
}

// RegisterOptions contains options for registering a user.
type RegisterOptions struct {
	Email      string
	Username   string
	Password   string
	BirthDate  string
	Gender     string
	Summary    string
	AvatarPath *string
	IsAdmin    bool
}

// Register creates a new user account. The email uniqueness check runs inside
// the insert transaction so concurrent registrations can't both pass it.
func (s *Service) Register(ctx context.Context, opts RegisterOptions) (*models.User, error) {
	hashedPassword, err := HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	gender := opts.Gender
	if gender == "" {
		gender = models.GenderNotSpecified
	}

	user := &models.User{
		Email:        opts.Email,
		Username:     opts.Username,
		PasswordHash: hashedPassword,
		BirthDate:    opts.BirthDate,
		Gender:       gender,
		Summary:      opts.Summary,
		AvatarPath:   opts.AvatarPath,
		IsAdmin:      opts.IsAdmin,
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.User)(nil)).
			Where("email = ? COLLATE NOCASE", opts.Email).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict("Email already exists in the system.")
		}

		now := time.Now()
		user.CreatedAt = now
		user.UpdatedAt = now

		_, err = tx.NewInsert().Model(user).Returning("*").Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GenerateToken creates a signed JWT of the given type for the user.
func (s *Service) GenerateToken(user *models.User, tokenType string) (string, error) {
	now := time.Now()
	expiry := AccessTokenExpiry
	if tokenType == TokenTypeRefresh {
		expiry = RefreshTokenExpiry
	}

	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT and returns its claims. When tokenType is
// non-empty the token_type claim must match.
func (s *Service) ValidateToken(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if tokenType != "" && claims.TokenType != tokenType {
		return nil, errors.New("unexpected token type")
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// ChangePassword verifies the old password and stores a new one.
func (s *Service) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Column("password_hash").
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return errcodes.ValidationError("Current password is incorrect")
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("password_hash = ?", hashedPassword).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", userID).
		Exec(ctx)
	return errors.WithStack(err)
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
