package security

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/fixadd/stok/internal/repository"
	"github.com/fixadd/stok/pkg/models"
	"github.com/fixadd/stok/pkg/roles"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		if err := godotenv.Load(); err != nil {
			log.Printf(".env dosyası yüklenemedi: %v", err)
		}
		secret = os.Getenv("JWT_SECRET")
	}

	if secret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtSecret = []byte(secret)
}

func AuthenticateUser(username, password string, repo *repository.Repository) (*models.User, error) {
	var user models.User

	query := repo.GoquDBWrapper.
		Select("id", "username", "first_name", "last_name", "password_hash", "role", "must_change_password").
		From("users").
		Where(goqu.Ex{"username": username})

	if _, err := query.Executor().ScanStruct(&user); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}

	return &user, nil
}

func GenerateJWT(userID string, role string, username string) (string, error) {
	claims := jwt.MapClaims{
		"userID":   userID,
		"role":     role,
		"username": username,
		"exp":      time.Now().Add(time.Hour * 120).Unix(), // 4 DAYS
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func GetUserIDFromToken(c *gin.Context) (string, error) {
	userID, ok := c.Get("userID")
	if !ok {
		return "", fmt.Errorf("userID missing from context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("userID is not a string")
	}

	return id, nil
}

// ActorFromContext resolves the authenticated actor from the JWT claims the
// middleware stored on the context. Core operations take the actor as an
// explicit parameter and never read session state themselves.
func ActorFromContext(c *gin.Context) (models.Actor, error) {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return models.Actor{}, err
	}

	id, err := strconv.Atoi(userID)
	if err != nil {
		return models.Actor{}, fmt.Errorf("userID is not numeric: %w", err)
	}

	username, _ := c.Get("username")
	role, _ := c.Get("role")

	usernameStr, _ := username.(string)
	roleStr, _ := role.(string)

	return models.Actor{
		ID:       id,
		Username: usernameStr,
		Role:     roles.Role(roleStr),
	}, nil
}
